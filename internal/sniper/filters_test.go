// internal/sniper/filters_test.go
package sniper

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"

	"github.com/curvebot/pump-sniper/internal/listener"
)

func TestFilters_Match(t *testing.T) {
	creator := solana.NewWallet().PublicKey()
	tc := listener.TokenCreation{
		Name:   "Doge Classic",
		Symbol: "DOGC",
		User:   creator,
	}

	cases := []struct {
		name    string
		filters Filters
		want    bool
	}{
		{"empty matches everything", Filters{}, true},
		{"name substring", Filters{MatchString: "classic"}, true},
		{"symbol substring", Filters{MatchString: "dogc"}, true},
		{"case insensitive", Filters{MatchString: "DoGe"}, true},
		{"no substring", Filters{MatchString: "pepe"}, false},
		{"creator match", Filters{Creator: creator.String()}, true},
		{"creator mismatch", Filters{Creator: solana.NewWallet().PublicKey().String()}, false},
		{"both pass", Filters{MatchString: "doge", Creator: creator.String()}, true},
		{"string passes creator fails", Filters{MatchString: "doge", Creator: "other"}, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.filters.Match(tc))
		})
	}
}
