// internal/sniper/filters.go
package sniper

import (
	"strings"

	"github.com/curvebot/pump-sniper/internal/listener"
)

// Filters narrow which token creations get sniped. Zero values match
// everything.
type Filters struct {
	// MatchString must appear in the token name or symbol, case-insensitive.
	MatchString string
	// Creator restricts snipes to tokens launched by this address.
	Creator string
}

// Match reports whether a creation passes both filters.
func (f Filters) Match(tc listener.TokenCreation) bool {
	if f.MatchString != "" {
		needle := strings.ToLower(f.MatchString)
		if !strings.Contains(strings.ToLower(tc.Name), needle) &&
			!strings.Contains(strings.ToLower(tc.Symbol), needle) {
			return false
		}
	}
	if f.Creator != "" && tc.User.String() != f.Creator {
		return false
	}
	return true
}
