// internal/listener/events.go
package listener

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// createEventDiscriminator tags the anchor CreateEvent emitted when a new
// token launches on the curve.
var createEventDiscriminator = []byte{27, 114, 169, 77, 222, 235, 99, 118}

const programDataPrefix = "Program data: "

// TokenCreation is a decoded launch event: the new mint, its curve accounts
// and the creator, plus display metadata for filtering.
type TokenCreation struct {
	Name                   string
	Symbol                 string
	URI                    string
	Mint                   solana.PublicKey
	BondingCurve           solana.PublicKey
	User                   solana.PublicKey
	AssociatedBondingCurve solana.PublicKey
}

// createEvent mirrors the anchor event layout after its discriminator.
type createEvent struct {
	Name         string
	Symbol       string
	URI          string
	Mint         solana.PublicKey
	BondingCurve solana.PublicKey
	User         solana.PublicKey
}

// ParseCreateEvent scans transaction log lines for a CreateEvent and decodes
// it. Returns (nil, nil) when the logs carry no creation; an error only means
// a creation was present but malformed.
func ParseCreateEvent(logs []string) (*TokenCreation, error) {
	for _, line := range logs {
		payload, ok := strings.CutPrefix(line, programDataPrefix)
		if !ok {
			continue
		}

		raw, err := base64.StdEncoding.DecodeString(payload)
		if err != nil || len(raw) < 8 {
			continue
		}
		if !bytes.Equal(raw[:8], createEventDiscriminator) {
			continue
		}

		var ev createEvent
		if err := bin.NewBorshDecoder(raw[8:]).Decode(&ev); err != nil {
			return nil, fmt.Errorf("failed to decode create event: %w", err)
		}

		tc := &TokenCreation{
			Name:         ev.Name,
			Symbol:       ev.Symbol,
			URI:          ev.URI,
			Mint:         ev.Mint,
			BondingCurve: ev.BondingCurve,
			User:         ev.User,
		}
		tc.AssociatedBondingCurve, _, err = solana.FindAssociatedTokenAddress(ev.BondingCurve, ev.Mint)
		if err != nil {
			return nil, fmt.Errorf("failed to derive curve token account: %w", err)
		}
		return tc, nil
	}
	return nil, nil
}
