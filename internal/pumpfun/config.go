// internal/pumpfun/config.go
package pumpfun

import (
	"encoding/hex"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Default instruction discriminators for the pump.fun program. The builders
// never fabricate these; they are protocol constants carried in Config so
// deployments can override them without a rebuild.
const (
	DefaultBuyDiscriminator  = "66063d1201daebea"
	DefaultSellDiscriminator = "33e685a4017f83ad"
)

// Config holds the protocol addresses and instruction discriminators used to
// build trade instructions. A Config is constructed once and passed into each
// component; there is no process-wide default state.
type Config struct {
	Program           solana.PublicKey
	Global            solana.PublicKey
	FeeRecipient      solana.PublicKey
	EventAuthority    solana.PublicKey
	LiquidityMigrator solana.PublicKey

	BuyDiscriminator  [8]byte
	SellDiscriminator [8]byte
}

// NewConfig builds a protocol config from the well-known addresses and the
// given discriminator hex strings.
func NewConfig(buyDiscHex, sellDiscHex string) (*Config, error) {
	cfg := &Config{
		Program:           ProgramID,
		Global:            GlobalAccount,
		FeeRecipient:      FeeRecipient,
		EventAuthority:    EventAuthority,
		LiquidityMigrator: LiquidityMigrator,
	}

	var err error
	cfg.BuyDiscriminator, err = parseDiscriminator(buyDiscHex)
	if err != nil {
		return nil, fmt.Errorf("invalid buy discriminator: %w", err)
	}
	cfg.SellDiscriminator, err = parseDiscriminator(sellDiscHex)
	if err != nil {
		return nil, fmt.Errorf("invalid sell discriminator: %w", err)
	}
	return cfg, nil
}

func parseDiscriminator(s string) ([8]byte, error) {
	var out [8]byte
	raw, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	if len(raw) != 8 {
		return out, fmt.Errorf("expected 8 bytes, got %d", len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

// ApplyAddressOverrides replaces protocol addresses with the given base58
// values. Empty strings keep the well-known defaults.
func (c *Config) ApplyAddressOverrides(program, global, feeRecipient, eventAuthority, migrator string) error {
	targets := []struct {
		value string
		dst   *solana.PublicKey
		name  string
	}{
		{program, &c.Program, "program"},
		{global, &c.Global, "global"},
		{feeRecipient, &c.FeeRecipient, "fee recipient"},
		{eventAuthority, &c.EventAuthority, "event authority"},
		{migrator, &c.LiquidityMigrator, "liquidity migrator"},
	}
	for _, t := range targets {
		if t.value == "" {
			continue
		}
		key, err := solana.PublicKeyFromBase58(t.value)
		if err != nil {
			return fmt.Errorf("invalid %s address %q: %w", t.name, t.value, err)
		}
		*t.dst = key
	}
	return nil
}

// Validate checks that every address the builders reference is set.
func (c *Config) Validate() error {
	if c.Program.IsZero() {
		return fmt.Errorf("program address is required")
	}
	if c.Global.IsZero() {
		return fmt.Errorf("global account address is required")
	}
	if c.FeeRecipient.IsZero() {
		return fmt.Errorf("fee recipient address is required")
	}
	if c.EventAuthority.IsZero() {
		return fmt.Errorf("event authority address is required")
	}
	return nil
}
