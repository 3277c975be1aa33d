// internal/pumpfun/accounts.go
package pumpfun

import (
	"github.com/gagliardetto/solana-go"
)

// Known pump.fun protocol addresses.
var (
	// ProgramID is the pump.fun program.
	ProgramID = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")

	// GlobalAccount holds protocol-wide configuration.
	GlobalAccount = solana.MustPublicKeyFromBase58("4wTV1YmiEkRvAtNtsSGPtUrqRYQMe5SKy2uB4Jjaxnjf")

	// FeeRecipient receives protocol fees on every trade.
	FeeRecipient = solana.MustPublicKeyFromBase58("CebN5WGQ4jvEPvsVU4EoHEpgzq1VV7AbicfhtW4xC9iM")

	// EventAuthority signs the protocol's anchor event CPIs.
	EventAuthority = solana.MustPublicKeyFromBase58("Ce6TQqeHC9p8KetsN6JsjHK7UTZk7nasjjnr7XxXp9F1")

	// LiquidityMigrator moves graduated curves to the downstream venue.
	LiquidityMigrator = solana.MustPublicKeyFromBase58("39azUYFWPz3VHgKCf3VChUwbpURdCHRxjWVowf5jUJjg")
)

// DeriveBondingCurve derives the bonding curve PDA for a mint using the
// "bonding-curve" seed.
func DeriveBondingCurve(mint, programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{[]byte("bonding-curve"), mint.Bytes()},
		programID,
	)
}

// DeriveAssociatedBondingCurve derives the curve's token vault: the associated
// token account owned by the bonding curve PDA for the mint.
func DeriveAssociatedBondingCurve(mint, bondingCurve solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(bondingCurve, mint)
	return ata, err
}
