// internal/pumpfun/instructions.go
package pumpfun

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// TradeAccounts collects the per-trade addresses that vary between tokens and
// users. Protocol-wide addresses come from Config.
type TradeAccounts struct {
	Mint                   solana.PublicKey
	BondingCurve           solana.PublicKey
	AssociatedBondingCurve solana.PublicKey
	User                   solana.PublicKey
	UserTokenAccount       solana.PublicKey
}

// BuildBuyInstruction assembles a pump.fun buy: spend up to maxCostLamports
// for tokenAmount raw token units. Account order is fixed by the program.
func BuildBuyInstruction(cfg *Config, acc TradeAccounts, tokenAmount, maxCostLamports uint64) solana.Instruction {
	metas := solana.AccountMetaSlice{
		solana.NewAccountMeta(acc.BondingCurve, true, false),
		solana.NewAccountMeta(acc.AssociatedBondingCurve, true, false),
		solana.NewAccountMeta(acc.UserTokenAccount, true, false),
		solana.NewAccountMeta(acc.User, true, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
	}

	return solana.NewInstruction(
		cfg.Program,
		metas,
		encodeTradeData(cfg.BuyDiscriminator, tokenAmount, maxCostLamports),
	)
}

// BuildSellInstruction assembles a pump.fun sell: sell tokenAmount raw token
// units for at least minSolOutput lamports.
func BuildSellInstruction(cfg *Config, acc TradeAccounts, tokenAmount, minSolOutput uint64) solana.Instruction {
	metas := solana.AccountMetaSlice{
		solana.NewAccountMeta(cfg.Global, false, false),
		solana.NewAccountMeta(cfg.FeeRecipient, true, false),
		solana.NewAccountMeta(acc.Mint, false, false),
		solana.NewAccountMeta(acc.BondingCurve, true, false),
		solana.NewAccountMeta(acc.AssociatedBondingCurve, true, false),
		solana.NewAccountMeta(acc.UserTokenAccount, true, false),
		solana.NewAccountMeta(acc.User, true, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(solana.SPLAssociatedTokenAccountProgramID, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(cfg.EventAuthority, false, false),
		solana.NewAccountMeta(cfg.Program, false, false),
	}

	return solana.NewInstruction(
		cfg.Program,
		metas,
		encodeTradeData(cfg.SellDiscriminator, tokenAmount, minSolOutput),
	)
}

// encodeTradeData packs the shared buy/sell payload: 8-byte discriminator
// followed by two little-endian u64s (amount, then the lamport limit).
func encodeTradeData(disc [8]byte, amount, limit uint64) []byte {
	data := make([]byte, 24)
	copy(data[:8], disc[:])
	binary.LittleEndian.PutUint64(data[8:16], amount)
	binary.LittleEndian.PutUint64(data[16:24], limit)
	return data
}
