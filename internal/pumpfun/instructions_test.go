// internal/pumpfun/instructions_test.go
package pumpfun

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTradeAccounts(t *testing.T) TradeAccounts {
	t.Helper()

	mint := solana.NewWallet().PublicKey()
	user := solana.NewWallet().PublicKey()

	curve, _, err := DeriveBondingCurve(mint, ProgramID)
	require.NoError(t, err)
	assocCurve, err := DeriveAssociatedBondingCurve(mint, curve)
	require.NoError(t, err)
	ata, _, err := solana.FindAssociatedTokenAddress(user, mint)
	require.NoError(t, err)

	return TradeAccounts{
		Mint:                   mint,
		BondingCurve:           curve,
		AssociatedBondingCurve: assocCurve,
		User:                   user,
		UserTokenAccount:       ata,
	}
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := NewConfig(DefaultBuyDiscriminator, DefaultSellDiscriminator)
	require.NoError(t, err)
	return cfg
}

func TestBuildBuyInstruction(t *testing.T) {
	cfg := testConfig(t)
	acc := testTradeAccounts(t)

	ix := BuildBuyInstruction(cfg, acc, 33_333_333_333, 1_200_000_000)

	assert.Equal(t, cfg.Program, ix.ProgramID())

	metas := ix.Accounts()
	require.Len(t, metas, 6)
	assert.Equal(t, acc.BondingCurve, metas[0].PublicKey)
	assert.Equal(t, acc.AssociatedBondingCurve, metas[1].PublicKey)
	assert.Equal(t, acc.UserTokenAccount, metas[2].PublicKey)
	assert.Equal(t, acc.User, metas[3].PublicKey)
	assert.Equal(t, solana.SystemProgramID, metas[4].PublicKey)
	assert.Equal(t, solana.TokenProgramID, metas[5].PublicKey)

	// Only the user signs; the first three accounts and the user are writable.
	for i, m := range metas {
		assert.Equal(t, i == 3, m.IsSigner, "meta %d signer flag", i)
		assert.Equal(t, i <= 3, m.IsWritable, "meta %d writable flag", i)
	}

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 24)
	assert.Equal(t, cfg.BuyDiscriminator[:], data[:8])
	assert.Equal(t, uint64(33_333_333_333), binary.LittleEndian.Uint64(data[8:16]))
	assert.Equal(t, uint64(1_200_000_000), binary.LittleEndian.Uint64(data[16:24]))
}

func TestBuildSellInstruction(t *testing.T) {
	cfg := testConfig(t)
	acc := testTradeAccounts(t)

	ix := BuildSellInstruction(cfg, acc, 33_333_333_333, 800_000_000)

	assert.Equal(t, cfg.Program, ix.ProgramID())

	metas := ix.Accounts()
	require.Len(t, metas, 12)
	assert.Equal(t, cfg.Global, metas[0].PublicKey)
	assert.Equal(t, cfg.FeeRecipient, metas[1].PublicKey)
	assert.Equal(t, acc.Mint, metas[2].PublicKey)
	assert.Equal(t, acc.BondingCurve, metas[3].PublicKey)
	assert.Equal(t, acc.AssociatedBondingCurve, metas[4].PublicKey)
	assert.Equal(t, acc.UserTokenAccount, metas[5].PublicKey)
	assert.Equal(t, acc.User, metas[6].PublicKey)
	assert.Equal(t, solana.SystemProgramID, metas[7].PublicKey)
	assert.Equal(t, solana.SPLAssociatedTokenAccountProgramID, metas[8].PublicKey)
	assert.Equal(t, solana.TokenProgramID, metas[9].PublicKey)
	assert.Equal(t, cfg.EventAuthority, metas[10].PublicKey)
	assert.Equal(t, cfg.Program, metas[11].PublicKey)

	for i, m := range metas {
		assert.Equal(t, i == 6, m.IsSigner, "meta %d signer flag", i)
	}
	for _, i := range []int{1, 3, 4, 5, 6} {
		assert.True(t, metas[i].IsWritable, "meta %d writable flag", i)
	}
	for _, i := range []int{0, 2, 7, 8, 9, 10, 11} {
		assert.False(t, metas[i].IsWritable, "meta %d writable flag", i)
	}

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 24)
	assert.Equal(t, cfg.SellDiscriminator[:], data[:8])
	assert.Equal(t, uint64(33_333_333_333), binary.LittleEndian.Uint64(data[8:16]))
	assert.Equal(t, uint64(800_000_000), binary.LittleEndian.Uint64(data[16:24]))
}

func TestNewConfig_RejectsBadDiscriminators(t *testing.T) {
	_, err := NewConfig("zz", DefaultSellDiscriminator)
	assert.Error(t, err)

	_, err = NewConfig("66063d1201daeb", DefaultSellDiscriminator) // 7 bytes
	assert.Error(t, err)

	_, err = NewConfig(DefaultBuyDiscriminator, "")
	assert.Error(t, err)
}

func TestApplyAddressOverrides(t *testing.T) {
	cfg := testConfig(t)
	custom := solana.NewWallet().PublicKey()

	require.NoError(t, cfg.ApplyAddressOverrides("", custom.String(), "", "", ""))
	assert.Equal(t, custom, cfg.Global)
	// Untouched fields keep the defaults.
	assert.Equal(t, ProgramID, cfg.Program)
	assert.Equal(t, FeeRecipient, cfg.FeeRecipient)

	assert.Error(t, cfg.ApplyAddressOverrides("not-an-address", "", "", "", ""))
	require.NoError(t, cfg.Validate())
}

func TestDeriveBondingCurve_Deterministic(t *testing.T) {
	mint := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

	a, bumpA, err := DeriveBondingCurve(mint, ProgramID)
	require.NoError(t, err)
	b, bumpB, err := DeriveBondingCurve(mint, ProgramID)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, bumpA, bumpB)

	other := solana.NewWallet().PublicKey()
	c, _, err := DeriveBondingCurve(other, ProgramID)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
