// internal/sniper/sniper_test.go
package sniper

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/curvebot/pump-sniper/internal/config"
	"github.com/curvebot/pump-sniper/internal/listener"
	"github.com/curvebot/pump-sniper/internal/pumpfun"
	"github.com/curvebot/pump-sniper/internal/tradelog"
	"github.com/curvebot/pump-sniper/internal/wallet"
)

type stubReader struct {
	data map[string][]byte
	err  error
}

func (r *stubReader) GetAccountDataBytes(ctx context.Context, pubkey solana.PublicKey) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.data[pubkey.String()], nil
}

type submitted struct {
	ix   solana.Instruction
	mint solana.PublicKey
}

type stubTrades struct {
	w *wallet.Wallet

	ensureErr error
	submitErr error
	balance   uint64
	balErr    error

	ensured   []solana.PublicKey
	submitted []submitted
}

func (s *stubTrades) EnsureTokenAccount(ctx context.Context, mint solana.PublicKey) (solana.PublicKey, error) {
	if s.ensureErr != nil {
		return solana.PublicKey{}, s.ensureErr
	}
	s.ensured = append(s.ensured, mint)
	return s.w.ATA(mint)
}

func (s *stubTrades) SubmitTrade(ctx context.Context, ix solana.Instruction, mint solana.PublicKey) (solana.Signature, error) {
	if s.submitErr != nil {
		return solana.Signature{}, s.submitErr
	}
	s.submitted = append(s.submitted, submitted{ix: ix, mint: mint})
	var sig solana.Signature
	sig[0] = byte(len(s.submitted))
	return sig, nil
}

func (s *stubTrades) TokenBalance(ctx context.Context, mint solana.PublicKey) (uint64, error) {
	return s.balance, s.balErr
}

type fixture struct {
	sniper  *Sniper
	reader  *stubReader
	trades  *stubTrades
	cfg     *config.Config
	logDir  string
	journal *tradelog.Journal
}

func newFixture(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()

	cfg := &config.Config{
		Mode:                  config.ModeSingle,
		BuyAmountSOL:          1.0,
		BuySlippage:           0.2,
		SellSlippage:          0.2,
		TokenDecimals:         6,
		StabilizationDelaySec: 0,
		SellDelaySec:          0,
	}
	if mutate != nil {
		mutate(cfg)
	}

	proto, err := pumpfun.NewConfig(pumpfun.DefaultBuyDiscriminator, pumpfun.DefaultSellDiscriminator)
	require.NoError(t, err)

	logDir := filepath.Join(t.TempDir(), "trades")
	journal, err := tradelog.Open(logDir)
	require.NoError(t, err)
	t.Cleanup(func() { journal.Close() })

	w := wallet.NewRandom()
	reader := &stubReader{data: map[string][]byte{}}
	trades := &stubTrades{w: w}

	return &fixture{
		sniper:  New(cfg, proto, reader, trades, w, journal, zap.NewNop()),
		reader:  reader,
		trades:  trades,
		cfg:     cfg,
		logDir:  logDir,
		journal: journal,
	}
}

func newCreation(t *testing.T, name, symbol string) listener.TokenCreation {
	t.Helper()

	mint := solana.NewWallet().PublicKey()
	curve, _, err := pumpfun.DeriveBondingCurve(mint, pumpfun.ProgramID)
	require.NoError(t, err)
	assoc, err := pumpfun.DeriveAssociatedBondingCurve(mint, curve)
	require.NoError(t, err)

	return listener.TokenCreation{
		Name:                   name,
		Symbol:                 symbol,
		Mint:                   mint,
		BondingCurve:           curve,
		User:                   solana.NewWallet().PublicKey(),
		AssociatedBondingCurve: assoc,
	}
}

// seedCurve stores a curve priced at 0.00003 SOL per token.
func (f *fixture) seedCurve(tc listener.TokenCreation, complete bool) {
	f.reader.data[tc.BondingCurve.String()] = pumpfun.EncodeCurveState(&pumpfun.CurveState{
		VirtualTokenReserves: 1_000_000_000_000,
		VirtualSolReserves:   30_000_000_000,
		RealTokenReserves:    800_000_000_000,
		TokenTotalSupply:     1_000_000_000_000,
		Complete:             complete,
	})
}

func (f *fixture) journalLines(t *testing.T) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.logDir, "trades.log"))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)

	var lines []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &m))
		lines = append(lines, m)
	}
	return lines
}

func TestSnipe_BuyOnly(t *testing.T) {
	f := newFixture(t, nil)
	tc := newCreation(t, "Doge Classic", "DOGC")
	f.seedCurve(tc, false)

	require.NoError(t, f.sniper.Snipe(context.Background(), tc))

	require.Len(t, f.trades.ensured, 1)
	assert.Equal(t, tc.Mint, f.trades.ensured[0])
	require.Len(t, f.trades.submitted, 1)

	// Frozen amounts: 1 SOL at 0.00003 with 20% slippage.
	data, err := f.trades.submitted[0].ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 24)
	amount := binary.LittleEndian.Uint64(data[8:16])
	limit := binary.LittleEndian.Uint64(data[16:24])
	assert.InDelta(t, 33_333_333_333, float64(amount), 1_000)
	assert.Equal(t, uint64(1_200_000_000), limit)

	lines := f.journalLines(t)
	require.Len(t, lines, 1)
	assert.Equal(t, "buy", lines[0]["action"])
	assert.Equal(t, tc.Mint.String(), lines[0]["token_address"])
	assert.NotNil(t, lines[0]["tx_hash"])
	assert.InDelta(t, 0.00003, lines[0]["price"].(float64), 1e-12)

	// Token metadata is saved per mint.
	_, err = os.Stat(filepath.Join(f.logDir, tc.Mint.String()+".txt"))
	assert.NoError(t, err)
}

func TestSnipe_SellAfterBuy(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.SellAfterBuy = true })
	tc := newCreation(t, "Doge Classic", "DOGC")
	f.seedCurve(tc, false)
	f.trades.balance = 33_333_333_333

	require.NoError(t, f.sniper.Snipe(context.Background(), tc))
	require.Len(t, f.trades.submitted, 2)

	sellData, err := f.trades.submitted[1].ix.Data()
	require.NoError(t, err)
	assert.Equal(t, uint64(33_333_333_333), binary.LittleEndian.Uint64(sellData[8:16]))
	minOut := binary.LittleEndian.Uint64(sellData[16:24])
	assert.InDelta(t, 800_000_000, float64(minOut), 100)

	lines := f.journalLines(t)
	require.Len(t, lines, 2)
	assert.Equal(t, "buy", lines[0]["action"])
	assert.Equal(t, "sell", lines[1]["action"])
	assert.NotNil(t, lines[1]["tx_hash"])
}

func TestSnipe_BuyFailureRecordsNullHash(t *testing.T) {
	f := newFixture(t, nil)
	tc := newCreation(t, "Doge Classic", "DOGC")
	f.seedCurve(tc, false)
	f.trades.submitErr = errors.New("exhausted")

	require.Error(t, f.sniper.Snipe(context.Background(), tc))

	lines := f.journalLines(t)
	require.Len(t, lines, 1)
	assert.Equal(t, "buy", lines[0]["action"])
	v, ok := lines[0]["tx_hash"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestSnipe_SellFailureKeepsBuyRecord(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.SellAfterBuy = true })
	tc := newCreation(t, "Doge Classic", "DOGC")
	f.seedCurve(tc, false)
	f.trades.balErr = errors.New("rpc down")

	require.Error(t, f.sniper.Snipe(context.Background(), tc))

	lines := f.journalLines(t)
	require.Len(t, lines, 2)
	assert.NotNil(t, lines[0]["tx_hash"])
	assert.Nil(t, lines[1]["tx_hash"])
}

func TestSnipe_GraduatedCurve(t *testing.T) {
	f := newFixture(t, nil)
	tc := newCreation(t, "Doge Classic", "DOGC")
	f.seedCurve(tc, true)

	err := f.sniper.Snipe(context.Background(), tc)
	require.Error(t, err)
	assert.Empty(t, f.trades.submitted)
	assert.Empty(t, f.journalLines(t))
}

func TestRun_SingleModeHaltsOnNonMatch(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.MatchString = "pepe" })

	creations := make(chan listener.TokenCreation, 1)
	creations <- newCreation(t, "Doge Classic", "DOGC")

	err := f.sniper.Run(context.Background(), creations)
	require.NoError(t, err)
	assert.Empty(t, f.trades.submitted)
}

func TestRun_ContinuousModeSkipsNonMatch(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.Mode = config.ModeContinuous
		c.MatchString = "doge"
	})

	miss := newCreation(t, "Pepe Coin", "PEPE")
	hit := newCreation(t, "Doge Classic", "DOGC")
	f.seedCurve(hit, false)

	creations := make(chan listener.TokenCreation, 2)
	creations <- miss
	creations <- hit
	close(creations)

	require.NoError(t, f.sniper.Run(context.Background(), creations))
	require.Len(t, f.trades.submitted, 1)
	assert.Equal(t, hit.Mint, f.trades.submitted[0].mint)
}

func TestRun_SingleModeStopsAfterSnipe(t *testing.T) {
	f := newFixture(t, nil)

	first := newCreation(t, "Doge Classic", "DOGC")
	second := newCreation(t, "Other", "OTH")
	f.seedCurve(first, false)
	f.seedCurve(second, false)

	creations := make(chan listener.TokenCreation, 2)
	creations <- first
	creations <- second

	require.NoError(t, f.sniper.Run(context.Background(), creations))
	require.Len(t, f.trades.submitted, 1)
	assert.Equal(t, first.Mint, f.trades.submitted[0].mint)
}

func TestRun_ContextCancel(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.Mode = config.ModeContinuous })

	ctx, cancel := context.WithCancel(context.Background())
	creations := make(chan listener.TokenCreation)

	done := make(chan error, 1)
	go func() { done <- f.sniper.Run(ctx, creations) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
