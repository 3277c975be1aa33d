// internal/sniper/sniper.go
package sniper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/curvebot/pump-sniper/internal/config"
	"github.com/curvebot/pump-sniper/internal/listener"
	"github.com/curvebot/pump-sniper/internal/pumpfun"
	"github.com/curvebot/pump-sniper/internal/tradelog"
	"github.com/curvebot/pump-sniper/internal/wallet"
)

// ChainReader is the account access the sniper needs to price a curve.
type ChainReader interface {
	GetAccountDataBytes(ctx context.Context, pubkey solana.PublicKey) ([]byte, error)
}

// TradeSubmitter lands prepared trades. The production implementation is the
// retrying submitter; tests substitute a scripted stub.
type TradeSubmitter interface {
	EnsureTokenAccount(ctx context.Context, mint solana.PublicKey) (solana.PublicKey, error)
	SubmitTrade(ctx context.Context, ix solana.Instruction, mint solana.PublicKey) (solana.Signature, error)
	TokenBalance(ctx context.Context, mint solana.PublicKey) (uint64, error)
}

// Sniper drives the trade pipeline: take a token creation, wait for the curve
// to stabilize, price it, then land the buy and optionally the follow-up
// sell. Each creation is handled to completion before the next is taken.
type Sniper struct {
	cfg     *config.Config
	proto   *pumpfun.Config
	reader  ChainReader
	trades  TradeSubmitter
	wallet  *wallet.Wallet
	journal *tradelog.Journal
	filters Filters
	logger  *zap.Logger
}

func New(
	cfg *config.Config,
	proto *pumpfun.Config,
	reader ChainReader,
	trades TradeSubmitter,
	w *wallet.Wallet,
	journal *tradelog.Journal,
	logger *zap.Logger,
) *Sniper {
	return &Sniper{
		cfg:     cfg,
		proto:   proto,
		reader:  reader,
		trades:  trades,
		wallet:  w,
		journal: journal,
		filters: Filters{
			MatchString: cfg.MatchString,
			Creator:     cfg.CreatorAddress,
		},
		logger: logger.Named("sniper"),
	}
}

// Run consumes token creations until the channel closes or ctx ends. In
// single mode the first creation decides the run: a non-matching token ends
// it just like a completed snipe does. Continuous mode keeps going and only
// stops on shutdown.
func (s *Sniper) Run(ctx context.Context, creations <-chan listener.TokenCreation) error {
	for {
		s.logger.Info("waiting for token creation")

		var tc listener.TokenCreation
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case tc, ok = <-creations:
			if !ok {
				return nil
			}
		}

		if !s.filters.Match(tc) {
			s.logger.Info("token does not match filters, skipping",
				zap.String("mint", tc.Mint.String()),
				zap.String("name", tc.Name),
				zap.String("symbol", tc.Symbol))
			if s.cfg.Mode == config.ModeSingle {
				return nil
			}
			continue
		}

		if err := s.Snipe(ctx, tc); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			s.logger.Error("snipe failed",
				zap.String("mint", tc.Mint.String()),
				zap.Error(err))
		}

		if s.cfg.Mode == config.ModeSingle {
			return nil
		}
	}
}

// Snipe executes the full pipeline for one token. The buy and the optional
// sell are journaled independently; a failed leg records a null transaction
// hash and does not hide the other leg's outcome.
func (s *Sniper) Snipe(ctx context.Context, tc listener.TokenCreation) error {
	log := s.logger.With(
		zap.String("mint", tc.Mint.String()),
		zap.String("symbol", tc.Symbol))

	if err := s.journal.SaveTokenInfo(tc.Mint.String(), tc); err != nil {
		log.Warn("failed to save token info", zap.Error(err))
	}

	delay := time.Duration(s.cfg.StabilizationDelaySec) * time.Second
	if delay > 0 {
		log.Info("waiting for curve to stabilize", zap.Duration("delay", delay))
		if err := sleepCtx(ctx, delay); err != nil {
			return err
		}
	}

	state, err := s.readCurveState(ctx, tc.BondingCurve)
	if err != nil {
		return err
	}
	if state.Complete {
		return fmt.Errorf("curve for %s already graduated", tc.Mint)
	}

	decimals := uint8(s.cfg.TokenDecimals)
	price, err := pumpfun.SpotPrice(state, decimals)
	if err != nil {
		return err
	}
	log.Info("curve priced",
		zap.Float64("price_sol", price),
		zap.Float64("progress", pumpfun.Progress(state)))

	buyHash, buyErr := s.executeBuy(ctx, tc, price, decimals)
	s.record("buy", tc.Mint, price, buyHash)
	if buyErr != nil {
		return buyErr
	}

	if !s.cfg.SellAfterBuy {
		return nil
	}

	sellDelay := time.Duration(s.cfg.SellDelaySec) * time.Second
	if sellDelay > 0 {
		log.Info("holding before sell", zap.Duration("delay", sellDelay))
		if err := sleepCtx(ctx, sellDelay); err != nil {
			return err
		}
	}

	sellHash, sellErr := s.executeSell(ctx, tc, price, decimals)
	s.record("sell", tc.Mint, price, sellHash)
	return sellErr
}

func (s *Sniper) executeBuy(ctx context.Context, tc listener.TokenCreation, price float64, decimals uint8) (*solana.Signature, error) {
	quote, err := pumpfun.QuoteBuy(s.cfg.BuyAmountSOL, price, s.cfg.BuySlippage)
	if err != nil {
		return nil, err
	}

	ata, err := s.trades.EnsureTokenAccount(ctx, tc.Mint)
	if err != nil {
		return nil, err
	}

	// Amounts are frozen here; retries inside the submitter land exactly
	// this quote.
	ix := pumpfun.BuildBuyInstruction(s.proto, s.tradeAccounts(tc, ata),
		pumpfun.RawTokenAmount(quote.TokenAmount, decimals),
		quote.MaxCostLamports)

	sig, err := s.trades.SubmitTrade(ctx, ix, tc.Mint)
	if err != nil {
		return nil, err
	}

	s.logger.Info("buy landed",
		zap.String("mint", tc.Mint.String()),
		zap.String("signature", sig.String()),
		zap.Uint64("max_cost_lamports", quote.MaxCostLamports))
	return &sig, nil
}

func (s *Sniper) executeSell(ctx context.Context, tc listener.TokenCreation, price float64, decimals uint8) (*solana.Signature, error) {
	balance, err := s.trades.TokenBalance(ctx, tc.Mint)
	if err != nil {
		return nil, fmt.Errorf("failed to read token balance: %w", err)
	}
	if balance == 0 {
		return nil, fmt.Errorf("no tokens to sell for %s", tc.Mint)
	}

	quote, err := pumpfun.QuoteSell(balance, decimals, price, s.cfg.SellSlippage)
	if err != nil {
		return nil, err
	}

	ata, err := s.wallet.ATA(tc.Mint)
	if err != nil {
		return nil, err
	}

	ix := pumpfun.BuildSellInstruction(s.proto, s.tradeAccounts(tc, ata),
		balance, quote.MinSolOutputLamports)

	sig, err := s.trades.SubmitTrade(ctx, ix, tc.Mint)
	if err != nil {
		return nil, err
	}

	s.logger.Info("sell landed",
		zap.String("mint", tc.Mint.String()),
		zap.String("signature", sig.String()),
		zap.Uint64("min_out_lamports", quote.MinSolOutputLamports))
	return &sig, nil
}

func (s *Sniper) readCurveState(ctx context.Context, curve solana.PublicKey) (*pumpfun.CurveState, error) {
	data, err := s.reader.GetAccountDataBytes(ctx, curve)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch curve account: %w", err)
	}
	return pumpfun.DecodeCurveState(data)
}

func (s *Sniper) tradeAccounts(tc listener.TokenCreation, userATA solana.PublicKey) pumpfun.TradeAccounts {
	return pumpfun.TradeAccounts{
		Mint:                   tc.Mint,
		BondingCurve:           tc.BondingCurve,
		AssociatedBondingCurve: tc.AssociatedBondingCurve,
		User:                   s.wallet.PublicKey,
		UserTokenAccount:       userATA,
	}
}

func (s *Sniper) record(action string, mint solana.PublicKey, price float64, sig *solana.Signature) {
	var hash *string
	if sig != nil {
		str := sig.String()
		hash = &str
	}
	err := s.journal.Record(tradelog.TradeRecord{
		Timestamp:    time.Now().UTC(),
		Action:       action,
		TokenAddress: mint.String(),
		Price:        price,
		TxHash:       hash,
	})
	if err != nil {
		s.logger.Warn("failed to journal trade", zap.Error(err))
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
