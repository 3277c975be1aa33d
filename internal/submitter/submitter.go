// internal/submitter/submitter.go
package submitter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/curvebot/pump-sniper/internal/wallet"
)

// ChainClient is the slice of the RPC adapter the submitter needs. Tests
// substitute a scripted stub.
type ChainClient interface {
	GetRecentBlockhash(ctx context.Context) (solana.Hash, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	WaitForConfirmation(ctx context.Context, signature solana.Signature) error
	GetTokenBalance(ctx context.Context, tokenAccount solana.PublicKey) (uint64, error)
	HasAccount(ctx context.Context, pubkey solana.PublicKey) (bool, error)
}

// ErrorKind classifies submission failures after retries are exhausted.
type ErrorKind int

const (
	// AccountCreationExhausted means the token account could not be created.
	AccountCreationExhausted ErrorKind = iota
	// TradeSubmissionExhausted means the trade transaction never confirmed.
	TradeSubmissionExhausted
)

// SubmissionError wraps the last attempt's failure after the retry bound is
// exhausted. Attempts counts every try made, including the first.
type SubmissionError struct {
	Kind     ErrorKind
	Attempts int
	Err      error
}

func (e *SubmissionError) Error() string {
	switch e.Kind {
	case AccountCreationExhausted:
		return fmt.Sprintf("token account creation failed after %d attempts: %v", e.Attempts, e.Err)
	case TradeSubmissionExhausted:
		return fmt.Sprintf("trade submission failed after %d attempts: %v", e.Attempts, e.Err)
	default:
		return fmt.Sprintf("submission failed after %d attempts: %v", e.Attempts, e.Err)
	}
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// IsSubmissionError reports whether err is an exhausted submission of the
// given kind.
func IsSubmissionError(err error, kind ErrorKind) bool {
	var se *SubmissionError
	if !errors.As(err, &se) {
		return false
	}
	return se.Kind == kind
}

// Options bound the retry behavior. BaseDelay feeds an exponential schedule
// of BaseDelay * 2^attempt with no jitter, so attempt timing stays
// predictable under load.
type Options struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultOptions is the production retry policy.
func DefaultOptions() Options {
	return Options{
		MaxRetries: 5,
		BaseDelay:  500 * time.Millisecond,
	}
}

// Submitter signs and lands transactions with bounded retries. Each logical
// trade is two phases: ensure the token account exists, then submit the trade
// itself. The phases retry independently.
type Submitter struct {
	client ChainClient
	wallet *wallet.Wallet
	opts   Options
	logger *zap.Logger
}

func New(client ChainClient, w *wallet.Wallet, opts Options, logger *zap.Logger) *Submitter {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = DefaultOptions().BaseDelay
	}
	return &Submitter{
		client: client,
		wallet: w,
		opts:   opts,
		logger: logger.Named("submitter"),
	}
}

// EnsureTokenAccount creates the wallet's associated token account for mint
// if it does not exist. An account that already exists skips the create
// transaction entirely; the whole check-then-create phase retries as a unit,
// and the create instruction is idempotent, so retrying after a lost
// confirmation cannot double-create.
func (s *Submitter) EnsureTokenAccount(ctx context.Context, mint solana.PublicKey) (solana.PublicKey, error) {
	ata, err := s.wallet.ATA(mint)
	if err != nil {
		return solana.PublicKey{}, err
	}

	ix, err := s.wallet.CreateATAInstruction(mint)
	if err != nil {
		return solana.PublicKey{}, err
	}

	attempts := 0
	op := func() (solana.Signature, error) {
		attempts++
		exists, err := s.client.HasAccount(ctx, ata)
		if err != nil {
			return solana.Signature{}, fmt.Errorf("failed to check token account: %w", err)
		}
		if exists {
			return solana.Signature{}, nil
		}
		return s.signAndLand(ctx, []solana.Instruction{ix})
	}

	if _, err := s.retry(ctx, op, "create token account", mint); err != nil {
		return solana.PublicKey{}, &SubmissionError{
			Kind:     AccountCreationExhausted,
			Attempts: attempts,
			Err:      err,
		}
	}
	return ata, nil
}

// SubmitTrade lands a single trade instruction and returns its signature.
// Every retry re-fetches a fresh blockhash but reuses the instruction as
// built, so the amounts and limits quoted up front are what lands.
func (s *Submitter) SubmitTrade(ctx context.Context, ix solana.Instruction, mint solana.PublicKey) (solana.Signature, error) {
	attempts := 0
	op := func() (solana.Signature, error) {
		attempts++
		return s.signAndLand(ctx, []solana.Instruction{ix})
	}

	sig, err := s.retry(ctx, op, "submit trade", mint)
	if err != nil {
		return solana.Signature{}, &SubmissionError{
			Kind:     TradeSubmissionExhausted,
			Attempts: attempts,
			Err:      err,
		}
	}
	return sig, nil
}

// TokenBalance reads the wallet's raw balance for mint.
func (s *Submitter) TokenBalance(ctx context.Context, mint solana.PublicKey) (uint64, error) {
	ata, err := s.wallet.ATA(mint)
	if err != nil {
		return 0, err
	}
	return s.client.GetTokenBalance(ctx, ata)
}

func (s *Submitter) retry(ctx context.Context, op backoff.Operation[solana.Signature], what string, mint solana.PublicKey) (solana.Signature, error) {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     s.opts.BaseDelay,
		Multiplier:          2,
		RandomizationFactor: 0,
		MaxInterval:         time.Minute,
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(s.opts.MaxRetries)),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.logger.Warn("attempt failed, retrying",
				zap.String("op", what),
				zap.String("mint", mint.String()),
				zap.Duration("next_in", next),
				zap.Error(err))
		}),
	)
}

func (s *Submitter) signAndLand(ctx context.Context, instructions []solana.Instruction) (solana.Signature, error) {
	blockhash, err := s.client.GetRecentBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		blockhash,
		solana.TransactionPayer(s.wallet.PublicKey),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to build transaction: %w", err)
	}

	if err := s.wallet.SignTransaction(tx); err != nil {
		return solana.Signature{}, err
	}

	sig, err := s.client.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	if err := s.client.WaitForConfirmation(ctx, sig); err != nil {
		return solana.Signature{}, fmt.Errorf("transaction %s not confirmed: %w", sig, err)
	}
	return sig, nil
}
