// internal/chain/client.go
package chain

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// Client is a thin adapter over the Solana JSON-RPC client. It owns
// commitment levels and per-call logging so callers only deal in domain
// values.
type Client struct {
	rpc    *rpc.Client
	logger *zap.Logger

	confirmPollInterval time.Duration
	confirmTimeout      time.Duration
}

var ErrAccountNotFound = errors.New("account not found")

// IsAccountNotFound reports whether err means the queried account does not
// exist yet. The typed sentinels are checked first; the message match covers
// providers that phrase the condition themselves, and is deliberately
// narrower than "not found" so unrelated RPC errors (a missing method, say)
// are not mistaken for a missing account.
func IsAccountNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAccountNotFound) || errors.Is(err, rpc.ErrNotFound) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "account not found") ||
		strings.Contains(msg, "could not find account")
}

func NewClient(rpcURL string, logger *zap.Logger) *Client {
	return &Client{
		rpc:                 rpc.New(rpcURL),
		logger:              logger.Named("chain-client"),
		confirmPollInterval: 500 * time.Millisecond,
		confirmTimeout:      30 * time.Second,
	}
}

// SetConfirmTimeout overrides how long WaitForConfirmation polls before
// giving up.
func (c *Client) SetConfirmTimeout(d time.Duration) {
	if d > 0 {
		c.confirmTimeout = d
	}
}

// GetAccountDataBytes fetches raw account data at confirmed commitment.
// Returns ErrAccountNotFound when the account does not exist.
func (c *Client) GetAccountDataBytes(ctx context.Context, pubkey solana.PublicKey) ([]byte, error) {
	result, err := c.rpc.GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{
		Commitment: rpc.CommitmentConfirmed,
		Encoding:   solana.EncodingBase64,
	})
	if err != nil {
		if IsAccountNotFound(err) {
			return nil, ErrAccountNotFound
		}
		c.logger.Debug("GetAccountDataBytes error",
			zap.String("pubkey", pubkey.String()),
			zap.Error(err))
		return nil, err
	}
	if result == nil || result.Value == nil {
		return nil, ErrAccountNotFound
	}
	return result.Value.Data.GetBinary(), nil
}

// GetRecentBlockhash returns the latest blockhash at confirmed commitment so
// freshly sent transactions use the tightest valid window.
func (c *Client) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	result, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		c.logger.Error("GetRecentBlockhash error", zap.Error(err))
		return solana.Hash{}, err
	}
	return result.Value.Blockhash, nil
}

// SendTransaction submits tx with preflight skipped. Sniping trades race the
// block and the slippage bound already caps the downside of a failed land.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       true,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		c.logger.Error("SendTransaction error", zap.Error(err))
		return solana.Signature{}, err
	}
	return sig, nil
}

// WaitForConfirmation polls signature statuses until the transaction is
// confirmed or finalized, the context ends, or the timeout elapses.
func (c *Client) WaitForConfirmation(ctx context.Context, signature solana.Signature) error {
	ticker := time.NewTicker(c.confirmPollInterval)
	defer ticker.Stop()
	timeout := time.After(c.confirmTimeout)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			return fmt.Errorf("confirmation timeout for %s", signature)
		case <-ticker.C:
			statuses, err := c.rpc.GetSignatureStatuses(ctx, false, signature)
			if err != nil {
				c.logger.Warn("GetSignatureStatuses error", zap.Error(err))
				continue
			}
			if statuses == nil || len(statuses.Value) == 0 || statuses.Value[0] == nil {
				continue
			}
			status := statuses.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction %s failed on chain: %v", signature, status.Err)
			}
			if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
				status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return nil
			}
		}
	}
}

// HasAccount reports whether the account exists at confirmed commitment.
func (c *Client) HasAccount(ctx context.Context, pubkey solana.PublicKey) (bool, error) {
	_, err := c.GetAccountDataBytes(ctx, pubkey)
	if errors.Is(err, ErrAccountNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetTokenBalance returns the raw token balance of an associated token
// account, or ErrAccountNotFound when the account does not exist yet.
func (c *Client) GetTokenBalance(ctx context.Context, tokenAccount solana.PublicKey) (uint64, error) {
	result, err := c.rpc.GetTokenAccountBalance(ctx, tokenAccount, rpc.CommitmentConfirmed)
	if err != nil {
		if IsAccountNotFound(err) {
			return 0, ErrAccountNotFound
		}
		c.logger.Debug("GetTokenBalance error",
			zap.String("account", tokenAccount.String()),
			zap.Error(err))
		return 0, err
	}
	if result == nil || result.Value == nil {
		return 0, ErrAccountNotFound
	}
	amount, err := strconv.ParseUint(result.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse token balance %q: %w", result.Value.Amount, err)
	}
	return amount, nil
}

// GetBalance returns the lamport balance of an account.
func (c *Client) GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error) {
	result, err := c.rpc.GetBalance(ctx, pubkey, rpc.CommitmentConfirmed)
	if err != nil {
		c.logger.Error("GetBalance error", zap.Error(err))
		return 0, err
	}
	return result.Value, nil
}
