// internal/listener/listener.go
package listener

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"go.uber.org/zap"
)

// Listener watches program logs over a websocket and emits decoded token
// creations. It reconnects with a fixed delay when the subscription drops.
type Listener struct {
	wsURL     string
	programID solana.PublicKey
	logger    *zap.Logger

	reconnectDelay time.Duration
}

func New(wsURL string, programID solana.PublicKey, logger *zap.Logger) *Listener {
	return &Listener{
		wsURL:          wsURL,
		programID:      programID,
		logger:         logger.Named("listener"),
		reconnectDelay: 5 * time.Second,
	}
}

// Run subscribes to logs mentioning the program and sends every decoded
// creation to out until ctx ends. The channel is closed on return.
func (l *Listener) Run(ctx context.Context, out chan<- TokenCreation) error {
	defer close(out)

	for {
		if err := l.subscribe(ctx, out); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Warn("subscription dropped, reconnecting",
				zap.Duration("delay", l.reconnectDelay),
				zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.reconnectDelay):
		}
	}
}

func (l *Listener) subscribe(ctx context.Context, out chan<- TokenCreation) error {
	client, err := ws.Connect(ctx, l.wsURL)
	if err != nil {
		return err
	}
	defer client.Close()

	sub, err := client.LogsSubscribeMentions(l.programID, rpc.CommitmentConfirmed)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	l.logger.Info("subscribed to program logs", zap.String("program", l.programID.String()))

	for {
		result, err := sub.Recv(ctx)
		if err != nil {
			return err
		}
		if result.Value.Err != nil {
			continue
		}

		creation, err := ParseCreateEvent(result.Value.Logs)
		if err != nil {
			l.logger.Warn("malformed create event",
				zap.String("signature", result.Value.Signature.String()),
				zap.Error(err))
			continue
		}
		if creation == nil {
			continue
		}

		l.logger.Info("token created",
			zap.String("mint", creation.Mint.String()),
			zap.String("name", creation.Name),
			zap.String("symbol", creation.Symbol),
			zap.String("creator", creation.User.String()))

		select {
		case out <- *creation:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
