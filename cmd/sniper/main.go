// cmd/sniper/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/curvebot/pump-sniper/internal/chain"
	"github.com/curvebot/pump-sniper/internal/config"
	"github.com/curvebot/pump-sniper/internal/listener"
	"github.com/curvebot/pump-sniper/internal/logger"
	"github.com/curvebot/pump-sniper/internal/pumpfun"
	"github.com/curvebot/pump-sniper/internal/sniper"
	"github.com/curvebot/pump-sniper/internal/submitter"
	"github.com/curvebot/pump-sniper/internal/tradelog"
	"github.com/curvebot/pump-sniper/internal/wallet"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	match := flag.String("match", "", "only snipe tokens whose name or symbol contains this string")
	creator := flag.String("creator", "", "only snipe tokens launched by this address")
	continuous := flag.Bool("continuous", false, "keep sniping until stopped instead of exiting after one token")
	sellAfterBuy := flag.Bool("sell-after-buy", false, "sell the position after the hold delay")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	// Flags take precedence over the config file.
	if *match != "" {
		cfg.MatchString = *match
	}
	if *creator != "" {
		cfg.CreatorAddress = *creator
	}
	if *continuous {
		cfg.Mode = config.ModeContinuous
	}
	if *sellAfterBuy {
		cfg.SellAfterBuy = true
	}

	log, err := logger.New(cfg.LogFile, cfg.DebugLogging)
	if err != nil {
		zap.NewExample().Fatal("failed to init logger", zap.Error(err))
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("sniper exited with error", zap.Error(err))
	}
	log.Info("sniper stopped")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := wallet.New(cfg.PrivateKey)
	if err != nil {
		return err
	}
	log.Info("wallet loaded", zap.String("pubkey", w.String()))

	buyDisc := cfg.BuyDiscriminator
	if buyDisc == "" {
		buyDisc = pumpfun.DefaultBuyDiscriminator
	}
	sellDisc := cfg.SellDiscriminator
	if sellDisc == "" {
		sellDisc = pumpfun.DefaultSellDiscriminator
	}
	proto, err := pumpfun.NewConfig(buyDisc, sellDisc)
	if err != nil {
		return err
	}
	if err := proto.ApplyAddressOverrides(
		cfg.ProgramAddress, cfg.GlobalAddress, cfg.FeeRecipient,
		cfg.EventAuthority, cfg.LiquidityMigrator,
	); err != nil {
		return err
	}
	if err := proto.Validate(); err != nil {
		return err
	}

	journal, err := tradelog.Open(cfg.TradeLogDir)
	if err != nil {
		return err
	}
	defer journal.Close()

	client := chain.NewClient(cfg.RPCEndpoint, log)
	client.SetConfirmTimeout(time.Duration(cfg.ConfirmTimeoutSec) * time.Second)
	trades := submitter.New(client, w, submitter.Options{
		MaxRetries: cfg.Retries,
		BaseDelay:  time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond,
	}, log)

	watch := listener.New(cfg.WSSEndpoint, proto.Program, log)
	engine := sniper.New(cfg, proto, client, trades, w, journal, log)

	creations := make(chan listener.TokenCreation, 16)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return watch.Run(ctx, creations)
	})
	g.Go(func() error {
		defer stop()
		return engine.Run(ctx, creations)
	})
	return g.Wait()
}
