package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"

	"zolta-live/internal/api"
	"zolta-live/internal/config"
	"zolta-live/internal/services"
	"zolta-live/internal/transport"
	"zolta-live/internal/view"
	"zolta-live/pkg/logger"
)

func main() {
	log := logger.New()
	log.Info("Starting Zolta auction watcher")

	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	minIncrement, err := decimal.NewFromString(cfg.Auction.MinIncrement)
	if err != nil {
		log.Error("Invalid minimum increment", "value", cfg.Auction.MinIncrement, "error", err)
		os.Exit(1)
	}

	clock := clockwork.NewRealClock()
	client := api.NewClient(cfg.Server.BaseURL, cfg.Server.Timeout, log)
	dialer := api.NewSSEDialer(cfg.Server.BaseURL, log)

	terminal := view.NewTerminalView(os.Stdout, clock, cfg.View.OverlayDuration)
	controller := services.NewSyncController(terminal, minIncrement, log)

	channel := transport.NewChannel(cfg.Auction.ID, client, dialer, controller, transport.Options{
		PollInterval:   cfg.Sync.PollInterval,
		SafetyInterval: cfg.Sync.SafetyInterval,
		Clock:          clock,
	}, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The countdown target comes from the coarse status endpoint; the
	// presenter runs independently of the sync loop.
	go func() {
		status, err := client.FetchStatus(ctx, cfg.Auction.ID)
		if err != nil {
			log.Warn("Could not fetch auction end date, countdown disabled", "error", err)
			return
		}
		presenter := services.NewCountdownPresenter(terminal, clock, log)
		presenter.Run(ctx, status.EndDate)
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- channel.Run(ctx)
	}()

	log.Info("Watching auction", "auction_id", cfg.Auction.ID, "server", cfg.Server.BaseURL)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("Shutting down watcher...")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Transport channel failed", "error", err)
			os.Exit(1)
		}
	}

	log.Info("Watcher stopped")
}
