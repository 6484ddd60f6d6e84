package main

import (
	"context"
	"errors"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"zolta-live/internal/api"
	"zolta-live/internal/config"
	"zolta-live/internal/consent"
	"zolta-live/internal/domain"
	"zolta-live/internal/services"
	"zolta-live/internal/view"
	"zolta-live/pkg/logger"
)

// refreshFunc adapts a plain closure to the SnapshotRefresher interface.
type refreshFunc func()

func (f refreshFunc) RequestRefresh() { f() }

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	viper.SetDefault("bid.accept_terms", false)
	viper.BindEnv("bid.name", "ZOLTA_BID_NAME")
	viper.BindEnv("bid.email", "ZOLTA_BID_EMAIL")
	viper.BindEnv("bid.amount", "ZOLTA_BID_AMOUNT")
	viper.BindEnv("bid.accept_terms", "ZOLTA_BID_ACCEPT_TERMS")

	amount, err := decimal.NewFromString(viper.GetString("bid.amount"))
	if err != nil {
		log.Error("Invalid bid amount", "value", viper.GetString("bid.amount"), "error", err)
		os.Exit(1)
	}
	minIncrement, err := decimal.NewFromString(cfg.Auction.MinIncrement)
	if err != nil {
		log.Error("Invalid minimum increment", "value", cfg.Auction.MinIncrement, "error", err)
		os.Exit(1)
	}

	clock := clockwork.NewRealClock()
	client := api.NewClient(cfg.Server.BaseURL, cfg.Server.Timeout, log)
	terminal := view.NewTerminalView(os.Stdout, clock, cfg.View.OverlayDuration)
	controller := services.NewSyncController(terminal, minIncrement, log)
	store := consent.NewFileStore(afero.NewOsFs(), cfg.Consent.Path, cfg.Consent.TTL, log)

	ctx := context.Background()

	refresher := refreshFunc(func() {
		snapshot, err := client.FetchState(ctx, cfg.Auction.ID)
		if err != nil {
			log.Warn("Post-bid refresh failed", "error", err)
			return
		}
		controller.ApplySnapshot(snapshot)
	})

	submitter := services.NewBidSubmitter(client, store, controller, refresher, terminal, clock, log)

	req := &domain.BidRequest{
		Name:          viper.GetString("bid.name"),
		Email:         viper.GetString("bid.email"),
		Amount:        amount,
		TermsAccepted: viper.GetBool("bid.accept_terms"),
	}

	if err := submitter.Submit(ctx, cfg.Auction.ID, req); err != nil {
		if errors.Is(err, domain.ErrConsentRequired) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
