package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"zolta-live/internal/simulator"
	"zolta-live/pkg/logger"
)

func main() {
	log := logger.New()
	log.Info("Starting Zolta auction simulator")

	viper.SetDefault("sim.addr", ":5000")
	viper.SetDefault("sim.duration", 10*time.Minute)
	viper.AutomaticEnv()
	viper.BindEnv("sim.addr", "ZOLTA_SIM_ADDR")
	viper.BindEnv("sim.duration", "ZOLTA_SIM_DURATION")

	addr := viper.GetString("sim.addr")
	duration := viper.GetDuration("sim.duration")

	clock := clockwork.NewRealClock()
	sim := simulator.New(clock, log)

	now := clock.Now()
	sim.AddAuction(&simulator.Auction{
		ID:           "1",
		Title:        "Vintage racefiets",
		MinPrice:     decimal.NewFromInt(50),
		MinIncrement: decimal.NewFromInt(5),
		StartDate:    now,
		EndDate:      now.Add(duration),
	})

	if err := sim.Start(); err != nil {
		log.Error("Failed to start simulator sweep", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:    addr,
		Handler: sim.Handler(),
	}

	go func() {
		log.Info("Simulator listening", "addr", addr, "auction_ends", now.Add(duration))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down simulator...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sim.Stop()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Simulator stopped")
}
