package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Auction AuctionConfig `mapstructure:"auction"`
	Sync    SyncConfig    `mapstructure:"sync"`
	View    ViewConfig    `mapstructure:"view"`
	Consent ConsentConfig `mapstructure:"consent"`
}

type ServerConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type AuctionConfig struct {
	ID           string `mapstructure:"id"`
	MinIncrement string `mapstructure:"min_increment"`
}

type SyncConfig struct {
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	SafetyInterval time.Duration `mapstructure:"safety_interval"`
}

type ViewConfig struct {
	OverlayDuration time.Duration `mapstructure:"overlay_duration"`
}

type ConsentConfig struct {
	Path string        `mapstructure:"path"`
	TTL  time.Duration `mapstructure:"ttl"`
}

func Load() (*Config, error) {
	// Set default values
	viper.SetDefault("server.base_url", "http://localhost:5000")
	viper.SetDefault("server.timeout", 10*time.Second)
	viper.SetDefault("auction.id", "1")
	viper.SetDefault("auction.min_increment", "1")
	viper.SetDefault("sync.poll_interval", 3*time.Second)
	viper.SetDefault("sync.safety_interval", 30*time.Second)
	viper.SetDefault("view.overlay_duration", 5*time.Second)
	viper.SetDefault("consent.path", ".zolta-terms")
	viper.SetDefault("consent.ttl", 30*24*time.Hour)

	// Configuration file settings
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variable support
	viper.AutomaticEnv()

	viper.BindEnv("server.base_url", "ZOLTA_SERVER_URL")
	viper.BindEnv("server.timeout", "ZOLTA_SERVER_TIMEOUT")
	viper.BindEnv("auction.id", "ZOLTA_AUCTION_ID")
	viper.BindEnv("auction.min_increment", "ZOLTA_MIN_INCREMENT")
	viper.BindEnv("sync.poll_interval", "ZOLTA_POLL_INTERVAL")
	viper.BindEnv("sync.safety_interval", "ZOLTA_SAFETY_INTERVAL")
	viper.BindEnv("consent.path", "ZOLTA_CONSENT_PATH")
	viper.BindEnv("consent.ttl", "ZOLTA_CONSENT_TTL")

	// Read configuration file (optional - defaults and env vars otherwise)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
