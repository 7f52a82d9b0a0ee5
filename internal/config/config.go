// Package config loads runtime configuration from a YAML file and the
// environment via viper, with validated defaults for every setting.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/efreitasn/stockbroker/internal/domain"
)

// Config holds all runtime configuration for the broker process.
type Config struct {
	Log    LogConfig     `mapstructure:"log"`
	HTTP   HTTPConfig    `mapstructure:"http"`
	Broker BrokerConfig  `mapstructure:"broker"`
	Feed   FeedConfig    `mapstructure:"feed"`
	Stocks []StockConfig `mapstructure:"stocks"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level      string `mapstructure:"level"`       // "debug", "info", "warn", "error"
	Format     string `mapstructure:"format"`      // "json" or "console"
	OutputFile string `mapstructure:"output_file"` // optional rotated log file
}

// HTTPConfig configures the read-only HTTP surface.
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// BrokerConfig configures the session protocol.
type BrokerConfig struct {
	RegistrationQueue   string        `mapstructure:"registration_queue"`
	QueueBuffer         int           `mapstructure:"queue_buffer"`
	RegistrationTimeout time.Duration `mapstructure:"registration_timeout"`
}

// FeedConfig configures the price feed.
type FeedConfig struct {
	File         string        `mapstructure:"file"`
	Interval     time.Duration `mapstructure:"interval"`
	HistoryDepth int           `mapstructure:"history_depth"` // ticks kept per symbol
}

// StockConfig describes one catalog entry listed at startup.
type StockConfig struct {
	Symbol string `mapstructure:"symbol"`
	Total  int64  `mapstructure:"total"`
	Price  string `mapstructure:"price"`
}

// Load reads configuration from the given file (or ./config.yaml when path
// is empty), applies environment overrides and defaults, and validates
// values. An absent file is fine when no explicit path was given.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 5*time.Second)
	v.SetDefault("http.write_timeout", 10*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("broker.registration_queue", "broker.registration")
	v.SetDefault("broker.queue_buffer", 64)
	v.SetDefault("broker.registration_timeout", 30*time.Second)
	v.SetDefault("feed.interval", 5*time.Second)
	v.SetDefault("feed.history_depth", 1000)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if !isValidLogLevel(cfg.Log.Level) {
		return nil, fmt.Errorf("invalid log.level: %q, must be one of: debug, info, warn, error", cfg.Log.Level)
	}
	if cfg.Broker.QueueBuffer <= 0 {
		return nil, fmt.Errorf("broker.queue_buffer must be > 0, got %d", cfg.Broker.QueueBuffer)
	}
	if cfg.Broker.RegistrationTimeout <= 0 {
		return nil, fmt.Errorf("broker.registration_timeout must be > 0")
	}
	if cfg.Feed.Interval <= 0 {
		return nil, fmt.Errorf("feed.interval must be > 0")
	}

	if len(cfg.Stocks) == 0 {
		cfg.Stocks = DefaultCatalog()
	}
	for _, s := range cfg.Stocks {
		if s.Symbol == "" {
			return nil, fmt.Errorf("stock catalog entry without a symbol")
		}
		if s.Total <= 0 {
			return nil, fmt.Errorf("stock %s: total must be > 0, got %d", s.Symbol, s.Total)
		}
		if _, err := domain.ParseAmount(s.Price); err != nil {
			return nil, fmt.Errorf("stock %s: %w", s.Symbol, err)
		}
	}

	return &cfg, nil
}

// DefaultCatalog returns the built-in stock catalog used when the
// configuration lists none.
func DefaultCatalog() []StockConfig {
	return []StockConfig{
		{Symbol: "MSFT", Total: 150, Price: "474.96"},
		{Symbol: "NVDA", Total: 75, Price: "144.90"},
		{Symbol: "AAPL", Total: 200, Price: "198.97"},
		{Symbol: "GOOGL", Total: 125, Price: "176.80"},
		{Symbol: "AMZN", Total: 85, Price: "213.03"},
		{Symbol: "META", Total: 60, Price: "693.12"},
		{Symbol: "TSLA", Total: 40, Price: "319.21"},
		{Symbol: "BRK.A", Total: 1, Price: "738193.00"},
		{Symbol: "TSM", Total: 300, Price: "210.50"},
		{Symbol: "WMT", Total: 220, Price: "165.20"},
	}
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
