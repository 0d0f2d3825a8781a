package config

import (
	"golang-stock-dashboard/pkg/common"
	"golang-stock-dashboard/pkg/config"
)

// Dashboard holds the portfolio and panel defaults.
type Dashboard struct {
	Tickers       []string `mapstructure:"tickers"`
	NewsLimit     int      `mapstructure:"news_limit"`
	DefaultSymbol string   `mapstructure:"default_symbol"`
	DefaultAmount float64  `mapstructure:"default_amount"`
}

// Config holds the full configuration for the dashboard binary.
type Config struct {
	App       config.App    `mapstructure:"app"`
	Logger    config.Logger `mapstructure:"logger"`
	API       config.API    `mapstructure:"api"`
	Server    config.Server `mapstructure:"server"`
	Dashboard Dashboard     `mapstructure:"dashboard"`
}

var defaults = map[string]interface{}{
	"server.host":              "0.0.0.0",
	"server.port":              8080,
	"dashboard.tickers":        common.DefaultTickers,
	"dashboard.news_limit":     common.DefaultNewsLimit,
	"dashboard.default_amount": common.DefaultCurrencyInput,
}

// Load loads the dashboard configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg, defaults); err != nil {
		return nil, err
	}
	if len(cfg.Dashboard.Tickers) == 0 {
		cfg.Dashboard.Tickers = common.DefaultTickers
	}
	if cfg.Dashboard.NewsLimit <= 0 {
		cfg.Dashboard.NewsLimit = common.DefaultNewsLimit
	}
	return &cfg, nil
}
