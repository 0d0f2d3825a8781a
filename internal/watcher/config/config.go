package config

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"golang-stock-dashboard/pkg/common"
	"golang-stock-dashboard/pkg/config"

	"github.com/robfig/cron/v3"
)

// Store kinds for the notification dedupe store.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Watcher holds the signal watcher configuration.
type Watcher struct {
	Schedule       string        `mapstructure:"schedule"`
	TimeZone       string        `mapstructure:"time_zone"`
	NotifyCooldown time.Duration `mapstructure:"notify_cooldown"`
	Store          string        `mapstructure:"store"`
	Tickers        []string      `mapstructure:"tickers"`
	NewsLimit      int           `mapstructure:"news_limit"`
}

// Config holds the full configuration for the watch service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	API      config.API      `mapstructure:"api"`
	Redis    config.Redis    `mapstructure:"redis"`
	Telegram config.Telegram `mapstructure:"telegram"`
	Watcher  Watcher         `mapstructure:"watcher"`
}

var defaults = map[string]interface{}{
	"watcher.schedule":        "*/15 9-16 * * 1-5",
	"watcher.time_zone":       "Asia/Kolkata",
	"watcher.notify_cooldown": 6 * time.Hour,
	"watcher.store":           StoreMemory,
	"watcher.tickers":         common.DefaultTickers,
	"watcher.news_limit":      common.DefaultNewsLimit,
	"redis.host":              "localhost",
	"redis.port":              6379,
	"redis.pool_size":         10,
}

// Load loads the watch service configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg, defaults); err != nil {
		return nil, err
	}
	if len(cfg.Watcher.Tickers) == 0 {
		cfg.Watcher.Tickers = common.DefaultTickers
	}
	if err := cfg.Watcher.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the schedule, time zone and store kind.
func (w Watcher) Validate() error {
	if _, err := cron.ParseStandard(w.Schedule); err != nil {
		return fmt.Errorf("invalid watcher schedule %q: %w", w.Schedule, err)
	}
	if _, err := time.LoadLocation(w.TimeZone); err != nil {
		return fmt.Errorf("invalid watcher time zone %q: %w", w.TimeZone, err)
	}
	if w.NotifyCooldown <= 0 {
		return fmt.Errorf("watcher notify cooldown must be positive, got %s", w.NotifyCooldown)
	}
	switch w.Store {
	case StoreMemory, StoreRedis:
		return nil
	default:
		return fmt.Errorf("unknown watcher store %q", w.Store)
	}
}
