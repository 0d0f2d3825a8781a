package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "*/15 9-16 * * 1-5", cfg.Watcher.Schedule)
	assert.Equal(t, "Asia/Kolkata", cfg.Watcher.TimeZone)
	assert.Equal(t, 6*time.Hour, cfg.Watcher.NotifyCooldown)
	assert.Equal(t, StoreMemory, cfg.Watcher.Store)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.NotEmpty(t, cfg.Watcher.Tickers)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
watcher:
  schedule: "0 * * * *"
  time_zone: UTC
  notify_cooldown: 30m
  store: redis
  tickers: [TCS.NS]
telegram:
  bot_token: token
  chat_id: 42
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0 * * * *", cfg.Watcher.Schedule)
	assert.Equal(t, 30*time.Minute, cfg.Watcher.NotifyCooldown)
	assert.Equal(t, StoreRedis, cfg.Watcher.Store)
	assert.Equal(t, []string{"TCS.NS"}, cfg.Watcher.Tickers)
	assert.Equal(t, int64(42), cfg.Telegram.ChatID)
}

func TestWatcher_Validate(t *testing.T) {
	valid := Watcher{Schedule: "*/5 * * * *", TimeZone: "UTC", NotifyCooldown: time.Hour, Store: StoreMemory}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(w *Watcher)
	}{
		{name: "bad schedule", mutate: func(w *Watcher) { w.Schedule = "every minute" }},
		{name: "bad time zone", mutate: func(w *Watcher) { w.TimeZone = "Mars/Olympus" }},
		{name: "zero cooldown", mutate: func(w *Watcher) { w.NotifyCooldown = 0 }},
		{name: "unknown store", mutate: func(w *Watcher) { w.Store = "sqlite" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := valid
			tt.mutate(&w)
			assert.Error(t, w.Validate())
		})
	}
}
