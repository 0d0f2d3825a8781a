package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	dashboardrepo "golang-stock-dashboard/internal/dashboard/repository"
	"golang-stock-dashboard/internal/watcher/config"
	"golang-stock-dashboard/internal/watcher/repository"
	pkgconfig "golang-stock-dashboard/pkg/config"
	"golang-stock-dashboard/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (n *fakeNotifier) SendMessage(text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.messages = append(n.messages, text)
	return nil
}

func (n *fakeNotifier) sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

type backend struct {
	mu     sync.Mutex
	body   string
	status int
	hits   int
}

func (b *backend) set(body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.body = body
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hits++
	if b.status != 0 {
		w.WriteHeader(b.status)
		_, _ = w.Write([]byte(`{"detail":"backend down"}`))
		return
	}
	_, _ = w.Write([]byte(b.body))
}

const buyTCS = `{
	"stocks":[{"ticker":"TCS.NS","price":3890.5,"change_1d":1.2}],
	"signals":[{"ticker":"TCS.NS","signal":"STRONG_BUY","signals":["MACD crossover"]}]
}`

const sellTCS = `{
	"stocks":[{"ticker":"TCS.NS","price":3700,"change_1d":-4.9}],
	"signals":[{"ticker":"TCS.NS","signal":"SELL","reasoning":["breakdown below EMA20"]}]
}`

func newWatcher(t *testing.T, b *backend, notifier *fakeNotifier) *SignalWatcherService {
	t.Helper()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	repo := dashboardrepo.NewMarketAPIRepository(pkgconfig.API{BaseURL: srv.URL, Timeout: 5 * time.Second}, logger.NewNop())
	cfg := config.Watcher{
		Schedule:       "* * * * *",
		TimeZone:       "UTC",
		NotifyCooldown: time.Hour,
		Store:          config.StoreMemory,
		Tickers:        []string{"TCS.NS"},
		NewsLimit:      5,
	}
	svc := NewSignalWatcherService(repo, repository.NewMemoryNotificationStore(cfg.NotifyCooldown), notifier, cfg, logger.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestRunOnce_NotifiesOnlyChanges(t *testing.T) {
	b := &backend{body: buyTCS}
	notifier := &fakeNotifier{}
	svc := newWatcher(t, b, notifier)
	ctx := context.Background()

	res, err := svc.RunOnce(ctx)
	require.NoError(t, err)
	require.Len(t, res.Changes, 1)
	assert.Equal(t, "BUY", res.Changes[0].Action)
	assert.Equal(t, "", res.Changes[0].Previous)
	assert.True(t, res.Changes[0].HasQuote)
	require.Len(t, notifier.sent(), 1)
	assert.Contains(t, notifier.sent()[0], "*TCS.NS* `BUY`")
	assert.Contains(t, notifier.sent()[0], "MACD crossover")

	res, err = svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Changes)
	assert.Len(t, notifier.sent(), 1)

	b.set(sellTCS)
	res, err = svc.RunOnce(ctx)
	require.NoError(t, err)
	require.Len(t, res.Changes, 1)
	assert.Equal(t, "BUY", res.Changes[0].Previous)
	require.Len(t, notifier.sent(), 2)
	assert.Contains(t, notifier.sent()[1], "`SELL` (was BUY)")
	assert.Contains(t, notifier.sent()[1], "breakdown below EMA20")
}

func TestRunOnce_FailedSendIsRetried(t *testing.T) {
	b := &backend{body: buyTCS}
	notifier := &fakeNotifier{err: errors.New("telegram unavailable")}
	svc := newWatcher(t, b, notifier)
	ctx := context.Background()

	_, err := svc.RunOnce(ctx)
	require.Error(t, err)

	notifier.mu.Lock()
	notifier.err = nil
	notifier.mu.Unlock()

	res, err := svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Len(t, res.Changes, 1)
	assert.Len(t, notifier.sent(), 1)
}

func TestRunOnce_BackendError(t *testing.T) {
	b := &backend{status: http.StatusBadGateway}
	svc := newWatcher(t, b, &fakeNotifier{})

	_, err := svc.RunOnce(context.Background())

	require.Error(t, err)
	assert.Equal(t, "backend down", dashboardrepo.ErrorMessage(err))
}

func TestStart_StopsWithContext(t *testing.T) {
	b := &backend{body: buyTCS}
	svc := newWatcher(t, b, &fakeNotifier{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestStart_InvalidSchedule(t *testing.T) {
	svc := newWatcher(t, &backend{body: buyTCS}, &fakeNotifier{})
	svc.cfg.Schedule = "not a schedule"

	err := svc.Start(context.Background())

	assert.Error(t, err)
}
