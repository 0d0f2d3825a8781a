package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	dashboardrepo "golang-stock-dashboard/internal/dashboard/repository"
	"golang-stock-dashboard/internal/entity"
	"golang-stock-dashboard/internal/watcher/config"
	"golang-stock-dashboard/internal/watcher/repository"
	"golang-stock-dashboard/pkg/logger"
	"golang-stock-dashboard/pkg/telegram"

	"github.com/robfig/cron/v3"
)

// RunResult summarizes one watcher run.
type RunResult struct {
	Signals  int
	Changes  []telegram.SignalChange
	Messages int
}

// SignalWatcherService polls the dashboard on a cron schedule and notifies
// signal changes.
type SignalWatcherService struct {
	repo     dashboardrepo.MarketAPIRepository
	store    repository.NotificationStore
	notifier telegram.Notifier
	cfg      config.Watcher
	logger   *logger.Logger
	now      func() time.Time
}

// NewSignalWatcherService creates a new SignalWatcherService.
func NewSignalWatcherService(repo dashboardrepo.MarketAPIRepository, store repository.NotificationStore, notifier telegram.Notifier, cfg config.Watcher, log *logger.Logger) *SignalWatcherService {
	return &SignalWatcherService{
		repo:     repo,
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		logger:   log,
		now:      time.Now,
	}
}

// Start runs the watcher on its schedule until ctx is done. Runs that are
// still in progress when the next tick fires are skipped.
func (s *SignalWatcherService) Start(ctx context.Context) error {
	loc, err := time.LoadLocation(s.cfg.TimeZone)
	if err != nil {
		return fmt.Errorf("invalid watcher time zone %q: %w", s.cfg.TimeZone, err)
	}

	cl := cronLogger{log: s.logger}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(s.cfg.Schedule, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Error("Signal watcher run failed", logger.ErrorField(err))
		}
	}); err != nil {
		return fmt.Errorf("invalid watcher schedule %q: %w", s.cfg.Schedule, err)
	}

	c.Start()
	s.logger.Info("Signal watcher started",
		logger.StringField("schedule", s.cfg.Schedule),
		logger.StringField("time_zone", s.cfg.TimeZone),
		logger.Field("next_run", c.Entries()[0].Next))

	<-ctx.Done()
	s.logger.Info("Signal watcher stopping")
	<-c.Stop().Done()
	return nil
}

// RunOnce fetches the dashboard and notifies every signal whose action
// changed since its last notification. Changes are only marked as notified
// after every message was sent, so a failed send is retried on the next run.
func (s *SignalWatcherService) RunOnce(ctx context.Context) (*RunResult, error) {
	d, err := s.repo.GetDashboard(ctx, s.cfg.Tickers, s.cfg.NewsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dashboard: %w", err)
	}

	result := &RunResult{Signals: len(d.Signals)}
	for _, sig := range d.Signals {
		change, ok, err := s.detectChange(ctx, d, sig)
		if err != nil {
			s.logger.Warn("Failed to check notification state", logger.ErrorField(err), logger.StringField("ticker", sig.Ticker))
			continue
		}
		if ok {
			result.Changes = append(result.Changes, change)
		}
	}

	if len(result.Changes) == 0 {
		s.logger.Debug("No signal changes", logger.IntField("signals", result.Signals))
		return result, nil
	}

	for _, msg := range telegram.FormatSignalDigest(result.Changes, s.now()) {
		if err := s.notifier.SendMessage(msg); err != nil {
			return result, fmt.Errorf("failed to send signal digest: %w", err)
		}
		result.Messages++
	}

	for _, c := range result.Changes {
		if err := s.store.MarkNotified(ctx, c.Ticker, c.Action); err != nil {
			s.logger.Error("Failed to mark signal notified", logger.ErrorField(err), logger.StringField("ticker", c.Ticker))
		}
	}

	s.logger.Info("Signal changes notified",
		logger.IntField("signals", result.Signals),
		logger.IntField("changes", len(result.Changes)),
		logger.IntField("messages", result.Messages))
	return result, nil
}

func (s *SignalWatcherService) detectChange(ctx context.Context, d *entity.DashboardResponse, sig entity.Signal) (telegram.SignalChange, bool, error) {
	ticker := strings.TrimSpace(sig.Ticker)
	if ticker == "" {
		return telegram.SignalChange{}, false, nil
	}
	action := sig.Action()

	previous, err := s.store.LastNotified(ctx, ticker)
	if err != nil {
		return telegram.SignalChange{}, false, err
	}
	notify, err := s.store.ShouldNotify(ctx, ticker, action)
	if err != nil || !notify {
		return telegram.SignalChange{}, false, err
	}

	change := telegram.SignalChange{
		Ticker:   ticker,
		Action:   action,
		Previous: previous,
		Label:    sig.Signal,
		Reasons:  append(append([]string{}, sig.Signals...), sig.Reasoning...),
	}
	for _, stock := range d.Stocks {
		if stock.Ticker == ticker {
			change.Price = stock.Price
			change.Change1D = stock.Change1D
			change.HasQuote = true
			break
		}
	}
	return change, true, nil
}

// cronLogger routes cron's logs through zap.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
