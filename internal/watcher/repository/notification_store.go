package repository

import (
	"context"
	"errors"
	"time"

	"golang-stock-dashboard/pkg/common"
	"golang-stock-dashboard/pkg/logger"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// NotificationStore remembers the last action notified per ticker. An entry
// expires after the cooldown, after which the same action is notified again.
type NotificationStore interface {
	// LastNotified returns the last notified action for ticker, "" if none.
	LastNotified(ctx context.Context, ticker string) (string, error)
	// ShouldNotify reports whether action differs from the last notified one.
	ShouldNotify(ctx context.Context, ticker, action string) (bool, error)
	MarkNotified(ctx context.Context, ticker, action string) error
}

func notificationKey(ticker string) string {
	return common.NotificationKeyPrefix + ticker
}

type memoryNotificationStore struct {
	cache *cache.Cache
}

// NewMemoryNotificationStore creates a process-local NotificationStore.
func NewMemoryNotificationStore(cooldown time.Duration) NotificationStore {
	return &memoryNotificationStore{cache: cache.New(cooldown, 2*cooldown)}
}

func (s *memoryNotificationStore) LastNotified(_ context.Context, ticker string) (string, error) {
	v, ok := s.cache.Get(notificationKey(ticker))
	if !ok {
		return "", nil
	}
	action, _ := v.(string)
	return action, nil
}

func (s *memoryNotificationStore) ShouldNotify(ctx context.Context, ticker, action string) (bool, error) {
	last, err := s.LastNotified(ctx, ticker)
	if err != nil {
		return false, err
	}
	return last != action, nil
}

func (s *memoryNotificationStore) MarkNotified(_ context.Context, ticker, action string) error {
	s.cache.SetDefault(notificationKey(ticker), action)
	return nil
}

type redisNotificationStore struct {
	client   *redis.Client
	cooldown time.Duration
	logger   *logger.Logger
}

// NewRedisNotificationStore creates a NotificationStore shared through Redis,
// so several watcher replicas do not notify the same change twice.
func NewRedisNotificationStore(client *redis.Client, cooldown time.Duration, log *logger.Logger) NotificationStore {
	return &redisNotificationStore{client: client, cooldown: cooldown, logger: log}
}

func (s *redisNotificationStore) LastNotified(ctx context.Context, ticker string) (string, error) {
	action, err := s.client.Get(ctx, notificationKey(ticker)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		s.logger.Error("Failed to read notification state", logger.ErrorField(err), logger.StringField("ticker", ticker))
		return "", err
	}
	return action, nil
}

func (s *redisNotificationStore) ShouldNotify(ctx context.Context, ticker, action string) (bool, error) {
	last, err := s.LastNotified(ctx, ticker)
	if err != nil {
		return false, err
	}
	if last == action {
		s.logger.Debug("Skip repeated signal notification", logger.StringField("ticker", ticker), logger.StringField("action", action))
		return false, nil
	}
	return true, nil
}

func (s *redisNotificationStore) MarkNotified(ctx context.Context, ticker, action string) error {
	return s.client.Set(ctx, notificationKey(ticker), action, s.cooldown).Err()
}
