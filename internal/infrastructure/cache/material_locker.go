package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultLockTTL   = 10 * time.Second
	materialLockKey  = "buildstock:lock:material:"
	releaseTimeout   = 2 * time.Second
	lockRetryBackoff = 50 * time.Millisecond
)

// ErrLockBusy is returned when another instance holds the material lock for
// longer than the caller is willing to wait
var ErrLockBusy = errors.New("material lock is held by another issue")

// RedisMaterialLocker serializes issue commits for one material across
// server instances using a Redis lock
type RedisMaterialLocker struct {
	locker *redislock.Client
	ttl    time.Duration
	wait   time.Duration
	logger *zap.Logger
}

// MaterialLockerOption configures a RedisMaterialLocker
type MaterialLockerOption func(*RedisMaterialLocker)

// WithLockTTL sets how long a lock lives if its holder never releases it
func WithLockTTL(ttl time.Duration) MaterialLockerOption {
	return func(l *RedisMaterialLocker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithLockWait sets how long Lock keeps retrying a held lock
func WithLockWait(wait time.Duration) MaterialLockerOption {
	return func(l *RedisMaterialLocker) {
		l.wait = wait
	}
}

// WithLockLogger sets the logger
func WithLockLogger(logger *zap.Logger) MaterialLockerOption {
	return func(l *RedisMaterialLocker) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewRedisMaterialLocker creates a locker on top of a redis client
func NewRedisMaterialLocker(client redislock.RedisClient, opts ...MaterialLockerOption) *RedisMaterialLocker {
	l := &RedisMaterialLocker{
		locker: redislock.New(client),
		ttl:    defaultLockTTL,
		wait:   defaultLockTTL,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock obtains the lock for materialID, retrying with linear backoff until
// the wait elapses. The returned func releases the lock and never fails.
func (l *RedisMaterialLocker) Lock(ctx context.Context, materialID uuid.UUID) (func(), error) {
	key := MaterialLockKey(materialID)

	retries := int(l.wait / lockRetryBackoff)
	opts := &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(lockRetryBackoff), retries),
	}
	lock, err := l.locker.Obtain(ctx, key, l.ttl, opts)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: %s", ErrLockBusy, materialID)
	}
	if err != nil {
		return nil, fmt.Errorf("obtain material lock: %w", err)
	}

	return func() {
		// the request context may already be done
		releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.Warn("failed to release material lock",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}, nil
}

// MaterialLockKey returns the redis key guarding a material
func MaterialLockKey(materialID uuid.UUID) string {
	return materialLockKey + materialID.String()
}
