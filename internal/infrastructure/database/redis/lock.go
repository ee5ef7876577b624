package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/turtacn/LienPilot/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LienPilot/pkg/errors"
)

var (
	ErrLockNotAcquired = errors.New(errors.ErrCodeConflict, "lock held by another worker")
	ErrLockNotHeld     = errors.New(errors.ErrCodeConflict, "lock not held by this owner")
)

var unlockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

var extendScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("PEXPIRE", KEYS[1], ARGV[2])
	else
		return 0
	end
`)

type LockOption func(*lockConfig)

func WithLockTTL(ttl time.Duration) LockOption {
	return func(c *lockConfig) { c.ttl = ttl }
}

func WithRetry(count int, delay time.Duration) LockOption {
	return func(c *lockConfig) { c.retryCount, c.retryDelay = count, delay }
}

type lockConfig struct {
	ttl        time.Duration
	retryCount int
	retryDelay time.Duration
}

// Locker hands out single-owner mutexes, e.g. one per export day or per
// invoice render, so two workers do not produce the same artifact at once.
type Locker struct {
	client *Client
	logger logging.Logger
}

func NewLocker(client *Client, log logging.Logger) *Locker {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Locker{client: client, logger: log.Named("lock")}
}

// Mutex is a SET NX lock whose value identifies the owner.
type Mutex struct {
	client *Client
	logger logging.Logger
	key    string
	value  string
	config lockConfig
}

func (l *Locker) NewMutex(name string, opts ...LockOption) *Mutex {
	cfg := lockConfig{ttl: l.client.config.LockTTL, retryDelay: 100 * time.Millisecond}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Mutex{
		client: l.client,
		logger: l.logger,
		key:    l.client.config.KeyPrefix + "lock:" + name,
		value:  uuid.NewString(),
		config: cfg,
	}
}

// Acquire locks name and returns the matching release func.
func (l *Locker) Acquire(ctx context.Context, name string) (func(context.Context) error, error) {
	m := l.NewMutex(name)
	if err := m.Lock(ctx); err != nil {
		return nil, err
	}
	return m.Unlock, nil
}

func (m *Mutex) Key() string { return m.key }

// TryLock makes one attempt.
func (m *Mutex) TryLock(ctx context.Context) (bool, error) {
	rdb, err := m.client.universal()
	if err != nil {
		return false, err
	}
	ok, err := rdb.SetNX(ctx, m.key, m.value, m.config.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to set lock").WithDetail(m.key)
	}
	return ok, nil
}

// Lock retries TryLock up to the configured count and returns
// ErrLockNotAcquired when every attempt finds the lock held.
func (m *Mutex) Lock(ctx context.Context) error {
	for i := 0; ; i++ {
		ok, err := m.TryLock(ctx)
		if err != nil {
			return err
		}
		if ok {
			m.logger.Debug("lock acquired", logging.String("key", m.key))
			return nil
		}
		if i >= m.config.retryCount {
			return ErrLockNotAcquired.WithDetail(m.key)
		}
		t := time.NewTimer(m.config.retryDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (m *Mutex) Unlock(ctx context.Context) error {
	rdb, err := m.client.universal()
	if err != nil {
		return err
	}
	n, err := unlockScript.Run(ctx, rdb, []string{m.key}, m.value).Int64()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to release lock").WithDetail(m.key)
	}
	if n == 0 {
		return ErrLockNotHeld.WithDetail(m.key)
	}
	return nil
}

// Extend resets the TTL if this owner still holds the lock.
func (m *Mutex) Extend(ctx context.Context, ttl time.Duration) (bool, error) {
	rdb, err := m.client.universal()
	if err != nil {
		return false, err
	}
	n, err := extendScript.Run(ctx, rdb, []string{m.key}, m.value, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to extend lock").WithDetail(m.key)
	}
	return n == 1, nil
}

func (m *Mutex) TTL(ctx context.Context) (time.Duration, error) {
	rdb, err := m.client.universal()
	if err != nil {
		return 0, err
	}
	return rdb.PTTL(ctx, m.key).Result()
}

//Personal.AI order the ending
