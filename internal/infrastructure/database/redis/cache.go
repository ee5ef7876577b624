package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math/rand"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/LienPilot/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LienPilot/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/LienPilot/pkg/errors"
)

var (
	ErrCacheMiss           = errors.New(errors.ErrCodeNotFound, "cache miss")
	ErrSerializationFailed = errors.New(errors.ErrCodeSerialization, "cache serialization failed")
	ErrDocumentTooLarge    = errors.New(errors.ErrCodeValidation, "document exceeds cache size limit")
)

// Cache is a JSON value cache with prefixed keys and jittered TTLs.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	// GetOrSet loads and stores on miss. Concurrent misses for one key share
	// a single loader call.
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)
}

type CacheOption func(*redisCache)

func WithPrefix(prefix string) CacheOption {
	return func(c *redisCache) { c.prefix = prefix }
}

func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *redisCache) { c.defaultTTL = ttl }
}

// WithMetrics records hits and misses under the given cache label.
func WithMetrics(m *prometheus.AppMetrics, name string) CacheOption {
	return func(c *redisCache) { c.metrics, c.name = m, name }
}

type redisCache struct {
	client     *Client
	logger     logging.Logger
	prefix     string
	defaultTTL time.Duration
	metrics    *prometheus.AppMetrics
	name       string
	group      singleflight.Group
}

func NewRedisCache(client *Client, log logging.Logger, opts ...CacheOption) Cache {
	return newRedisCache(client, log, opts...)
}

func newRedisCache(client *Client, log logging.Logger, opts ...CacheOption) *redisCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &redisCache{
		client:     client,
		logger:     log.Named("cache"),
		prefix:     client.config.KeyPrefix,
		defaultTTL: 15 * time.Minute,
		name:       "json",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *redisCache) fullKey(key string) string { return c.prefix + key }

// jitterTTL spreads expiry by up to ±10% so batches written together do not
// expire together.
func (c *redisCache) jitterTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	spread := int64(ttl) / 10
	if spread == 0 {
		return ttl
	}
	return ttl + time.Duration(rand.Int63n(2*spread+1)-spread) //nolint:gosec
}

func (c *redisCache) getBytes(ctx context.Context, key string) ([]byte, error) {
	rdb, err := c.client.universal()
	if err != nil {
		return nil, err
	}
	data, err := rdb.Get(ctx, c.fullKey(key)).Bytes()
	if err == redis.Nil {
		prometheus.RecordCacheAccess(c.metrics, c.name, false)
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "cache get").WithDetail(key)
	}
	prometheus.RecordCacheAccess(c.metrics, c.name, true)
	return data, nil
}

func (c *redisCache) setBytes(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	rdb, err := c.client.universal()
	if err != nil {
		return err
	}
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	if err := rdb.Set(ctx, c.fullKey(key), data, c.jitterTTL(ttl)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache set").WithDetail(key)
	}
	return nil
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.getBytes(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "cache decode").WithDetail(key)
	}
	return nil
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return ErrSerializationFailed
	}
	return c.setBytes(ctx, key, data, ttl)
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	rdb, err := c.client.universal()
	if err != nil {
		return err
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.fullKey(k)
	}
	return rdb.Del(ctx, full...).Err()
}

func (c *redisCache) Exists(ctx context.Context, key string) (bool, error) {
	rdb, err := c.client.universal()
	if err != nil {
		return false, err
	}
	n, err := rdb.Exists(ctx, c.fullKey(key)).Result()
	return n > 0, err
}

func (c *redisCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error {
	err := c.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if err != ErrCacheMiss {
		// Treat a broken cache as a miss rather than failing the caller.
		c.logger.Warn("Cache read failed, loading directly", logging.String("key", key), logging.Err(err))
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		val, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		data, mErr := json.Marshal(val)
		if mErr != nil {
			return nil, ErrSerializationFailed
		}
		if setErr := c.setBytes(ctx, key, data, ttl); setErr != nil {
			c.logger.Warn("Failed to set cache in GetOrSet", logging.String("key", key), logging.Err(setErr))
		}
		return data, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(v.([]byte), dest)
}

func (c *redisCache) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	rdb, err := c.client.universal()
	if err != nil {
		return 0, err
	}
	var deleted int64
	var cursor uint64
	match := c.fullKey(prefix) + "*"
	for {
		keys, next, err := rdb.Scan(ctx, cursor, match, 100).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			n, err := rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, err
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Rendered document cache
// ─────────────────────────────────────────────────────────────────────────────

// DocumentCache holds rendered notices keyed by a digest of their inputs.
// Values larger than the configured limit are refused.
type DocumentCache struct {
	cache   *redisCache
	ttl     time.Duration
	maxSize int
}

func NewDocumentCache(client *Client, log logging.Logger, m *prometheus.AppMetrics) *DocumentCache {
	cfg := client.Config()
	return &DocumentCache{
		cache:   newRedisCache(client, log, WithPrefix(cfg.KeyPrefix+"doc:"), WithDefaultTTL(cfg.DocumentTTL), WithMetrics(m, "document")),
		ttl:     cfg.DocumentTTL,
		maxSize: cfg.MaxDocumentSize,
	}
}

// Get returns ErrCacheMiss when key is absent.
func (d *DocumentCache) Get(ctx context.Context, key string, dest interface{}) error {
	return d.cache.Get(ctx, key, dest)
}

// Set stores value for ttl, or the configured document TTL when ttl is 0.
func (d *DocumentCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if value == nil {
		return errors.New(errors.ErrCodeBadRequest, "nil document")
	}
	data, err := json.Marshal(value)
	if err != nil {
		return ErrSerializationFailed
	}
	if d.maxSize > 0 && len(data) > d.maxSize {
		return ErrDocumentTooLarge
	}
	if ttl == 0 {
		ttl = d.ttl
	}
	return d.cache.setBytes(ctx, key, data, ttl)
}

func (d *DocumentCache) Delete(ctx context.Context, key string) error {
	return d.cache.Delete(ctx, key)
}

// ContentKey digests parts into a stable cache key. Parts are joined with a
// separator that cannot appear in rendered text.
func ContentKey(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}

//Personal.AI order the ending
