package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/LienPilot/pkg/errors"
)

// windowScript increments the window counter and starts its expiry on the
// first hit. It returns the count and the remaining window in milliseconds.
var windowScript = redis.NewScript(`
	local n = redis.call("INCR", KEYS[1])
	if n == 1 then
		redis.call("PEXPIRE", KEYS[1], ARGV[1])
	end
	local ttl = redis.call("PTTL", KEYS[1])
	if ttl < 0 then
		redis.call("PEXPIRE", KEYS[1], ARGV[1])
		ttl = tonumber(ARGV[1])
	end
	return {n, ttl}
`)

// WindowLimiter is a fixed-window request counter shared by every API
// replica that points at the same Redis.
type WindowLimiter struct {
	client *Client
	limit  int
	window time.Duration
}

// NewWindowLimiter allows limit hits per key in each window.
func NewWindowLimiter(client *Client, limit int, window time.Duration) *WindowLimiter {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &WindowLimiter{client: client, limit: limit, window: window}
}

// Limit is the number of hits allowed per window.
func (l *WindowLimiter) Limit() int { return l.limit }

// Hit counts one request against key and reports whether it fits the
// window, how many hits remain and when the window resets.
func (l *WindowLimiter) Hit(ctx context.Context, key string) (bool, int, time.Time, error) {
	rdb, err := l.client.universal()
	if err != nil {
		return false, 0, time.Time{}, err
	}
	full := l.client.config.KeyPrefix + "ratelimit:" + key
	res, err := windowScript.Run(ctx, rdb, []string{full}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return false, 0, time.Time{}, errors.Wrap(err, errors.ErrCodeCacheError, "rate limit counter failed").WithDetail(key)
	}
	count, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond
	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= l.limit, remaining, time.Now().Add(ttl), nil
}

//Personal.AI order the ending
