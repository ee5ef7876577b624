package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowLimiter_Hit(t *testing.T) {
	client, mr := newTestClient(t)
	limiter := NewWindowLimiter(client, 2, time.Minute)
	ctx := context.Background()

	ok, remaining, reset, err := limiter.Hit(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)
	assert.True(t, reset.After(time.Now()))
	assert.True(t, mr.Exists("lienpilot:ratelimit:10.0.0.1"))

	ok, remaining, _, err = limiter.Hit(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, remaining)

	ok, remaining, _, err = limiter.Hit(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, remaining)

	// Other keys have their own window.
	ok, _, _, err = limiter.Hit(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, remaining, _, err = limiter.Hit(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)
}

func TestWindowLimiter_Defaults(t *testing.T) {
	client, _ := newTestClient(t)
	limiter := NewWindowLimiter(client, 0, 0)
	assert.Equal(t, 1, limiter.Limit())
	assert.Equal(t, time.Second, limiter.window)
}

func TestWindowLimiter_ClosedClient(t *testing.T) {
	client, _ := newTestClient(t)
	limiter := NewWindowLimiter(client, 5, time.Second)
	require.NoError(t, client.Close())

	_, _, _, err := limiter.Hit(context.Background(), "k")
	assert.ErrorIs(t, err, ErrClientClosed)
}

//Personal.AI order the ending
