package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LienPilot/pkg/errors"
)

func TestMutex_LockUnlock(t *testing.T) {
	client, mr := newTestClient(t)
	locker := NewLocker(client, nil)
	ctx := context.Background()

	m := locker.NewMutex("export:2025-03-01", WithLockTTL(time.Second))
	assert.Equal(t, "lienpilot:lock:export:2025-03-01", m.Key())

	require.NoError(t, m.Lock(ctx))
	assert.True(t, mr.Exists(m.Key()))

	ttl, err := m.TTL(ctx)
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, m.Unlock(ctx))
	assert.False(t, mr.Exists(m.Key()))
}

func TestMutex_Contention(t *testing.T) {
	client, _ := newTestClient(t)
	locker := NewLocker(client, nil)
	ctx := context.Background()

	first := locker.NewMutex("render:INV-1")
	second := locker.NewMutex("render:INV-1", WithRetry(2, 5*time.Millisecond))

	require.NoError(t, first.Lock(ctx))
	err := second.Lock(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConflict))

	// Only the owner may release.
	assert.True(t, errors.IsCode(second.Unlock(ctx), errors.ErrCodeConflict))
	require.NoError(t, first.Unlock(ctx))

	ok, err := second.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMutex_ExpiresAndExtends(t *testing.T) {
	client, mr := newTestClient(t)
	locker := NewLocker(client, nil)
	ctx := context.Background()

	m := locker.NewMutex("x", WithLockTTL(time.Second))
	require.NoError(t, m.Lock(ctx))

	ok, err := m.Extend(ctx, 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	mr.FastForward(5 * time.Second)
	assert.True(t, mr.Exists(m.Key()))

	mr.FastForward(10 * time.Second)
	assert.False(t, mr.Exists(m.Key()))
	ok, err = m.Extend(ctx, time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMutex_LockHonoursContext(t *testing.T) {
	client, _ := newTestClient(t)
	locker := NewLocker(client, nil)

	require.NoError(t, locker.NewMutex("busy").Lock(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := locker.NewMutex("busy", WithRetry(100, time.Second)).Lock(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMutex_ClosedClient(t *testing.T) {
	client, _ := newTestClient(t)
	m := NewLocker(client, nil).NewMutex("x")
	require.NoError(t, client.Close())

	_, err := m.TryLock(context.Background())
	assert.Equal(t, ErrClientClosed, err)
}

func TestLocker_Acquire(t *testing.T) {
	client, mr := newTestClient(t)
	locker := NewLocker(client, nil)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "export:2025-03-01")
	require.NoError(t, err)
	assert.True(t, mr.Exists("lienpilot:lock:export:2025-03-01"))

	_, err = locker.Acquire(ctx, "export:2025-03-01")
	assert.True(t, errors.IsCode(err, errors.ErrCodeConflict))

	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists("lienpilot:lock:export:2025-03-01"))
}

//Personal.AI order the ending
