package redis

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LienPilot/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LienPilot/pkg/errors"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewClient(context.Background(), RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisConfig_ApplyDefaults(t *testing.T) {
	var cfg RedisConfig
	cfg.ApplyDefaults()
	assert.Equal(t, "standalone", cfg.Mode)
	assert.Equal(t, "localhost:6379", cfg.Addr)
	assert.Equal(t, "lienpilot:", cfg.KeyPrefix)
	assert.Equal(t, 24*time.Hour, cfg.DocumentTTL)
	assert.Equal(t, 30*time.Second, cfg.LockTTL)
	assert.Equal(t, 4<<20, cfg.MaxDocumentSize)

	cfg = RedisConfig{KeyPrefix: "x:", PoolSize: 3}
	cfg.ApplyDefaults()
	assert.Equal(t, "x:", cfg.KeyPrefix)
	assert.Equal(t, 3, cfg.PoolSize)
}

func TestNewClient_PingsServer(t *testing.T) {
	c, _ := newTestClient(t)
	assert.NoError(t, c.Ping(context.Background()))
	assert.NoError(t, c.HealthCheck(context.Background()))
	assert.Equal(t, "lienpilot:", c.Config().KeyPrefix)
}

func TestNewClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewClient(context.Background(), RedisConfig{Addr: addr, DialTimeout: 200 * time.Millisecond, MaxRetries: -1}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCacheError))
}

func TestNewClient_BadCAFile(t *testing.T) {
	_, err := NewClient(context.Background(), RedisConfig{TLSEnabled: true, TLSCAFile: filepath.Join(t.TempDir(), "missing.pem")}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))

	bad := filepath.Join(t.TempDir(), "bad.pem")
	require.NoError(t, os.WriteFile(bad, []byte("not a cert"), 0o600))
	_, err = NewClient(context.Background(), RedisConfig{TLSEnabled: true, TLSCAFile: bad}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid redis CA file")
}

func TestClient_HealthCheckDown(t *testing.T) {
	c, mr := newTestClient(t)
	mr.SetError("LOADING")
	err := c.HealthCheck(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewClientWithUniversal(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), RedisConfig{}, nil)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, ErrClientClosed, c.Ping(context.Background()))
}

//Personal.AI order the ending
