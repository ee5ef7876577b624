package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LienPilot/internal/application/notice"
	"github.com/turtacn/LienPilot/internal/config"
	"github.com/turtacn/LienPilot/internal/domain/lien"
	"github.com/turtacn/LienPilot/internal/testutil"
)

func baseConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestConnect_NothingEnabled(t *testing.T) {
	log := testutil.NewMockLogger()
	infra, err := Connect(context.Background(), baseConfig(), log)
	require.NoError(t, err)
	defer infra.Close()

	assert.Nil(t, infra.Redis)
	assert.Nil(t, infra.Postgres)
	assert.Nil(t, infra.MinIO)
	assert.Nil(t, infra.Producer)
	assert.Empty(t, infra.HealthCheckers())
	assert.True(t, log.HasMessage("info", "infrastructure initialized"))
}

func TestConnect_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Mode = "standalone"
	cfg.Redis.Addr = mr.Addr()

	infra, err := Connect(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer infra.Close()
	require.NotNil(t, infra.Redis)

	d, err := infra.ServiceDeps(cfg, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, d.Cache)
	assert.NotNil(t, d.Locker)
	assert.Nil(t, d.Notices)
	assert.Nil(t, d.Exports)
	assert.Nil(t, d.Events)
	assert.Nil(t, d.Invoices)

	checks := infra.HealthCheckers()
	require.Len(t, checks, 1)
	assert.Equal(t, "redis", checks[0].Name())
	assert.NoError(t, checks[0].Check(context.Background()))

	mr.Close()
	assert.Error(t, checks[0].Check(context.Background()))
}

func TestConnect_RedisUnreachable(t *testing.T) {
	cfg := baseConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Mode = "standalone"
	cfg.Redis.Addr = "127.0.0.1:1"
	cfg.Redis.DialTimeout = 200 * time.Millisecond

	infra, err := Connect(context.Background(), cfg, nil)
	assert.Error(t, err)
	assert.Nil(t, infra)
	assert.Contains(t, err.Error(), "redis")
}

func TestServiceDeps_NilInfrastructure(t *testing.T) {
	cfg := baseConfig()
	cfg.Rules.Overrides = map[string]lien.StateLienRule{"OR": {LienFilingDays: 75, EnforcementDays: 120}}
	cfg.Render.CacheTTL = time.Minute

	var infra *Infrastructure
	d, err := infra.ServiceDeps(cfg, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, d.Cache)
	assert.Nil(t, d.Locker)
	assert.Equal(t, time.Minute, d.CacheTTL)
	assert.Equal(t, config.DefaultWorkerSource, d.Source)
	assert.Equal(t, config.DefaultBatchParallel, d.BatchParallel)
	assert.Equal(t, 75, d.Rules.Rule("OR").LienFilingDays)

	svc := notice.NewService(d)
	lc, err := svc.Deadline(context.Background(), &notice.DeadlineRequest{
		State:        "or",
		LastWorkDate: "2025-01-01",
		AsOf:         "2025-01-01",
	})
	require.NoError(t, err)
	assert.Equal(t, 75, lc.DaysUntilFilingDeadline)

	infra.Close()
	assert.Nil(t, infra.HealthCheckers())
}

func TestServiceDeps_InvalidOverride(t *testing.T) {
	cfg := baseConfig()
	cfg.Rules.Overrides = map[string]lien.StateLienRule{"CA": {LienFilingDays: 0}}

	_, err := (*Infrastructure)(nil).ServiceDeps(cfg, nil, nil)
	assert.Error(t, err)
}

//Personal.AI order the ending
