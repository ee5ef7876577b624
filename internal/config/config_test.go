package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LienPilot/internal/config"
	"github.com/turtacn/LienPilot/internal/domain/lien"
	"github.com/turtacn/LienPilot/internal/domain/noi"
)

// validConfig returns a Config that passes Validate() with every optional
// backend disabled.
func validConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_InvalidServerPort(t *testing.T) {
	t.Parallel()
	for _, p := range []int{-1, 65536, 100000} {
		p := p
		t.Run("", func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			cfg.Server.Port = p
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "server.port")
		})
	}
}

func TestConfig_Validate_Log(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Log.Level = "verbose"
	assert.ErrorContains(t, cfg.Validate(), "log.level")

	cfg = validConfig()
	cfg.Log.Format = "text"
	assert.ErrorContains(t, cfg.Validate(), "log.format")
}

func TestConfig_Validate_RuleOverrides(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Rules.Overrides = map[string]lien.StateLienRule{"or": {LienFilingDays: 75, EnforcementDays: 120}}
	require.NoError(t, cfg.Validate())

	table, err := cfg.RuleTable()
	require.NoError(t, err)
	assert.True(t, table.Has("OR"))

	cfg.Rules.Overrides = map[string]lien.StateLienRule{"ca": {LienFilingDays: 0}}
	assert.ErrorContains(t, cfg.Validate(), "rules.overrides")
}

func TestConfig_Validate_Policy(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	spec := noi.DefaultPolicySpec()
	spec.ResponseDays = map[string]int{"ca": -1}
	cfg.Rules.Policy = &spec
	assert.ErrorContains(t, cfg.Validate(), "rules.policy")

	spec.ResponseDays = map[string]int{"ca": 20}
	policy, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, 20, policy.ResponseDays("CA"))
}

func TestConfig_Validate_RenderDefaults(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Render.Defaults.FontSize = 40
	assert.ErrorContains(t, cfg.Validate(), "render.defaults")
}

func TestConfig_Validate_EnabledBackends(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"minio same buckets", func(c *config.Config) {
			c.MinIO.Enabled = true
			c.MinIO.Buckets.Exports = c.MinIO.Buckets.Notices
		}, "must differ"},
		{"kafka no brokers", func(c *config.Config) {
			c.Kafka.Enabled = true
			c.Kafka.Producer.Brokers = nil
		}, "kafka.producer.brokers"},
		{"redis bad mode", func(c *config.Config) {
			c.Redis.Enabled = true
			c.Redis.Mode = "ring"
		}, "redis.mode"},
		{"redis sentinel", func(c *config.Config) {
			c.Redis.Enabled = true
			c.Redis.Mode = "sentinel"
		}, "master_name"},
		{"database user", func(c *config.Config) {
			c.Database.Enabled = true
			c.Database.Database = "billing"
		}, "database.username"},
		{"database name", func(c *config.Config) {
			c.Database.Enabled = true
			c.Database.Username = "reader"
		}, "database.database"},
		{"metrics path", func(c *config.Config) {
			c.Metrics.Enabled = true
			c.Metrics.Path = "metrics"
		}, "metrics.path"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tc.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tc.want)
		})
	}
}

func TestConfig_Validate_DisabledBackendsIgnored(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Redis.Mode = "ring"
	cfg.Database.Username = ""
	cfg.Kafka.Producer.Brokers = nil
	assert.NoError(t, cfg.Validate())
}

func TestServerConfig_Addr(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "127.0.0.1:8081", config.ServerConfig{Host: "127.0.0.1", Port: 8081}.Addr())
}

//Personal.AI order the ending
