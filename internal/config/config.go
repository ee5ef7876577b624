// Package config defines the configuration structures of LienPilot. The
// infrastructure sections reuse the config types of the packages they
// configure; only validation lives here besides plain data.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/LienPilot/internal/application/document"
	"github.com/turtacn/LienPilot/internal/domain/lien"
	"github.com/turtacn/LienPilot/internal/domain/noi"
	"github.com/turtacn/LienPilot/internal/infrastructure/database/postgres"
	"github.com/turtacn/LienPilot/internal/infrastructure/database/redis"
	"github.com/turtacn/LienPilot/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/LienPilot/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LienPilot/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/LienPilot/internal/infrastructure/storage/minio"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size" yaml:"max_body_size"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`

	// AllowedOrigins enables CORS for the listed origins.
	AllowedOrigins []string        `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// RateLimitConfig throttles API clients by address. With redis enabled the
// quota is shared by all replicas as RequestsPerSecond*60 hits per minute;
// otherwise each replica keeps its own token buckets.
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled" yaml:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `mapstructure:"burst" yaml:"burst"`
}

// Addr is host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RulesConfig adjusts the built-in statute tables.
type RulesConfig struct {
	// Overrides replace or extend state rules; the key DEFAULT replaces the
	// fallback rule.
	Overrides map[string]lien.StateLienRule `mapstructure:"overrides" yaml:"overrides"`
	// Policy replaces the built-in NOI policy when set.
	Policy *noi.PolicySpec `mapstructure:"policy" yaml:"policy"`
}

// RenderConfig holds document rendering defaults.
type RenderConfig struct {
	Defaults document.Options `mapstructure:"defaults" yaml:"defaults"`
	// CacheTTL of rendered documents; zero uses the redis document TTL.
	CacheTTL time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
}

// KafkaConfig groups the producer and consumer settings.
type KafkaConfig struct {
	Enabled           bool                 `mapstructure:"enabled" yaml:"enabled"`
	Producer          kafka.ProducerConfig `mapstructure:"producer" yaml:"producer"`
	Consumer          kafka.ConsumerConfig `mapstructure:"consumer" yaml:"consumer"`
	AutoCreateTopics  bool                 `mapstructure:"auto_create_topics" yaml:"auto_create_topics"`
	NumPartitions     int                  `mapstructure:"num_partitions" yaml:"num_partitions"`
	ReplicationFactor int                  `mapstructure:"replication_factor" yaml:"replication_factor"`
}

// WorkerConfig holds background-worker parameters.
type WorkerConfig struct {
	// Source names this process in published event envelopes.
	Source        string `mapstructure:"source" yaml:"source"`
	BatchParallel int    `mapstructure:"batch_parallel" yaml:"batch_parallel"`
	MetricsPort   int    `mapstructure:"metrics_port" yaml:"metrics_port"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration. Every infrastructure section carries an
// Enabled switch; a disabled section leaves its port unwired.
type Config struct {
	Server   ServerConfig               `mapstructure:"server" yaml:"server"`
	Log      logging.LogConfig          `mapstructure:"log" yaml:"log"`
	Rules    RulesConfig                `mapstructure:"rules" yaml:"rules"`
	Render   RenderConfig               `mapstructure:"render" yaml:"render"`
	MinIO    minio.MinIOConfig          `mapstructure:"minio" yaml:"minio"`
	Kafka    KafkaConfig                `mapstructure:"kafka" yaml:"kafka"`
	Redis    redis.RedisConfig          `mapstructure:"redis" yaml:"redis"`
	Database postgres.PostgresConfig    `mapstructure:"database" yaml:"database"`
	Metrics  prometheus.CollectorConfig `mapstructure:"metrics" yaml:"metrics"`
	Worker   WorkerConfig               `mapstructure:"worker" yaml:"worker"`
}

// RuleTable builds the lien rule table with the configured overrides.
func (c *Config) RuleTable() (*lien.RuleTable, error) {
	base := lien.DefaultRuleTable()
	if len(c.Rules.Overrides) == 0 {
		return base, nil
	}
	return base.WithOverrides(c.Rules.Overrides)
}

// Policy builds the NOI policy.
func (c *Config) Policy() (*noi.Policy, error) {
	if c.Rules.Policy == nil {
		return noi.DefaultPolicy(), nil
	}
	return noi.NewPolicy(*c.Rules.Policy)
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	if c.Server.MaxBodySize < 0 {
		return fmt.Errorf("config: server.max_body_size must be ≥ 0, got %d", c.Server.MaxBodySize)
	}
	if c.Server.RateLimit.Enabled && (c.Server.RateLimit.RequestsPerSecond <= 0 || c.Server.RateLimit.Burst < 1) {
		return fmt.Errorf("config: server.rate_limit needs requests_per_second > 0 and burst ≥ 1")
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Rules
	if _, err := c.RuleTable(); err != nil {
		return fmt.Errorf("config: rules.overrides: %w", err)
	}
	if _, err := c.Policy(); err != nil {
		return fmt.Errorf("config: rules.policy: %w", err)
	}

	// Render
	if err := c.Render.Defaults.Validate(); err != nil {
		return fmt.Errorf("config: render.defaults: %w", err)
	}

	// MinIO
	if c.MinIO.Enabled {
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("config: minio.endpoint is required when minio is enabled")
		}
		if c.MinIO.Buckets.Notices == c.MinIO.Buckets.Exports {
			return fmt.Errorf("config: minio.buckets.notices and minio.buckets.exports must differ")
		}
	}

	// Kafka
	if c.Kafka.Enabled {
		if len(c.Kafka.Producer.Brokers) == 0 {
			return fmt.Errorf("config: kafka.producer.brokers must contain at least one broker address")
		}
		if err := kafka.ValidateProducerConfig(c.Kafka.Producer); err != nil {
			return fmt.Errorf("config: kafka.producer: %w", err)
		}
	}

	// Redis
	if c.Redis.Enabled {
		switch c.Redis.Mode {
		case "standalone":
			if c.Redis.Addr == "" {
				return fmt.Errorf("config: redis.addr is required")
			}
		case "sentinel":
			if c.Redis.MasterName == "" || len(c.Redis.SentinelAddrs) == 0 {
				return fmt.Errorf("config: redis sentinel mode needs master_name and sentinel_addrs")
			}
		case "cluster":
			if len(c.Redis.ClusterAddrs) == 0 {
				return fmt.Errorf("config: redis cluster mode needs cluster_addrs")
			}
		default:
			return fmt.Errorf("config: redis.mode %q is invalid; expected standalone|sentinel|cluster", c.Redis.Mode)
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
		}
	}

	// Database
	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("config: database.host is required")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
		}
		if c.Database.Username == "" {
			return fmt.Errorf("config: database.username is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("config: database.database is required")
		}
		if strings.TrimSpace(c.Database.InvoiceTable) == "" {
			return fmt.Errorf("config: database.invoice_table is required")
		}
	}

	// Metrics
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("config: metrics.path %q must start with /", c.Metrics.Path)
	}

	// Worker
	if c.Worker.BatchParallel < 1 {
		return fmt.Errorf("config: worker.batch_parallel must be ≥ 1, got %d", c.Worker.BatchParallel)
	}

	return nil
}

//Personal.AI order the ending
