package config

import (
	"time"

	"github.com/turtacn/LienPilot/internal/application/document"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerHost     = "0.0.0.0"
	DefaultServerPort     = 8080
	DefaultMaxBodySize    = 1 << 20
	DefaultReadTimeout    = 15 * time.Second
	DefaultWriteTimeout   = 30 * time.Second
	DefaultIdleTimeout    = 60 * time.Second
	DefaultShutdown       = 15 * time.Second
	DefaultRequestTimeout = 20 * time.Second
	DefaultRateLimitRPS   = 10
	DefaultRateLimitBurst = 20

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultKafkaBroker  = "localhost:9092"
	DefaultKafkaGroupID = "lienpilot-worker"

	DefaultMinIOEndpoint = "localhost:9000"

	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "lienpilot"

	DefaultWorkerSource  = "lienpilot"
	DefaultBatchParallel = 8
	DefaultWorkerMetrics = 9091
)

// ApplyDefaults fills every zero-value field in cfg with the default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins. Booleans cannot be
// told apart from an explicit false here; the loader seeds those through
// viper defaults instead.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultMaxBodySize
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdown
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.RateLimit.RequestsPerSecond == 0 {
		cfg.Server.RateLimit.RequestsPerSecond = DefaultRateLimitRPS
	}
	if cfg.Server.RateLimit.Burst == 0 {
		cfg.Server.RateLimit.Burst = DefaultRateLimitBurst
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Render ────────────────────────────────────────────────────────────────
	d := document.DefaultOptions()
	if cfg.Render.Defaults.FontSize == 0 {
		cfg.Render.Defaults.FontSize = d.FontSize
	}
	if cfg.Render.Defaults.LineSpacing == 0 {
		cfg.Render.Defaults.LineSpacing = d.LineSpacing
	}
	if cfg.Render.Defaults.FooterText == "" {
		cfg.Render.Defaults.FooterText = d.FooterText
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	cfg.MinIO.ApplyDefaults()

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Producer.Brokers) == 0 {
		cfg.Kafka.Producer.Brokers = []string{DefaultKafkaBroker}
	}
	if len(cfg.Kafka.Consumer.Brokers) == 0 {
		cfg.Kafka.Consumer.Brokers = cfg.Kafka.Producer.Brokers
	}
	if cfg.Kafka.Consumer.GroupID == "" {
		cfg.Kafka.Consumer.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.Consumer.AutoOffsetReset == "" {
		cfg.Kafka.Consumer.AutoOffsetReset = "earliest"
	}
	if cfg.Kafka.NumPartitions == 0 {
		cfg.Kafka.NumPartitions = 3
	}
	if cfg.Kafka.ReplicationFactor == 0 {
		cfg.Kafka.ReplicationFactor = 1
	}

	// ── Redis / Database ──────────────────────────────────────────────────────
	cfg.Redis.ApplyDefaults()
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	cfg.Database.ApplyDefaults()

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	// ── Worker ────────────────────────────────────────────────────────────────
	if cfg.Worker.Source == "" {
		cfg.Worker.Source = DefaultWorkerSource
	}
	if cfg.Worker.BatchParallel == 0 {
		cfg.Worker.BatchParallel = DefaultBatchParallel
	}
	if cfg.Worker.MetricsPort == 0 {
		cfg.Worker.MetricsPort = DefaultWorkerMetrics
	}
}

//Personal.AI order the ending
