package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "LIEN"

var (
	ErrConfigFileNotFound = errors.New("config: file not found")
	ErrConfigParseError   = errors.New("config: parse error")
	ErrConfigInvalid      = errors.New("config: invalid configuration")
)

// envKeys are bound explicitly so that env-only deployments reach nested
// keys viper has not otherwise seen.
var envKeys = []string{
	"server.host", "server.port", "server.read_timeout", "server.write_timeout",
	"server.shutdown_timeout", "server.max_body_size", "server.request_timeout",
	"server.allowed_origins", "server.rate_limit.enabled", "server.rate_limit.requests_per_second",
	"server.rate_limit.burst",
	"log.level", "log.format",
	"render.cache_ttl", "render.defaults.font_size", "render.defaults.line_spacing",
	"render.defaults.include_letterhead", "render.defaults.include_footer",
	"minio.enabled", "minio.endpoint", "minio.access_key_id", "minio.secret_access_key",
	"minio.use_ssl", "minio.region", "minio.buckets.notices", "minio.buckets.exports",
	"kafka.enabled", "kafka.producer.brokers", "kafka.consumer.brokers", "kafka.consumer.group_id",
	"kafka.auto_create_topics",
	"redis.enabled", "redis.mode", "redis.addr", "redis.password", "redis.db", "redis.key_prefix",
	"database.enabled", "database.host", "database.port", "database.database",
	"database.username", "database.password", "database.ssl_mode", "database.invoice_table",
	"metrics.enabled", "metrics.path", "metrics.namespace",
	"worker.source", "worker.batch_parallel", "worker.metrics_port",
}

// newViper builds a pre-configured Viper instance: YAML file type, LIEN_
// env prefix, automatic env binding, and a key replacer that maps "." to
// "_" so that "database.host" resolves to LIEN_DATABASE_HOST.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}

	// Booleans whose zero value is not the default.
	v.SetDefault("render.defaults.include_letterhead", true)
	v.SetDefault("render.defaults.include_footer", true)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.enable_go_metrics", true)
	v.SetDefault("metrics.enable_process_metrics", true)
	return v
}

// Load reads the YAML file at configPath, merges any LIEN_* environment
// variable overrides, applies defaults for unset fields, and validates the
// result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
			return nil, fmt.Errorf("%w: %q", ErrConfigFileNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %q: %v", ErrConfigParseError, configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from LIEN_* environment variables,
// with no config file required.
//
//	LIEN_<SECTION>_<FIELD>   e.g.  LIEN_DATABASE_HOST, LIEN_REDIS_ADDR
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// LoadOrEnv loads configPath when given and from the environment otherwise.
func LoadOrEnv(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	return Load(configPath)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParseError, err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	return cfg, nil
}

// Watch invokes onChange with the newly parsed Config whenever configPath
// changes on disk. A change that fails to parse or validate is passed to
// onError, when given, and onChange is skipped.
func Watch(configPath string, onChange func(*Config), onError func(error)) {
	v := newViper()
	v.SetConfigFile(configPath)
	_ = v.ReadInConfig()

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

// MustLoad is Load that panics on any error. Use only in main().
func MustLoad(configPath string) *Config {
	cfg, err := LoadOrEnv(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
