// Package bootstrap connects the configured infrastructure and assembles the
// notice service shared by the API server, the worker and the CLI.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/turtacn/LienPilot/internal/application/document"
	"github.com/turtacn/LienPilot/internal/application/notice"
	"github.com/turtacn/LienPilot/internal/config"
	"github.com/turtacn/LienPilot/internal/infrastructure/database/postgres"
	"github.com/turtacn/LienPilot/internal/infrastructure/database/redis"
	"github.com/turtacn/LienPilot/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/LienPilot/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LienPilot/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/LienPilot/internal/infrastructure/storage/minio"
	"github.com/turtacn/LienPilot/internal/interfaces/http/handlers"
	"github.com/turtacn/LienPilot/pkg/errors"
)

// Infrastructure holds the clients of every enabled section. Disabled
// sections stay nil.
type Infrastructure struct {
	Redis    *redis.Client
	Postgres *postgres.Connection
	MinIO    *minio.MinIOClient
	Objects  *minio.ObjectRepository
	Producer *kafka.Producer

	logger logging.Logger
}

// Connect dials every enabled section in turn. A failure closes what was
// already opened.
func Connect(ctx context.Context, cfg *config.Config, log logging.Logger) (*Infrastructure, error) {
	infra := &Infrastructure{logger: logging.ForComponent(log, "bootstrap")}

	if cfg.Redis.Enabled {
		c, err := redis.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		infra.Redis = c
	}

	if cfg.Database.Enabled {
		conn, err := postgres.NewConnection(ctx, cfg.Database, log)
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("postgres: %w", err)
		}
		infra.Postgres = conn
	}

	if cfg.MinIO.Enabled {
		mcfg := cfg.MinIO
		c, err := minio.NewMinIOClient(ctx, &mcfg, log)
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("minio: %w", err)
		}
		infra.MinIO = c
		infra.Objects = minio.NewObjectRepository(c, log)
	}

	if cfg.Kafka.Enabled {
		p, err := kafka.NewProducer(cfg.Kafka.Producer, log)
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		infra.Producer = p
	}

	infra.logger.Info("infrastructure initialized",
		logging.Bool("redis", infra.Redis != nil),
		logging.Bool("postgres", infra.Postgres != nil),
		logging.Bool("minio", infra.MinIO != nil),
		logging.Bool("kafka", infra.Producer != nil))
	return infra, nil
}

// ServiceDeps builds the notice service dependencies from cfg, wiring a
// port only when its client is connected. A nil receiver yields the
// in-process service with no infrastructure.
func (i *Infrastructure) ServiceDeps(cfg *config.Config, m *prometheus.AppMetrics, log logging.Logger) (notice.Deps, error) {
	rules, err := cfg.RuleTable()
	if err != nil {
		return notice.Deps{}, fmt.Errorf("rules: %w", err)
	}
	policy, err := cfg.Policy()
	if err != nil {
		return notice.Deps{}, fmt.Errorf("policy: %w", err)
	}

	d := notice.Deps{
		Rules:         rules,
		Policy:        policy,
		Renderer:      document.NewRenderer(cfg.Render.Defaults),
		Metrics:       m,
		Logger:        log,
		Source:        cfg.Worker.Source,
		CacheTTL:      cfg.Render.CacheTTL,
		BatchParallel: cfg.Worker.BatchParallel,
	}
	if i == nil {
		return d, nil
	}

	// Interface fields are assigned only from live clients so that a
	// disabled section stays a nil interface.
	if i.Redis != nil {
		d.Cache = redis.NewDocumentCache(i.Redis, log, m)
		d.Locker = redis.NewLocker(i.Redis, log)
	}
	if i.Postgres != nil {
		d.Invoices = postgres.NewInvoiceSource(i.Postgres, m, log)
	}
	if i.Objects != nil {
		d.Notices = i.Objects.NoticeStore()
		d.Exports = i.Objects.ExportStore()
	}
	if i.Producer != nil {
		d.Events = i.Producer
	}
	return d, nil
}

// HealthCheckers returns one readiness check per connected client.
func (i *Infrastructure) HealthCheckers() []handlers.HealthChecker {
	if i == nil {
		return nil
	}
	var out []handlers.HealthChecker
	if i.Redis != nil {
		out = append(out, handlers.CheckFunc("redis", i.Redis.HealthCheck))
	}
	if i.Postgres != nil {
		out = append(out, handlers.CheckFunc("postgres", i.Postgres.HealthCheck))
	}
	if i.MinIO != nil {
		client := i.MinIO
		out = append(out, handlers.CheckFunc("minio", func(ctx context.Context) error {
			status, err := client.HealthCheck(ctx)
			if err != nil {
				return err
			}
			if !status.Healthy {
				return errors.New(errors.ErrCodeServiceUnavailable, status.Error)
			}
			return nil
		}))
	}
	return out
}

type namedCloser struct {
	name string
	fn   func() error
}

// Close releases every client in reverse dial order.
func (i *Infrastructure) Close() {
	if i == nil {
		return
	}
	var closers []namedCloser
	if i.Producer != nil {
		closers = append(closers, namedCloser{"kafka", i.Producer.Close})
	}
	if i.MinIO != nil {
		closers = append(closers, namedCloser{"minio", i.MinIO.Close})
	}
	if i.Postgres != nil {
		closers = append(closers, namedCloser{"postgres", i.Postgres.Close})
	}
	if i.Redis != nil {
		closers = append(closers, namedCloser{"redis", i.Redis.Close})
	}
	for _, c := range closers {
		if err := c.fn(); err != nil {
			i.logger.Warn("close failed", logging.String("component", c.name), logging.Err(err))
		}
	}
}

//Personal.AI order the ending
