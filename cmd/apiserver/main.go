// API server entry point for LienPilot.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/LienPilot/internal/application/notice"
	"github.com/turtacn/LienPilot/internal/bootstrap"
	"github.com/turtacn/LienPilot/internal/config"
	"github.com/turtacn/LienPilot/internal/infrastructure/database/redis"
	"github.com/turtacn/LienPilot/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LienPilot/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/LienPilot/internal/interfaces/cli"
	httpserver "github.com/turtacn/LienPilot/internal/interfaces/http"
	"github.com/turtacn/LienPilot/internal/interfaces/http/handlers"
	"github.com/turtacn/LienPilot/internal/interfaces/http/middleware"
)

const (
	defaultConfigPath = "configs/config.yaml"
	connectTimeout    = 30 * time.Second
	limiterCleanup    = 5 * time.Minute
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: "+defaultConfigPath+" when present, else LIEN_* environment)")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	if err := run(*configPath, *port); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, port int) error {
	if configPath == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			configPath = defaultConfigPath
		}
	}
	cfg, err := config.LoadOrEnv(configPath)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logging.Sync(logger) }()

	logger.Info("starting LienPilot API server",
		logging.String("version", cli.Version),
		logging.String("commit", cli.GitCommit),
		logging.String("addr", cfg.Server.Addr()),
	)

	var (
		collector prometheus.MetricsCollector
		metrics   *prometheus.AppMetrics
	)
	if cfg.Metrics.Enabled {
		collector, err = prometheus.NewMetricsCollector(cfg.Metrics, logger)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		metrics = prometheus.NewAppMetrics(collector)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	infra, err := bootstrap.Connect(ctx, cfg, logger)
	cancel()
	if err != nil {
		return err
	}
	defer infra.Close()

	deps, err := infra.ServiceDeps(cfg, metrics, logger)
	if err != nil {
		return err
	}
	svc := notice.NewService(deps)

	routerCfg := httpserver.RouterConfig{
		NoticeHandler:    handlers.NewNoticeHandler(svc, logger, cfg.Server.MaxBodySize),
		HealthHandler:    handlers.NewHealthHandler(cli.Version, metrics, infra.HealthCheckers()...),
		RequestTimeout:   cfg.Server.RequestTimeout,
		Logger:           logger,
		MetricsCollector: collector,
		MetricsPath:      cfg.Metrics.Path,
	}

	if len(cfg.Server.AllowedOrigins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = cfg.Server.AllowedOrigins
		routerCfg.CORS = middleware.CORS(corsCfg)
	}

	logCfg := middleware.DefaultLoggingConfig()
	logCfg.Metrics = metrics
	routerCfg.Logging = middleware.RequestLogging(logger, logCfg)

	if rl := cfg.Server.RateLimit; rl.Enabled {
		rlCfg := middleware.DefaultRateLimitConfig()
		rlCfg.Logger = logger
		if infra.Redis != nil {
			// Replicas share one per-minute window.
			perMinute := int(rl.RequestsPerSecond * 60)
			window := redis.NewWindowLimiter(infra.Redis, perMinute, time.Minute)
			routerCfg.RateLimit = middleware.RateLimit(middleware.NewRedisLimiter(window), rlCfg)
		} else {
			bucket := middleware.NewTokenBucketLimiter(rl.RequestsPerSecond, rl.Burst, limiterCleanup)
			defer bucket.Stop()
			routerCfg.RateLimit = middleware.RateLimit(bucket, rlCfg)
		}
	}

	server := httpserver.NewServer(httpserver.ServerConfig{
		Addr:            cfg.Server.Addr(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, httpserver.NewRouter(routerCfg), logger)

	if configPath != "" {
		config.Watch(configPath,
			func(*config.Config) {
				logger.Warn("configuration file changed; restart to apply", logging.String("path", configPath))
			},
			func(err error) {
				logger.Error("configuration file change is invalid", logging.String("path", configPath), logging.Err(err))
			},
		)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	case sig := <-quit:
		logger.Info("shutting down", logging.String("signal", sig.String()))
	}

	ctx, cancel = context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Error("HTTP server shutdown error", logging.Err(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

//Personal.AI order the ending
