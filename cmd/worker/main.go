// Background worker entry point for LienPilot. It consumes notice-of-intent
// render requests from Kafka, renders and stores each notice and publishes
// the rendered event.
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
	"github.com/turtacn/LienPilot/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/LienPilot/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LienPilot/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/LienPilot/internal/interfaces/cli"
	httpserver "github.com/turtacn/LienPilot/internal/interfaces/http"
	"github.com/turtacn/LienPilot/internal/interfaces/http/handlers"
)

const (
	defaultWorkerConfigPath = "configs/config.yaml"
	connectTimeout          = 30 * time.Second
	shutdownTimeout         = 30 * time.Second
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: "+defaultWorkerConfigPath+" when present, else LIEN_* environment)")
	group := flag.String("group", "", "consumer group (overrides config)")
	flag.Parse()

	if err := run(*configPath, *group); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, group string) error {
	if configPath == "" {
		if _, err := os.Stat(defaultWorkerConfigPath); err == nil {
			configPath = defaultWorkerConfigPath
		}
	}
	cfg, err := config.LoadOrEnv(configPath)
	if err != nil {
		return err
	}
	if !cfg.Kafka.Enabled {
		return fmt.Errorf("kafka is disabled; the worker has nothing to consume")
	}
	if group != "" {
		cfg.Kafka.Consumer.GroupID = group
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logging.Sync(logger) }()

	logger.Info("starting LienPilot worker",
		logging.String("version", cli.Version),
		logging.String("group", cfg.Kafka.Consumer.GroupID),
		logging.Int("metrics_port", cfg.Worker.MetricsPort),
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
	defer cancel()

	if cfg.Kafka.AutoCreateTopics {
		if err := ensureTopics(ctx, cfg, logger); err != nil {
			return err
		}
	}

	infra, err := bootstrap.Connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	deps, err := infra.ServiceDeps(cfg, metrics, logger)
	if err != nil {
		return err
	}
	if deps.Notices == nil {
		logger.Warn("object storage is disabled; rendered notices will not be stored")
	}
	svc := notice.NewService(deps)

	consumerCfg := cfg.Kafka.Consumer
	if len(consumerCfg.Topics) == 0 {
		consumerCfg.Topics = []string{kafka.TopicNOIRequested}
	}
	if consumerCfg.Retry.DeadLetterTopic == "" {
		consumerCfg.Retry.DeadLetterTopic = kafka.TopicDeadLetter
	}
	consumer, err := kafka.NewConsumer(consumerCfg, logger)
	if err != nil {
		return fmt.Errorf("kafka consumer: %w", err)
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Warn("consumer close failed", logging.Err(err))
		}
	}()
	consumer.Subscribe(kafka.TopicNOIRequested, notice.NoticeRequestedHandler(svc, metrics, logger))

	// Probes and metrics share one listener; the API routes stay unmounted.
	health := handlers.NewHealthHandler(cli.Version, metrics, infra.HealthCheckers()...)
	probe := httpserver.NewServer(httpserver.ServerConfig{
		Addr:            fmt.Sprintf(":%d", cfg.Worker.MetricsPort),
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: shutdownTimeout,
	}, httpserver.NewRouter(httpserver.RouterConfig{
		HealthHandler:    health,
		Logger:           logger,
		MetricsCollector: collector,
		MetricsPath:      cfg.Metrics.Path,
	}), logger)

	errCh := make(chan error, 1)
	go func() { errCh <- probe.Start() }()

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := consumer.Start(runCtx); err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}

	select {
	case <-runCtx.Done():
		logger.Info("shutting down worker")
	case err := <-errCh:
		if err != nil {
			logger.Error("probe server stopped", logging.Err(err))
			return err
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := probe.Stop(shutdownCtx); err != nil {
		logger.Warn("probe server shutdown error", logging.Err(err))
	}
	m := consumer.GetMetrics()
	logger.Info("worker stopped",
		logging.Int64("processed", m.MessagesProcessed),
		logging.Int64("failed", m.MessagesFailed),
	)
	return nil
}

// ensureTopics creates the lien topics that do not exist yet.
func ensureTopics(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	tm, err := kafka.NewTopicManager(cfg.Kafka.Consumer.Brokers, logger)
	if err != nil {
		return fmt.Errorf("kafka topic manager: %w", err)
	}
	defer tm.Close()
	if err := tm.EnsureDefaultTopics(ctx, cfg.Kafka.ReplicationFactor); err != nil {
		return fmt.Errorf("ensure topics: %w", err)
	}
	return nil
}

//Personal.AI order the ending
