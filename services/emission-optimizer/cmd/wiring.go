package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Tanmoy095/LogiSynapse/pkg/kafka"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/config"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/events"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/reference"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/service"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/store"
	pkgrabbit "github.com/Tanmoy095/LogiSynapse/shared/rabbitmq"
	"github.com/spf13/cobra"
)

// loadConfig resolves the config for cmd, honouring its explicitly set flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	return config.Load(config.LoadOptions{
		ConfigFile: configFile,
		EnvFile:    envFile,
		Flags:      cmd.Flags(),
	})
}

func newLogger(cfg config.Config, w io.Writer, format string) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openStore returns the configured shipment store and a func releasing it.
func openStore(ctx context.Context, cfg config.Config) (store.ShipmentStore, func() error, error) {
	noop := func() error { return nil }
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		s, err := store.NewPostgresStore(ctx, cfg.Infra.GetDBURL())
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.DriverSQLite:
		s, err := store.NewSQLiteStore(ctx, cfg.ResolvedSQLitePath())
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return store.NewFileStore(cfg.ShipmentsPath()), noop, nil
	}
}

// openPublisher connects every configured broker. With none configured decisions
// are only persisted.
func openPublisher(cfg config.Config, logger *slog.Logger) (kafka.Publisher, error) {
	var targets events.Fanout
	if cfg.Infra.KafkaEnabled() {
		logger.Info("publishing decisions to kafka", "broker", cfg.Infra.KAFKA_BROKER, "topic", cfg.Infra.KAFKA_TOPIC)
		targets = append(targets, kafka.NewKafkaProducer(cfg.Infra.KAFKA_BROKER, cfg.Infra.KAFKA_TOPIC, logger))
	}
	if cfg.Infra.RabbitMQEnabled() {
		q, err := openQueue(cfg, logger)
		if err != nil {
			_ = targets.Close()
			return nil, err
		}
		targets = append(targets, events.NewQueuePublisher(q, events.DecisionQueue))
	}
	switch len(targets) {
	case 0:
		logger.Info("no broker configured, decision events are dropped")
		return events.Noop{}, nil
	case 1:
		return targets[0], nil
	default:
		return targets, nil
	}
}

func openQueue(cfg config.Config, logger *slog.Logger) (*pkgrabbit.RabbitmqClient, error) {
	logger.Info("connecting to rabbitmq", "host", cfg.Infra.RABBITMQ_HOST)
	q, err := pkgrabbit.NewClient(cfg.Infra.GetRabbitMQURL())
	if err != nil {
		return nil, err
	}
	if err := q.CreateQueue(events.DecisionQueue); err != nil {
		_ = q.Close()
		return nil, err
	}
	return q, nil
}

// offlineService builds a service for the one-shot commands: no brokers, text logs on stderr.
func offlineService(cmd *cobra.Command) (*service.OptimizerService, func() error, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(cfg, os.Stderr, "text")
	st, closeStore, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	svc := service.NewOptimizerService(st, reference.NewFileSource(cfg.DataDir), nil, logger)
	return svc, closeStore, nil
}
