package main

import (
	"fmt"
	"os"

	httpServer "github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/handler/http"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/reference"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/service"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve fills in missing baselines once, then exposes the API until SIGINT
or SIGTERM. Decisions are published to Kafka and/or RabbitMQ when configured.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cfg, os.Stdout, cfg.LogFormat)

		st, closeStore, err := openStore(ctx, cfg)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer func() {
			if err := closeStore(); err != nil {
				logger.Error("close store", "error", err)
			}
		}()

		producer, err := openPublisher(cfg, logger)
		if err != nil {
			return fmt.Errorf("connect brokers: %w", err)
		}
		defer func() {
			if err := producer.Close(); err != nil {
				logger.Error("close publisher", "error", err)
			}
		}()

		svc := service.NewOptimizerService(st, reference.NewCachedFileSource(cfg.DataDir), producer, logger)
		changed, err := svc.EnsureBaselines(ctx)
		if err != nil {
			return fmt.Errorf("ensure baselines: %w", err)
		}
		logger.Info("baselines checked", "updated", changed, "store", cfg.StoreDriver, "data_dir", cfg.DataDir)

		srv := httpServer.NewServer(svc, logger, httpServer.Options{
			RateLimitRPS:   cfg.RateLimitRPS,
			RateLimitBurst: cfg.RateLimitBurst,
		})
		return srv.Run(ctx, cfg.Addr())
	},
}
