package main

import (
	"errors"
	"os"

	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/events"
	sharedkafka "github.com/Tanmoy095/LogiSynapse/shared/kafka"
	"github.com/spf13/cobra"
)

const relayGroup = "emission-optimizer-relay"

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Forward decision events from Kafka to the RabbitMQ notification queue",
	Long: `Relay consumes the decision topic and enqueues one notification job per
approve or reject on the decision_notifications queue. Offsets are committed only
after the job is enqueued, so a RabbitMQ outage means redelivery, not loss.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cfg, os.Stdout, cfg.LogFormat)

		if !cfg.Infra.KafkaEnabled() {
			return errors.New("relay needs KAFKA_BROKER and KAFKA_TOPIC")
		}
		if !cfg.Infra.RabbitMQEnabled() {
			return errors.New("relay needs RABBITMQ_HOST")
		}

		q, err := openQueue(cfg, logger)
		if err != nil {
			return err
		}
		consumer := sharedkafka.NewConsumer([]string{cfg.Infra.KAFKA_BROKER}, cfg.Infra.KAFKA_TOPIC, relayGroup, logger)

		// blocks until SIGINT/SIGTERM
		consumer.Start(ctx, events.RelayHandler(q, events.DecisionQueue, logger))
		logger.Info("relay stopping")
		return errors.Join(consumer.Close(), q.Close())
	},
}
