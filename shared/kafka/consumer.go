package kafka

import (
	"context"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Reader is the subset of kafka.Reader the consumer uses.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Handler processes one message. Returning an error makes the consumer retry the
// same message; nothing after it is committed until it succeeds.
type Handler func(ctx context.Context, key []byte, value []byte) error

// Consumer reads a topic as part of a consumer group.
type Consumer struct {
	reader         Reader
	logger         *slog.Logger
	handlerTimeout time.Duration
	retryDelay     time.Duration
}

// NewConsumer joins groupID on topic. Copies sharing a group split the partitions.
func NewConsumer(brokers []string, topic, groupID string, logger *slog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	logger = logger.With("topic", topic, "group", groupID)
	return NewConsumerWithReader(r, logger)
}

// NewConsumerWithReader allows injecting a test reader.
func NewConsumerWithReader(r Reader, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{reader: r, logger: logger, handlerTimeout: 10 * time.Second, retryDelay: time.Second}
}

// Start fetches and handles messages until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context, handler Handler) {
	c.logger.Info("kafka consumer started")
	for {
		if ctx.Err() != nil {
			return
		}

		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("fetch message failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.retryDelay):
			}
			continue
		}

		if !c.handle(ctx, handler, m) {
			return
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("commit offset failed", "offset", m.Offset, "error", err)
		}
	}
}

// handle runs handler on m until it succeeds. Commits are cumulative, so moving
// past a failed message would lose it. It returns false once ctx is cancelled.
func (c *Consumer) handle(ctx context.Context, handler Handler, m kafka.Message) bool {
	for attempt := 1; ; attempt++ {
		processCtx, cancel := context.WithTimeout(ctx, c.handlerTimeout)
		err := handler(processCtx, m.Key, m.Value)
		cancel()
		if err == nil {
			return true
		}
		c.logger.Error("processing failed, retrying", "offset", m.Offset, "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(c.retryDelay):
		}
	}
}

// Close disconnects from the server.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
