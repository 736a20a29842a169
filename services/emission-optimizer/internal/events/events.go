// Package events delivers decision events to Kafka and RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	pkgkafka "github.com/Tanmoy095/LogiSynapse/pkg/kafka"
	"github.com/Tanmoy095/LogiSynapse/shared/contracts"
	sharedkafka "github.com/Tanmoy095/LogiSynapse/shared/kafka"
)

const (
	// DecisionQueue receives one notification job per decision.
	DecisionQueue = "decision_notifications"
	// DecisionJobType tags jobs on DecisionQueue.
	DecisionJobType = "decision_email"
)

// Noop drops everything. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }
func (Noop) Close() error                               { return nil }

// Fanout publishes to every target and joins their errors.
type Fanout []pkgkafka.Publisher

func (f Fanout) Publish(ctx context.Context, key string, value any) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, key, value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) Close() error {
	var errs []error
	for _, p := range f {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Queue is the slice of the RabbitMQ client the publishers need.
type Queue interface {
	PublishJSON(ctx context.Context, queueName string, v any) error
	Close() error
}

// QueuePublisher turns decision events into notification jobs on a queue.
type QueuePublisher struct {
	queue Queue
	name  string
}

func NewQueuePublisher(q Queue, name string) *QueuePublisher {
	return &QueuePublisher{queue: q, name: name}
}

func (p *QueuePublisher) Publish(ctx context.Context, _ string, value any) error {
	ev, ok := value.(contracts.DecisionEvent)
	if !ok {
		return p.queue.PublishJSON(ctx, p.name, value)
	}
	return p.queue.PublishJSON(ctx, p.name, contracts.NotificationJob{Type: DecisionJobType, Payload: ev})
}

func (p *QueuePublisher) Close() error { return p.queue.Close() }

// RelayHandler forwards decision events read from Kafka to the notification queue.
// Messages that are not decision events are skipped. A queue failure is returned so
// the offset stays uncommitted and Kafka redelivers.
func RelayHandler(q Queue, queueName string, logger *slog.Logger) sharedkafka.Handler {
	return func(ctx context.Context, key, value []byte) error {
		var ev contracts.DecisionEvent
		if err := json.Unmarshal(value, &ev); err != nil {
			logger.WarnContext(ctx, "skipping undecodable message", "key", string(key), "error", err)
			return nil
		}
		switch ev.Event {
		case contracts.EventShipmentApproved, contracts.EventShipmentRejected:
		default:
			logger.DebugContext(ctx, "skipping event", "event", ev.Event)
			return nil
		}

		job := contracts.NotificationJob{Type: DecisionJobType, Payload: ev}
		if err := q.PublishJSON(ctx, queueName, job); err != nil {
			return fmt.Errorf("enqueue %s for %s: %w", DecisionJobType, ev.ShipmentID, err)
		}
		logger.InfoContext(ctx, "decision relayed", "shipment_id", ev.ShipmentID, "event", ev.Event, "event_id", ev.EventID)
		return nil
	}
}
