package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/Jonathan-321/congenial-eureka/internal/domain/event"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/port"
)

// KafkaEventPublisher implements port.EventPublisher by writing domain
// events to a single Kafka topic, keyed by aggregate ID so that all events
// of one loan land on the same partition in order.
type KafkaEventPublisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewKafkaEventPublisher creates a publisher targeting the given brokers and
// topic.
func NewKafkaEventPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafkago.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafkago.RequireAll,
		},
		logger: logger,
	}
}

var _ port.EventPublisher = (*KafkaEventPublisher)(nil)

// Publish serialises and sends the events in one batch.
func (p *KafkaEventPublisher) Publish(ctx context.Context, events ...event.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	messages := make([]kafkago.Message, 0, len(events))
	for _, evt := range events {
		payload, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", evt.EventType(), err)
		}
		messages = append(messages, kafkago.Message{
			Key:   []byte(evt.AggregateID()),
			Value: payload,
			Headers: []kafkago.Header{
				{Key: "event_type", Value: []byte(evt.EventType())},
				{Key: "aggregate_type", Value: []byte(evt.AggregateType())},
			},
		})
	}

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		return fmt.Errorf("kafka publish: %w", err)
	}

	for _, evt := range events {
		p.logger.Debug("published domain event",
			"event_type", evt.EventType(),
			"aggregate_id", evt.AggregateID(),
		)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaEventPublisher) Close() error {
	return p.writer.Close()
}
