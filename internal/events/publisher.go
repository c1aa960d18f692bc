package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Publisher emits order lifecycle events. Publishing is best-effort: a failed
// or absent broker never fails the order operation that produced the event.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload interface{})
	Close() error
}

// NopPublisher drops every event; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) {}
func (NopPublisher) Close() error                                 { return nil }

type KafkaPublisher struct {
	writer   *kafka.Writer
	producer string
	logger   zerolog.Logger
}

func NewKafkaPublisher(brokers []string, topic, producer string, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true, // fire-and-forget, completion errors land in the callback
			Completion: func(messages []kafka.Message, err error) {
				if err != nil {
					logger.Warn().Err(err).Int("messages", len(messages)).Msg("failed to publish order events")
				}
			},
		},
		producer: producer,
		logger:   logger,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		p.logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to marshal event payload")
		return
	}

	envelope := Envelope{
		EventID:    uuid.New().String(),
		EventType:  eventType,
		OccurredAt: time.Now(),
		Producer:   p.producer,
		Payload:    raw,
	}
	value, err := json.Marshal(envelope)
	if err != nil {
		p.logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to marshal event envelope")
		return
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("%s:%s", eventType, envelope.EventID)),
		Value: value,
		Time:  envelope.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to enqueue event")
	}
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
