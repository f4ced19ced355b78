// Package events carries notification lifecycle events to and from the
// external dispatcher over Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"foodorder/internal/common"

	"github.com/segmentio/kafka-go"
)

// DispatchEnvelope is the message the dispatcher consumes.
type DispatchEnvelope struct {
	Event          common.EventKind        `json:"event"`
	NotificationID string                  `json:"notificationId"`
	RecipientID    string                  `json:"recipientId"`
	Type           common.NotificationType `json:"type,omitempty"`
	Channels       *common.Channels        `json:"channels,omitempty"`
	Priority       common.Priority         `json:"priority,omitempty"`
	OccurredAt     time.Time               `json:"occurredAt"`
}

func envelopeFor(event common.NotificationEvent) DispatchEnvelope {
	return DispatchEnvelope{
		Event:          event.Kind,
		NotificationID: event.NotificationID,
		RecipientID:    event.RecipientID,
		Type:           event.Type,
		Channels:       event.Channels,
		Priority:       event.Priority,
		OccurredAt:     event.OccurredAt.UTC(),
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka publisher requires a topic")
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			RequiredAcks:           kafka.RequireAll,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
		topic: topic,
	}, nil
}

// Publish writes one envelope keyed by recipient so a user's events stay
// ordered on one partition.
func (p *KafkaPublisher) Publish(ctx context.Context, event common.NotificationEvent) error {
	payload, err := json.Marshal(envelopeFor(event))
	if err != nil {
		return fmt.Errorf("failed to encode dispatch envelope: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.RecipientID),
		Value: payload,
		Time:  time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

var _ common.EventPublisher = (*KafkaPublisher)(nil)
