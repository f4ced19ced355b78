package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"foodorder/internal/common"
	"foodorder/pkg/zlog"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// DeliveryOutcome is what providers report back through the dispatcher.
type DeliveryOutcome struct {
	NotificationID string               `json:"notificationId"`
	Channel        common.Channel       `json:"channel"`
	Status         common.DeliveryState `json:"status"`
	Error          string               `json:"error,omitempty"`
}

// OutcomeRecorder is the part of the notification service the consumer
// drives.
type OutcomeRecorder interface {
	RecordDeliveryOutcome(ctx context.Context, id string, channel common.Channel, status common.DeliveryState, errMsg string) error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type OutcomeConsumer struct {
	reader   messageReader
	recorder OutcomeRecorder
	backoff  time.Duration
}

func NewOutcomeConsumer(brokers []string, groupID, topic string, recorder OutcomeRecorder) (*OutcomeConsumer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka consumer requires at least one broker")
	}
	if groupID == "" {
		return nil, fmt.Errorf("kafka consumer requires group id")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka consumer requires a topic")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		GroupTopics: []string{topic},
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     500 * time.Millisecond,
	})
	return &OutcomeConsumer{reader: reader, recorder: recorder, backoff: time.Second}, nil
}

// Run consumes until ctx is cancelled. Offsets are committed after each
// message is handled; unknown ids and malformed payloads are logged and
// committed so they never block the partition. A store failure holds the
// partition: the same message is retried with backoff and nothing after it
// is fetched, because committing a later offset would skip it.
func (c *OutcomeConsumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			zlog.Warn("failed to fetch delivery outcome", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.backoff):
			}
			continue
		}

		for !c.handle(ctx, msg) {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.backoff):
			}
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			zlog.Warn("failed to commit delivery outcome",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
		}
	}
}

// handle reports whether the message is done with and may be committed.
func (c *OutcomeConsumer) handle(ctx context.Context, msg kafka.Message) bool {
	var outcome DeliveryOutcome
	if err := json.Unmarshal(msg.Value, &outcome); err != nil {
		zlog.Warn("skipping malformed delivery outcome",
			zap.Int64("offset", msg.Offset),
			zap.Error(err))
		return true
	}

	err := c.recorder.RecordDeliveryOutcome(ctx, outcome.NotificationID, outcome.Channel, outcome.Status, outcome.Error)
	switch {
	case err == nil:
		return true
	case common.IsNotFound(err), common.IsValidation(err):
		zlog.Warn("dropping delivery outcome",
			zap.String("notification_id", outcome.NotificationID),
			zap.String("channel", outcome.Channel.String()),
			zap.Error(err))
		return true
	default:
		// Left uncommitted; redelivered after a restart or rebalance.
		zlog.Error("failed to record delivery outcome",
			zap.String("notification_id", outcome.NotificationID),
			zap.String("channel", outcome.Channel.String()),
			zap.Error(err))
		return false
	}
}

func (c *OutcomeConsumer) Close() error {
	return c.reader.Close()
}
