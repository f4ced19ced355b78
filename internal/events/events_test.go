package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"foodorder/internal/common"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewKafkaPublisher_Validation(t *testing.T) {
	_, err := NewKafkaPublisher(nil, "notifications.dispatch")
	assert.Error(t, err)

	_, err = NewKafkaPublisher([]string{"localhost:9092"}, "")
	assert.Error(t, err)

	p, err := NewKafkaPublisher([]string{"localhost:9092"}, "notifications.dispatch")
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, topic: "notifications.dispatch"}

	channels := common.Channels{Push: true, SMS: true}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	event := common.NotificationEvent{
		Kind:           common.EventCreated,
		NotificationID: "n-1",
		RecipientID:    "U1",
		Type:           common.OrderUpdateType,
		Priority:       common.PriorityHigh,
		Channels:       &channels,
		OccurredAt:     at,
	}

	require.NoError(t, p.Publish(context.Background(), event))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("U1"), w.msgs[0].Key)

	var env DispatchEnvelope
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &env))
	assert.Equal(t, common.EventCreated, env.Event)
	assert.Equal(t, "n-1", env.NotificationID)
	assert.Equal(t, "U1", env.RecipientID)
	assert.Equal(t, common.PriorityHigh, env.Priority)
	require.NotNil(t, env.Channels)
	assert.True(t, env.Channels.SMS)
	assert.True(t, at.Equal(env.OccurredAt))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("broker down")}, topic: "notifications.dispatch"}

	err := p.Publish(context.Background(), common.NotificationEvent{NotificationID: "n-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notifications.dispatch")
}

// fakeReader hands out queued messages, then blocks until ctx is done.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	done      chan struct{}
}

func newFakeReader(values ...string) *fakeReader {
	r := &fakeReader{done: make(chan struct{})}
	for i, v := range values {
		r.queue = append(r.queue, kafka.Message{Offset: int64(i), Value: []byte(v)})
	}
	return r
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()

	select {
	case <-r.done:
	default:
		close(r.done)
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func (r *fakeReader) committedOffsets() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordDeliveryOutcome(ctx context.Context, id string, channel common.Channel, status common.DeliveryState, errMsg string) error {
	args := m.Called(ctx, id, channel, status, errMsg)
	return args.Error(0)
}

func runConsumer(t *testing.T, reader *fakeReader, recorder OutcomeRecorder) {
	t.Helper()
	c := &OutcomeConsumer{reader: reader, recorder: recorder, backoff: time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- c.Run(ctx) }()

	select {
	case <-reader.done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not drain the queue")
	}
	cancel()
	require.NoError(t, <-errCh)
}

func TestOutcomeConsumer_Run(t *testing.T) {
	reader := newFakeReader(
		`{"notificationId":"n-1","channel":"sms","status":"delivered"}`,
		`{"notificationId":"n-2","channel":"email","status":"bounced","error":"mailbox full"}`,
	)
	recorder := new(MockRecorder)
	recorder.On("RecordDeliveryOutcome", mock.Anything, "n-1", common.ChannelSMS, common.DeliveryDelivered, "").Return(nil)
	recorder.On("RecordDeliveryOutcome", mock.Anything, "n-2", common.ChannelEmail, common.DeliveryBounced, "mailbox full").Return(nil)

	runConsumer(t, reader, recorder)

	recorder.AssertExpectations(t)
	assert.Equal(t, []int64{0, 1}, reader.committedOffsets())
}

func TestOutcomeConsumer_SkipsBadMessages(t *testing.T) {
	reader := newFakeReader(
		`not json`,
		`{"notificationId":"missing","channel":"push","status":"sent"}`,
		`{"notificationId":"n-3","channel":"push","status":"sent"}`,
	)
	recorder := new(MockRecorder)
	recorder.On("RecordDeliveryOutcome", mock.Anything, "missing", common.ChannelPush, common.DeliverySent, "").
		Return(common.NewNotFound("missing"))
	recorder.On("RecordDeliveryOutcome", mock.Anything, "n-3", common.ChannelPush, common.DeliverySent, "").
		Return(nil)

	runConsumer(t, reader, recorder)

	recorder.AssertExpectations(t)
	assert.Equal(t, []int64{0, 1, 2}, reader.committedOffsets())
}

func TestOutcomeConsumer_StoreFailureHoldsPartition(t *testing.T) {
	reader := newFakeReader(
		`{"notificationId":"n-1","channel":"push","status":"sent"}`,
		`{"notificationId":"n-2","channel":"sms","status":"delivered"}`,
	)
	recorder := new(MockRecorder)
	recorder.On("RecordDeliveryOutcome", mock.Anything, "n-1", common.ChannelPush, common.DeliverySent, "").
		Return(errors.New("store unavailable")).Twice()
	recorder.On("RecordDeliveryOutcome", mock.Anything, "n-1", common.ChannelPush, common.DeliverySent, "").
		Return(nil).Once()
	recorder.On("RecordDeliveryOutcome", mock.Anything, "n-2", common.ChannelSMS, common.DeliveryDelivered, "").
		Return(nil).Once()

	runConsumer(t, reader, recorder)

	recorder.AssertExpectations(t)
	recorder.AssertNumberOfCalls(t, "RecordDeliveryOutcome", 4)
	// n-2 is only fetched and committed after n-1 finally lands.
	assert.Equal(t, []int64{0, 1}, reader.committedOffsets())
}

func TestOutcomeConsumer_StoreFailureNeverCommitsPastIt(t *testing.T) {
	reader := newFakeReader(
		`{"notificationId":"n-1","channel":"push","status":"sent"}`,
		`{"notificationId":"n-2","channel":"sms","status":"delivered"}`,
	)
	var attempts atomic.Int32
	recorder := new(MockRecorder)
	recorder.On("RecordDeliveryOutcome", mock.Anything, "n-1", common.ChannelPush, common.DeliverySent, "").
		Run(func(mock.Arguments) { attempts.Add(1) }).
		Return(errors.New("store unavailable"))

	c := &OutcomeConsumer{reader: reader, recorder: recorder, backoff: time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- c.Run(ctx) }()

	require.Eventually(t, func() bool {
		return attempts.Load() >= 3
	}, 2*time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-errCh)

	recorder.AssertNotCalled(t, "RecordDeliveryOutcome", mock.Anything, "n-2", common.ChannelSMS, common.DeliveryDelivered, "")
	assert.Empty(t, reader.committedOffsets())
}

func TestNewOutcomeConsumer_Validation(t *testing.T) {
	recorder := new(MockRecorder)

	_, err := NewOutcomeConsumer(nil, "notification-tracker", "notifications.delivery-outcomes", recorder)
	assert.Error(t, err)

	_, err = NewOutcomeConsumer([]string{"localhost:9092"}, "", "notifications.delivery-outcomes", recorder)
	assert.Error(t, err)

	_, err = NewOutcomeConsumer([]string{"localhost:9092"}, "notification-tracker", "", recorder)
	assert.Error(t, err)

	c, err := NewOutcomeConsumer([]string{"localhost:9092"}, "notification-tracker", "notifications.delivery-outcomes", recorder)
	require.NoError(t, err)
	assert.NoError(t, c.Close())
}
