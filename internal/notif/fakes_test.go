package notif

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"foodorder/internal/common"
	"foodorder/internal/config"

	"github.com/stretchr/testify/mock"
)

// memRepository is an in-process NotificationRepository with the same
// visibility rules as the real stores: expired records are invisible.
type memRepository struct {
	mu      sync.Mutex
	records map[string]*common.Notification
	now     func() time.Time
	calls   map[string]int
	failOn  map[string]error
}

func newMemRepository() *memRepository {
	return &memRepository{
		records: make(map[string]*common.Notification),
		now:     func() time.Time { return time.Now().UTC() },
		calls:   make(map[string]int),
		failOn:  make(map[string]error),
	}
}

func clone(n *common.Notification) *common.Notification {
	c := *n
	return &c
}

func (r *memRepository) track(op string) error {
	r.calls[op]++
	return r.failOn[op]
}

func (r *memRepository) callCount(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op]
}

func (r *memRepository) live(id string) (*common.Notification, bool) {
	n, ok := r.records[id]
	if !ok || n.IsExpired(r.now()) {
		return nil, false
	}
	return n, true
}

func (r *memRepository) Create(_ context.Context, n *common.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.track("Create"); err != nil {
		return err
	}
	if err := n.Validate(); err != nil {
		return err
	}
	if _, exists := r.records[n.ID]; exists {
		return &common.ValidationError{Field: "id", Reason: "already exists"}
	}
	r.records[n.ID] = clone(n)
	return nil
}

func (r *memRepository) ByID(_ context.Context, id string) (*common.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.track("ByID"); err != nil {
		return nil, err
	}
	n, ok := r.live(id)
	if !ok {
		return nil, common.NewNotFound(id)
	}
	return clone(n), nil
}

func (r *memRepository) unread(recipientID string) []*common.Notification {
	var out []*common.Notification
	for _, n := range r.records {
		if n.Recipient.ID == recipientID && !n.IsRead && !n.IsExpired(r.now()) {
			out = append(out, clone(n))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *memRepository) UnreadByRecipient(_ context.Context, recipientID string, limit int) ([]*common.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.track("UnreadByRecipient"); err != nil {
		return nil, err
	}
	out := r.unread(recipientID)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepository) UnreadCount(_ context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.track("UnreadCount"); err != nil {
		return 0, err
	}
	return int64(len(r.unread(recipientID))), nil
}

func (r *memRepository) NextUnreadExpiry(_ context.Context, recipientID string) (*time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.track("NextUnreadExpiry"); err != nil {
		return nil, err
	}
	var next *time.Time
	for _, n := range r.unread(recipientID) {
		if n.ExpiresAt != nil && (next == nil || n.ExpiresAt.Before(*next)) {
			at := *n.ExpiresAt
			next = &at
		}
	}
	return next, nil
}

func (r *memRepository) MarkAsRead(_ context.Context, id string, at time.Time) (*common.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.track("MarkAsRead"); err != nil {
		return nil, err
	}
	n, ok := r.live(id)
	if !ok {
		return nil, common.NewNotFound(id)
	}
	n.IsRead = true
	n.ReadAt = &at
	n.UpdatedAt = at
	return clone(n), nil
}

func (r *memRepository) UpdateDeliveryStatus(_ context.Context, id string, ch common.Channel, status common.DeliveryState, errMsg string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.track("UpdateDeliveryStatus"); err != nil {
		return err
	}
	if !ch.IsTracked() {
		return nil
	}
	n, ok := r.live(id)
	if !ok {
		return common.NewNotFound(id)
	}
	current, _ := n.DeliveryStatus.For(ch)
	current.Status = status
	current.SentAt = &at
	if errMsg != "" {
		current.Error = errMsg
	}
	n.DeliveryStatus.Set(ch, current)
	n.UpdatedAt = at
	return nil
}

func (r *memRepository) Delete(_ context.Context, id string) (*common.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.track("Delete"); err != nil {
		return nil, err
	}
	n, ok := r.records[id]
	if !ok {
		return nil, common.NewNotFound(id)
	}
	delete(r.records, id)
	return n, nil
}

func (r *memRepository) DueScheduled(_ context.Context, before time.Time, limit int) ([]*common.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.track("DueScheduled"); err != nil {
		return nil, err
	}
	var out []*common.Notification
	for _, n := range r.records {
		if n.ScheduledFor != nil && !n.ScheduledFor.After(before) && n.DispatchedAt == nil && !n.IsExpired(r.now()) {
			out = append(out, clone(n))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledFor.Before(*out[j].ScheduledFor) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepository) MarkDispatched(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.track("MarkDispatched"); err != nil {
		return err
	}
	n, ok := r.records[id]
	if !ok {
		return common.NewNotFound(id)
	}
	n.DispatchedAt = &at
	n.UpdatedAt = at
	return nil
}

func (r *memRepository) PurgeExpired(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.track("PurgeExpired"); err != nil {
		return 0, err
	}
	var purged int64
	for id, n := range r.records {
		if n.ExpiresAt != nil && !n.ExpiresAt.After(before) {
			delete(r.records, id)
			purged++
		}
	}
	return purged, nil
}

func (r *memRepository) Ping(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.track("Ping")
}

// raw returns the stored record regardless of expiry.
func (r *memRepository) raw(id string) *common.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.records[id]; ok {
		return clone(n)
	}
	return nil
}

var errStoreDown = errors.New("store unavailable")

// memCounter is an UnreadCounter backed by a map. Entries set with a
// maxAge expire against now, like Redis keys with a TTL.
type memCounter struct {
	mu       sync.Mutex
	counts   map[string]int64
	deadline map[string]time.Time
	now      func() time.Time
	getErr   error
	invalid  int
}

func newMemCounter() *memCounter {
	return &memCounter{
		counts:   make(map[string]int64),
		deadline: make(map[string]time.Time),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (c *memCounter) Get(_ context.Context, recipientID string) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return 0, false, c.getErr
	}
	if d, ok := c.deadline[recipientID]; ok && !c.now().Before(d) {
		delete(c.counts, recipientID)
		delete(c.deadline, recipientID)
	}
	n, ok := c.counts[recipientID]
	return n, ok, nil
}

func (c *memCounter) Set(_ context.Context, recipientID string, count int64, maxAge time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[recipientID] = count
	delete(c.deadline, recipientID)
	if maxAge > 0 {
		c.deadline[recipientID] = c.now().Add(maxAge)
	}
	return nil
}

func (c *memCounter) Invalidate(_ context.Context, recipientID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.counts, recipientID)
	delete(c.deadline, recipientID)
	c.invalid++
	return nil
}

func (c *memCounter) cachedFor(recipientID string) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.deadline[recipientID]
	return d, ok
}

func (c *memCounter) invalidations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalid
}

// MockPublisher records published events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event common.NotificationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockTestObserver struct {
	mock.Mock
	mu     sync.Mutex
	events []common.NotificationEvent
}

func (m *MockTestObserver) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockTestObserver) Update(event common.NotificationEvent) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockTestObserver) received() []common.NotificationEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]common.NotificationEvent(nil), m.events...)
}

// testConfig disables the background loops so tests drive them directly.
func testConfig() *config.Config {
	return &config.Config{
		Notification: config.NotificationConfig{
			Workers:            2,
			ChannelBufferSize:  100,
			ReleaseBatchSize:   50,
			DefaultUnreadLimit: 20,
			PublishTimeout:     1,
		},
	}
}
