package notif

import (
	"context"
	"sync"
	"time"

	"foodorder/internal/common"
	"foodorder/internal/config"
	"foodorder/internal/metrics"
	"foodorder/pkg/zlog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const defaultUnreadLimit = 20

// Lifecycle is what the HTTP and gRPC boundaries need from the service.
//
//go:generate mockgen -destination=mock_lifecycle_test.go -package=notif foodorder/internal/notif Lifecycle
type Lifecycle interface {
	Create(ctx context.Context, draft common.NotificationDraft) (*common.Notification, error)
	Schedule(ctx context.Context, draft common.NotificationDraft) (*common.Notification, error)
	Get(ctx context.Context, id string) (*common.Notification, error)
	FindUnreadForUser(ctx context.Context, recipientID string, limit int) ([]*common.Notification, error)
	CountUnreadForUser(ctx context.Context, recipientID string) (int64, error)
	MarkAsRead(ctx context.Context, id string) (*common.Notification, error)
	RecordDeliveryOutcome(ctx context.Context, id string, channel common.Channel, status common.DeliveryState, errMsg string) error
	Delete(ctx context.Context, id string) (*common.Notification, error)
	Ping(ctx context.Context) error
}

type NotificationService struct {
	manager *NotificationManager
	repo    common.NotificationRepository
	cache   common.UnreadCounter
	metrics *metrics.Metrics
	cfg     config.NotificationConfig
	now     func() time.Time
	newID   func() string

	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// NewNotificationService wires the observers and starts the schedule
// releaser and expiry sweeper when their intervals are positive. cache,
// publisher and m may be nil.
func NewNotificationService(
	cfg *config.Config,
	repo common.NotificationRepository,
	cache common.UnreadCounter,
	publisher common.EventPublisher,
	m *metrics.Metrics,
) *NotificationService {
	manager := NewNotificationManager(cfg.Notification.Workers, cfg.Notification.ChannelBufferSize)

	if publisher != nil {
		var failures prometheus.Counter
		if m != nil {
			failures = m.DispatchFailures
		}
		timeout := time.Duration(cfg.Notification.PublishTimeout) * time.Second
		manager.Subscribe(NewDispatchObserver(publisher, timeout, failures))
	}

	if m != nil {
		manager.Subscribe(NewMetricsObserver(m))
		manager.OnDrop(func(common.NotificationEvent) {
			m.EventsDropped.Inc()
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	service := &NotificationService{
		manager: manager,
		repo:    repo,
		cache:   cache,
		metrics: m,
		cfg:     cfg.Notification,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
		ctx:     ctx,
		cancel:  cancel,
	}

	if interval := cfg.Notification.ScheduledInterval(); interval > 0 {
		service.runEvery(interval, service.processScheduledNotifications)
	}
	if interval := cfg.Notification.SweepInterval(); interval > 0 {
		service.runEvery(interval, service.sweepExpired)
	}

	return service
}

// Create persists a new unread notification. Records without a future
// scheduledFor are handed to the dispatcher right away.
func (s *NotificationService) Create(ctx context.Context, draft common.NotificationDraft) (*common.Notification, error) {
	now := s.now()
	n := draft.Build(s.newID(), now)
	if err := n.Validate(); err != nil {
		return nil, err
	}

	if !n.IsDeferred(now) {
		n.DispatchedAt = &now
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	s.invalidateUnread(ctx, n.Recipient.ID)
	s.manager.NotifyAsync(common.EventFor(common.EventCreated, n, now))

	zlog.Debug("notification created",
		zap.String("notification_id", n.ID),
		zap.String("recipient_id", n.Recipient.ID),
		zap.String("type", string(n.Type)),
		zap.Bool("deferred", n.DispatchedAt == nil))
	return n, nil
}

// Schedule is Create with a mandatory scheduledFor in the future.
func (s *NotificationService) Schedule(ctx context.Context, draft common.NotificationDraft) (*common.Notification, error) {
	if draft.ScheduledFor == nil {
		return nil, &common.ValidationError{Field: "scheduledFor", Reason: "is required"}
	}
	if !draft.ScheduledFor.After(s.now()) {
		return nil, &common.ValidationError{Field: "scheduledFor", Reason: "must be in the future"}
	}
	return s.Create(ctx, draft)
}

func (s *NotificationService) Get(ctx context.Context, id string) (*common.Notification, error) {
	if id == "" {
		return nil, &common.ValidationError{Field: "id", Reason: "is required"}
	}
	return s.repo.ByID(ctx, id)
}

// FindUnreadForUser lists unread notifications newest first. A limit of
// zero or less means the configured default.
func (s *NotificationService) FindUnreadForUser(ctx context.Context, recipientID string, limit int) ([]*common.Notification, error) {
	if recipientID == "" {
		return nil, &common.ValidationError{Field: "recipient.id", Reason: "is required"}
	}
	if limit <= 0 {
		limit = s.cfg.DefaultUnreadLimit
		if limit <= 0 {
			limit = defaultUnreadLimit
		}
	}
	return s.repo.UnreadByRecipient(ctx, recipientID, limit)
}

func (s *NotificationService) CountUnreadForUser(ctx context.Context, recipientID string) (int64, error) {
	if recipientID == "" {
		return 0, &common.ValidationError{Field: "recipient.id", Reason: "is required"}
	}

	if s.cache != nil {
		count, ok, err := s.cache.Get(ctx, recipientID)
		if err != nil {
			zlog.Warn("unread cache read failed", zap.String("recipient_id", recipientID), zap.Error(err))
		} else if ok {
			return count, nil
		}
	}

	count, err := s.repo.UnreadCount(ctx, recipientID)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		s.cacheUnread(ctx, recipientID, count)
	}
	return count, nil
}

// cacheUnread stores count for no longer than the earliest expiry among the
// counted records, so the cached value never outlives a record it includes.
func (s *NotificationService) cacheUnread(ctx context.Context, recipientID string, count int64) {
	var maxAge time.Duration
	if count > 0 {
		expiry, err := s.repo.NextUnreadExpiry(ctx, recipientID)
		if err != nil {
			zlog.Warn("unread expiry lookup failed", zap.String("recipient_id", recipientID), zap.Error(err))
			return
		}
		if expiry != nil {
			maxAge = expiry.Sub(s.now())
			if maxAge <= 0 {
				return
			}
		}
	}

	if err := s.cache.Set(ctx, recipientID, count, maxAge); err != nil {
		zlog.Warn("unread cache write failed", zap.String("recipient_id", recipientID), zap.Error(err))
	}
}

// MarkAsRead flags the record read. Repeated calls succeed and move readAt
// to the latest call.
func (s *NotificationService) MarkAsRead(ctx context.Context, id string) (*common.Notification, error) {
	if id == "" {
		return nil, &common.ValidationError{Field: "id", Reason: "is required"}
	}

	now := s.now()
	n, err := s.repo.MarkAsRead(ctx, id, now)
	if err != nil {
		return nil, err
	}

	s.invalidateUnread(ctx, n.Recipient.ID)
	s.manager.NotifyAsync(common.EventFor(common.EventRead, n, now))
	return n, nil
}

// RecordDeliveryOutcome stores the latest provider outcome for one channel.
// Channels without a status entry (inApp, unknown names) are ignored
// without touching the store.
func (s *NotificationService) RecordDeliveryOutcome(
	ctx context.Context,
	id string,
	channel common.Channel,
	status common.DeliveryState,
	errMsg string,
) error {
	if !channel.IsTracked() {
		zlog.Debug("ignoring delivery outcome for untracked channel",
			zap.String("notification_id", id),
			zap.String("channel", channel.String()))
		return nil
	}
	if id == "" {
		return &common.ValidationError{Field: "id", Reason: "is required"}
	}
	if status == "" {
		return &common.ValidationError{Field: "status", Reason: "is required"}
	}

	now := s.now()
	if err := s.repo.UpdateDeliveryStatus(ctx, id, channel, status, errMsg, now); err != nil {
		return err
	}

	s.manager.NotifyAsync(common.NotificationEvent{
		Kind:           common.EventDeliveryOutcome,
		NotificationID: id,
		Channel:        channel,
		Status:         status,
		Error:          errMsg,
		OccurredAt:     now,
	})
	return nil
}

func (s *NotificationService) Delete(ctx context.Context, id string) (*common.Notification, error) {
	if id == "" {
		return nil, &common.ValidationError{Field: "id", Reason: "is required"}
	}

	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	if !n.IsRead {
		s.invalidateUnread(ctx, n.Recipient.ID)
	}
	s.manager.NotifyAsync(common.EventFor(common.EventDeleted, n, s.now()))
	return n, nil
}

// ReleaseDue runs one schedule-release pass and returns how many records
// were handed to the dispatcher.
func (s *NotificationService) ReleaseDue(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.repo.DueScheduled(ctx, now, s.cfg.ReleaseBatchSize)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, n := range due {
		s.manager.NotifyAsync(common.EventFor(common.EventDue, n, now))

		if err := s.repo.MarkDispatched(ctx, n.ID, now); err != nil {
			zlog.Warn("failed to mark notification dispatched",
				zap.String("notification_id", n.ID),
				zap.Error(err))
			continue
		}
		released++
	}
	return released, nil
}

// PurgeExpired runs one expiry sweep.
func (s *NotificationService) PurgeExpired(ctx context.Context) (int64, error) {
	purged, err := s.repo.PurgeExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if s.metrics != nil && purged > 0 {
		s.metrics.ExpiredPurged.Add(float64(purged))
	}
	return purged, nil
}

func (s *NotificationService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *NotificationService) invalidateUnread(ctx context.Context, recipientID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, recipientID); err != nil {
		zlog.Warn("unread cache invalidation failed", zap.String("recipient_id", recipientID), zap.Error(err))
	}
}

func (s *NotificationService) runEvery(interval time.Duration, fn func(context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				fn(s.ctx)
			case <-s.ctx.Done():
				return
			}
		}
	}()
}

func (s *NotificationService) processScheduledNotifications(ctx context.Context) {
	released, err := s.ReleaseDue(ctx)
	if err != nil {
		zlog.Error("failed to release scheduled notifications", zap.Error(err))
		return
	}
	if released > 0 {
		zlog.Info("released scheduled notifications", zap.Int("count", released))
	}
}

func (s *NotificationService) sweepExpired(ctx context.Context) {
	purged, err := s.PurgeExpired(ctx)
	if err != nil {
		zlog.Error("failed to purge expired notifications", zap.Error(err))
		return
	}
	if purged > 0 {
		zlog.Info("purged expired notifications", zap.Int64("count", purged))
	}
}

// Shutdown stops the background loops, then drains the observer queue.
func (s *NotificationService) Shutdown() {
	s.shutdownOnce.Do(func() {
		s.cancel()
		s.wg.Wait()
		s.manager.Shutdown()
		zlog.Info("notification service shutdown complete")
	})
}

var _ Lifecycle = (*NotificationService)(nil)
