package common

import (
	"context"
	"time"
)

type Observer interface {
	Update(event NotificationEvent) error
	Name() string
}

type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	Notify(event NotificationEvent)
	NotifyAsync(event NotificationEvent)
}

// NotificationRepository is the persistence boundary. Every mutation is
// atomic for a single record; expired records that have not been swept yet
// are invisible to reads and by-id mutations.
type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error
	ByID(ctx context.Context, id string) (*Notification, error)
	UnreadByRecipient(ctx context.Context, recipientID string, limit int) ([]*Notification, error)
	UnreadCount(ctx context.Context, recipientID string) (int64, error)
	// NextUnreadExpiry returns the earliest expiresAt among the recipient's
	// live unread records, or nil when none of them expire.
	NextUnreadExpiry(ctx context.Context, recipientID string) (*time.Time, error)
	MarkAsRead(ctx context.Context, id string, at time.Time) (*Notification, error)
	UpdateDeliveryStatus(ctx context.Context, id string, channel Channel, status DeliveryState, errMsg string, at time.Time) error
	Delete(ctx context.Context, id string) (*Notification, error)
	DueScheduled(ctx context.Context, before time.Time, limit int) ([]*Notification, error)
	MarkDispatched(ctx context.Context, id string, at time.Time) error
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
	Ping(ctx context.Context) error
}

// UnreadCounter caches per-recipient unread counts. A positive maxAge caps
// the entry's lifetime below the counter's own TTL.
type UnreadCounter interface {
	Get(ctx context.Context, recipientID string) (int64, bool, error)
	Set(ctx context.Context, recipientID string, count int64, maxAge time.Duration) error
	Invalidate(ctx context.Context, recipientID string) error
}

// EventPublisher hands lifecycle events to the external dispatcher.
type EventPublisher interface {
	Publish(ctx context.Context, event NotificationEvent) error
	Close() error
}
