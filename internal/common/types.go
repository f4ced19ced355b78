package common

import (
	"time"
)

// NotificationType names the domain event that produced a notification.
type NotificationType string

const (
	OrderUpdateType        NotificationType = "order_update"
	PromotionType          NotificationType = "promotion"
	DeliveryAssignmentType NotificationType = "delivery_assignment"
	PaymentReceivedType    NotificationType = "payment_received"
	OrderCancelledType     NotificationType = "order_cancelled"
	DeliveryCompletedType  NotificationType = "delivery_completed"
	RatingRequestType      NotificationType = "rating_request"
	LoyaltyPointsType      NotificationType = "loyalty_points"
	NewOrderType           NotificationType = "new_order"
)

var notificationTypes = map[NotificationType]struct{}{
	OrderUpdateType:        {},
	PromotionType:          {},
	DeliveryAssignmentType: {},
	PaymentReceivedType:    {},
	OrderCancelledType:     {},
	DeliveryCompletedType:  {},
	RatingRequestType:      {},
	LoyaltyPointsType:      {},
	NewOrderType:           {},
}

func (t NotificationType) IsValid() bool {
	_, ok := notificationTypes[t]
	return ok
}

type Category string

const (
	CategoryTransactional Category = "transactional"
	CategoryPromotional   Category = "promotional"
	CategoryInformational Category = "informational"
)

func (c Category) IsValid() bool {
	return c == CategoryTransactional || c == CategoryPromotional || c == CategoryInformational
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Channel is one delivery medium.
type Channel string

const (
	ChannelPush  Channel = "push"
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
	ChannelInApp Channel = "inApp"
)

// TrackedChannels are the channels that carry a delivery status entry.
// In-app has none: being stored is the delivery.
var TrackedChannels = []Channel{ChannelPush, ChannelSMS, ChannelEmail}

func (c Channel) IsTracked() bool {
	return c == ChannelPush || c == ChannelSMS || c == ChannelEmail
}

func (c Channel) String() string {
	return string(c)
}

// DeliveryState is a provider-reported outcome. Any non-empty value is
// accepted; the constants are the ones the dispatcher sends today.
type DeliveryState string

const (
	DeliveryQueued    DeliveryState = "queued"
	DeliverySent      DeliveryState = "sent"
	DeliveryDelivered DeliveryState = "delivered"
	DeliveryFailed    DeliveryState = "failed"
	DeliveryBounced   DeliveryState = "bounced"
)

// Payload is producer-defined structured data. The core never inspects it.
type Payload map[string]interface{}

type Recipient struct {
	ID   string `bson:"id" json:"id"`
	Role string `bson:"role,omitempty" json:"role,omitempty"`
}

// Channels says which channels should be attempted.
type Channels struct {
	Push  bool `bson:"push" json:"push"`
	SMS   bool `bson:"sms" json:"sms"`
	Email bool `bson:"email" json:"email"`
	InApp bool `bson:"inApp" json:"inApp"`
}

func DefaultChannels() Channels {
	return Channels{Push: true, InApp: true}
}

func (c Channels) Enabled(ch Channel) bool {
	switch ch {
	case ChannelPush:
		return c.Push
	case ChannelSMS:
		return c.SMS
	case ChannelEmail:
		return c.Email
	case ChannelInApp:
		return c.InApp
	}
	return false
}

// ChannelStatus is the latest recorded attempt on one channel. Zero value
// means no attempt has been recorded.
type ChannelStatus struct {
	Status DeliveryState `bson:"status,omitempty" json:"status,omitempty"`
	SentAt *time.Time    `bson:"sentAt,omitempty" json:"sentAt,omitempty"`
	Error  string        `bson:"error,omitempty" json:"error,omitempty"`
}

func (s ChannelStatus) Attempted() bool {
	return s.Status != "" || s.SentAt != nil
}

type DeliveryStatus struct {
	Push  ChannelStatus `bson:"push" json:"push"`
	SMS   ChannelStatus `bson:"sms" json:"sms"`
	Email ChannelStatus `bson:"email" json:"email"`
}

// For returns the status entry of a tracked channel.
func (d DeliveryStatus) For(ch Channel) (ChannelStatus, bool) {
	switch ch {
	case ChannelPush:
		return d.Push, true
	case ChannelSMS:
		return d.SMS, true
	case ChannelEmail:
		return d.Email, true
	}
	return ChannelStatus{}, false
}

// Set overwrites the entry of a tracked channel; other channels are ignored.
func (d *DeliveryStatus) Set(ch Channel, s ChannelStatus) {
	switch ch {
	case ChannelPush:
		d.Push = s
	case ChannelSMS:
		d.SMS = s
	case ChannelEmail:
		d.Email = s
	}
}

type Action struct {
	Type  string `bson:"type,omitempty" json:"type,omitempty"`
	URL   string `bson:"url,omitempty" json:"url,omitempty"`
	Label string `bson:"label,omitempty" json:"label,omitempty"`
}

type Notification struct {
	ID              string           `bson:"_id" json:"id"`
	Recipient       Recipient        `bson:"recipient" json:"recipient"`
	Type            NotificationType `bson:"type" json:"type"`
	Category        Category         `bson:"category" json:"category"`
	Title           string           `bson:"title" json:"title"`
	Message         string           `bson:"message" json:"message"`
	Data            Payload          `bson:"data,omitempty" json:"data,omitempty"`
	Channels        Channels         `bson:"channels" json:"channels"`
	DeliveryStatus  DeliveryStatus   `bson:"deliveryStatus" json:"deliveryStatus"`
	Priority        Priority         `bson:"priority" json:"priority"`
	IsRead          bool             `bson:"isRead" json:"isRead"`
	ReadAt          *time.Time       `bson:"readAt,omitempty" json:"readAt,omitempty"`
	RelatedOrder    string           `bson:"relatedOrder,omitempty" json:"relatedOrder,omitempty"`
	RelatedMenuItem string           `bson:"relatedMenuItem,omitempty" json:"relatedMenuItem,omitempty"`
	Action          *Action          `bson:"action,omitempty" json:"action,omitempty"`
	ExpiresAt       *time.Time       `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
	ScheduledFor    *time.Time       `bson:"scheduledFor,omitempty" json:"scheduledFor,omitempty"`
	DispatchedAt    *time.Time       `bson:"dispatchedAt,omitempty" json:"dispatchedAt,omitempty"`
	CreatedAt       time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time        `bson:"updatedAt" json:"updatedAt"`
}

// IsDeferred reports whether delivery is scheduled for later than now.
func (n *Notification) IsDeferred(now time.Time) bool {
	return n.ScheduledFor != nil && n.ScheduledFor.After(now)
}

// IsExpired reports whether the record is past its expiry and only waits
// for the sweep.
func (n *Notification) IsExpired(now time.Time) bool {
	return n.ExpiresAt != nil && !n.ExpiresAt.After(now)
}

// NotificationDraft is what a dispatcher submits. Zero-valued optional
// fields pick up the defaults when the draft is built.
type NotificationDraft struct {
	Recipient       Recipient        `json:"recipient"`
	Type            NotificationType `json:"type"`
	Category        Category         `json:"category,omitempty"`
	Title           string           `json:"title"`
	Message         string           `json:"message"`
	Data            Payload          `json:"data,omitempty"`
	Channels        *Channels        `json:"channels,omitempty"`
	Priority        Priority         `json:"priority,omitempty"`
	RelatedOrder    string           `json:"relatedOrder,omitempty"`
	RelatedMenuItem string           `json:"relatedMenuItem,omitempty"`
	Action          *Action          `json:"action,omitempty"`
	ExpiresAt       *time.Time       `json:"expiresAt,omitempty"`
	ScheduledFor    *time.Time       `json:"scheduledFor,omitempty"`
}

// Build turns the draft into an unread record with defaults applied.
func (d NotificationDraft) Build(id string, now time.Time) *Notification {
	channels := DefaultChannels()
	if d.Channels != nil {
		channels = *d.Channels
	}
	category := d.Category
	if category == "" {
		category = CategoryTransactional
	}
	priority := d.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	return &Notification{
		ID:              id,
		Recipient:       d.Recipient,
		Type:            d.Type,
		Category:        category,
		Title:           d.Title,
		Message:         d.Message,
		Data:            d.Data,
		Channels:        channels,
		Priority:        priority,
		RelatedOrder:    d.RelatedOrder,
		RelatedMenuItem: d.RelatedMenuItem,
		Action:          d.Action,
		ExpiresAt:       d.ExpiresAt,
		ScheduledFor:    d.ScheduledFor,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

type EventKind string

const (
	EventCreated         EventKind = "created"
	EventDue             EventKind = "due"
	EventRead            EventKind = "read"
	EventDeliveryOutcome EventKind = "delivery_outcome"
	EventDeleted         EventKind = "deleted"
)

// NotificationEvent is a lifecycle transition fanned out to observers.
type NotificationEvent struct {
	Kind           EventKind        `json:"event"`
	NotificationID string           `json:"notificationId"`
	RecipientID    string           `json:"recipientId,omitempty"`
	Type           NotificationType `json:"type,omitempty"`
	Category       Category         `json:"category,omitempty"`
	Priority       Priority         `json:"priority,omitempty"`
	Channels       *Channels        `json:"channels,omitempty"`
	Channel        Channel          `json:"channel,omitempty"`
	Status         DeliveryState    `json:"status,omitempty"`
	Error          string           `json:"error,omitempty"`
	Deferred       bool             `json:"deferred,omitempty"`
	OccurredAt     time.Time        `json:"occurredAt"`
}

// EventFor builds a lifecycle event carrying the record's routing fields.
func EventFor(kind EventKind, n *Notification, at time.Time) NotificationEvent {
	channels := n.Channels
	return NotificationEvent{
		Kind:           kind,
		NotificationID: n.ID,
		RecipientID:    n.Recipient.ID,
		Type:           n.Type,
		Category:       n.Category,
		Priority:       n.Priority,
		Channels:       &channels,
		Deferred:       n.IsDeferred(at),
		OccurredAt:     at,
	}
}
