package dbmysql

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"foodorder/internal/common"
)

// JSONMap stores the free-form payload in a JSON column.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported JSON column type %T", value)
	}
	return json.Unmarshal(b, m)
}

// Notification is the row layout of the notifications table. Delivery
// outcomes are flattened into one column triple per tracked channel.
type Notification struct {
	ID              string     `gorm:"primaryKey;size:36"`
	RecipientID     string     `gorm:"not null;size:64;index:idx_recipient_unread,priority:1"`
	RecipientRole   string     `gorm:"size:32"`
	Type            string     `gorm:"not null;size:50"`
	Category        string     `gorm:"not null;size:32"`
	Title           string     `gorm:"not null;size:255"`
	Message         string     `gorm:"not null;type:text"`
	Data            JSONMap    `gorm:"type:json"`
	ChannelPush     bool       `gorm:"not null"`
	ChannelSMS      bool       `gorm:"column:channel_sms;not null"`
	ChannelEmail    bool       `gorm:"not null"`
	ChannelInApp    bool       `gorm:"not null"`
	PushStatus      string     `gorm:"size:32"`
	PushSentAt      *time.Time
	PushError       string     `gorm:"size:512"`
	SMSStatus       string     `gorm:"column:sms_status;size:32"`
	SMSSentAt       *time.Time `gorm:"column:sms_sent_at"`
	SMSError        string     `gorm:"column:sms_error;size:512"`
	EmailStatus     string     `gorm:"size:32"`
	EmailSentAt     *time.Time
	EmailError      string     `gorm:"size:512"`
	Priority        string     `gorm:"not null;size:16;default:'medium'"`
	IsRead          bool       `gorm:"not null;default:false;index:idx_recipient_unread,priority:2"`
	ReadAt          *time.Time
	RelatedOrder    string     `gorm:"size:64"`
	RelatedMenuItem string     `gorm:"size:64"`
	ActionType      string     `gorm:"size:32"`
	ActionURL       string     `gorm:"column:action_url;size:512"`
	ActionLabel     string     `gorm:"size:128"`
	ExpiresAt       *time.Time `gorm:"index"`
	ScheduledFor    *time.Time `gorm:"index:idx_scheduled_dispatch,priority:1"`
	DispatchedAt    *time.Time `gorm:"index:idx_scheduled_dispatch,priority:2"`
	CreatedAt       time.Time  `gorm:"not null;index:idx_recipient_unread,priority:3"`
	UpdatedAt       time.Time  `gorm:"not null"`
}

func (Notification) TableName() string {
	return "notifications"
}

// statusColumns maps a tracked channel to its status, sentAt and error columns.
func statusColumns(ch common.Channel) (status, sentAt, errCol string, ok bool) {
	switch ch {
	case common.ChannelPush:
		return "push_status", "push_sent_at", "push_error", true
	case common.ChannelSMS:
		return "sms_status", "sms_sent_at", "sms_error", true
	case common.ChannelEmail:
		return "email_status", "email_sent_at", "email_error", true
	}
	return "", "", "", false
}

func fromDomain(n *common.Notification) *Notification {
	row := &Notification{
		ID:              n.ID,
		RecipientID:     n.Recipient.ID,
		RecipientRole:   n.Recipient.Role,
		Type:            string(n.Type),
		Category:        string(n.Category),
		Title:           n.Title,
		Message:         n.Message,
		Data:            JSONMap(n.Data),
		ChannelPush:     n.Channels.Push,
		ChannelSMS:      n.Channels.SMS,
		ChannelEmail:    n.Channels.Email,
		ChannelInApp:    n.Channels.InApp,
		PushStatus:      string(n.DeliveryStatus.Push.Status),
		PushSentAt:      n.DeliveryStatus.Push.SentAt,
		PushError:       n.DeliveryStatus.Push.Error,
		SMSStatus:       string(n.DeliveryStatus.SMS.Status),
		SMSSentAt:       n.DeliveryStatus.SMS.SentAt,
		SMSError:        n.DeliveryStatus.SMS.Error,
		EmailStatus:     string(n.DeliveryStatus.Email.Status),
		EmailSentAt:     n.DeliveryStatus.Email.SentAt,
		EmailError:      n.DeliveryStatus.Email.Error,
		Priority:        string(n.Priority),
		IsRead:          n.IsRead,
		ReadAt:          n.ReadAt,
		RelatedOrder:    n.RelatedOrder,
		RelatedMenuItem: n.RelatedMenuItem,
		ExpiresAt:       n.ExpiresAt,
		ScheduledFor:    n.ScheduledFor,
		DispatchedAt:    n.DispatchedAt,
		CreatedAt:       n.CreatedAt,
		UpdatedAt:       n.UpdatedAt,
	}
	if n.Action != nil {
		row.ActionType = n.Action.Type
		row.ActionURL = n.Action.URL
		row.ActionLabel = n.Action.Label
	}
	return row
}

func (r *Notification) toDomain() *common.Notification {
	n := &common.Notification{
		ID:        r.ID,
		Recipient: common.Recipient{ID: r.RecipientID, Role: r.RecipientRole},
		Type:      common.NotificationType(r.Type),
		Category:  common.Category(r.Category),
		Title:     r.Title,
		Message:   r.Message,
		Data:      common.Payload(r.Data),
		Channels: common.Channels{
			Push:  r.ChannelPush,
			SMS:   r.ChannelSMS,
			Email: r.ChannelEmail,
			InApp: r.ChannelInApp,
		},
		DeliveryStatus: common.DeliveryStatus{
			Push:  common.ChannelStatus{Status: common.DeliveryState(r.PushStatus), SentAt: r.PushSentAt, Error: r.PushError},
			SMS:   common.ChannelStatus{Status: common.DeliveryState(r.SMSStatus), SentAt: r.SMSSentAt, Error: r.SMSError},
			Email: common.ChannelStatus{Status: common.DeliveryState(r.EmailStatus), SentAt: r.EmailSentAt, Error: r.EmailError},
		},
		Priority:        common.Priority(r.Priority),
		IsRead:          r.IsRead,
		ReadAt:          r.ReadAt,
		RelatedOrder:    r.RelatedOrder,
		RelatedMenuItem: r.RelatedMenuItem,
		ExpiresAt:       r.ExpiresAt,
		ScheduledFor:    r.ScheduledFor,
		DispatchedAt:    r.DispatchedAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.ActionType != "" || r.ActionURL != "" || r.ActionLabel != "" {
		n.Action = &common.Action{Type: r.ActionType, URL: r.ActionURL, Label: r.ActionLabel}
	}
	return n
}
