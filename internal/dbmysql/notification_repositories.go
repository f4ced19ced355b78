package dbmysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodorder/internal/common"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const liveCondition = "(expires_at IS NULL OR expires_at > ?)"

type notificationRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewNotificationRepository(db *gorm.DB) common.NotificationRepository {
	return &notificationRepository{
		db:  db,
		now: time.Now,
	}
}

func (r *notificationRepository) live(tx *gorm.DB) *gorm.DB {
	return tx.Where(liveCondition, r.now())
}

func (r *notificationRepository) Create(ctx context.Context, notification *common.Notification) error {
	if err := notification.Validate(); err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(fromDomain(notification)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &common.ValidationError{Field: "id", Reason: "already exists"}
		}
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) ByID(ctx context.Context, id string) (*common.Notification, error) {
	var row Notification

	if err := r.live(r.db.WithContext(ctx)).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewNotFound(id)
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	return row.toDomain(), nil
}

func (r *notificationRepository) UnreadByRecipient(
	ctx context.Context,
	recipientID string,
	limit int,
) ([]*common.Notification, error) {
	var rows []*Notification

	query := r.live(r.db.WithContext(ctx)).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Order("created_at DESC").
		Order("id DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list unread notifications: %w", err)
	}

	result := make([]*common.Notification, len(rows))
	for i, row := range rows {
		result[i] = row.toDomain()
	}
	return result, nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	var count int64

	err := r.live(r.db.WithContext(ctx)).
		Model(&Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error

	if err != nil {
		return 0, fmt.Errorf("failed to get unread count: %w", err)
	}

	return count, nil
}

type unreadExpiry struct {
	Next *time.Time
}

func (r *notificationRepository) NextUnreadExpiry(ctx context.Context, recipientID string) (*time.Time, error) {
	var result unreadExpiry

	err := r.live(r.db.WithContext(ctx)).
		Model(&Notification{}).
		Select("MIN(expires_at) AS next").
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Find(&result).Error

	if err != nil {
		return nil, fmt.Errorf("failed to get next unread expiry: %w", err)
	}

	return result.Next, nil
}

// lockLive loads the row FOR UPDATE inside tx. MySQL reports zero affected
// rows when an UPDATE writes identical values, so existence is decided here.
func (r *notificationRepository) lockLive(tx *gorm.DB, id string) (*Notification, error) {
	var row Notification
	err := r.live(tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewNotFound(id)
		}
		return nil, err
	}
	return &row, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id string, at time.Time) (*common.Notification, error) {
	var updated *Notification

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := r.lockLive(tx, id)
		if err != nil {
			return err
		}

		if err := tx.Model(&Notification{}).Where("id = ?", id).Updates(map[string]interface{}{
			"is_read":    true,
			"read_at":    at,
			"updated_at": at,
		}).Error; err != nil {
			return err
		}

		row.IsRead = true
		row.ReadAt = &at
		row.UpdatedAt = at
		updated = row
		return nil
	})
	if err != nil {
		if common.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to mark notification as read: %w", err)
	}

	return updated.toDomain(), nil
}

func (r *notificationRepository) UpdateDeliveryStatus(
	ctx context.Context,
	id string,
	channel common.Channel,
	status common.DeliveryState,
	errMsg string,
	at time.Time,
) error {
	statusCol, sentAtCol, errCol, ok := statusColumns(channel)
	if !ok {
		return nil
	}

	updates := map[string]interface{}{
		statusCol:    string(status),
		sentAtCol:    at,
		"updated_at": at,
	}
	if errMsg != "" {
		updates[errCol] = errMsg
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.lockLive(tx, id); err != nil {
			return err
		}
		return tx.Model(&Notification{}).Where("id = ?", id).Updates(updates).Error
	})
	if err != nil {
		if common.IsNotFound(err) {
			return err
		}
		return fmt.Errorf("failed to update delivery status: %w", err)
	}
	return nil
}

func (r *notificationRepository) Delete(ctx context.Context, id string) (*common.Notification, error) {
	var deleted *Notification

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row Notification
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.NewNotFound(id)
			}
			return err
		}
		if err := tx.Delete(&Notification{}, "id = ?", id).Error; err != nil {
			return err
		}
		deleted = &row
		return nil
	})
	if err != nil {
		if common.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to delete notification: %w", err)
	}

	return deleted.toDomain(), nil
}

func (r *notificationRepository) DueScheduled(
	ctx context.Context,
	before time.Time,
	limit int,
) ([]*common.Notification, error) {
	var rows []*Notification

	query := r.live(r.db.WithContext(ctx)).
		Where("scheduled_for IS NOT NULL AND scheduled_for <= ? AND dispatched_at IS NULL", before).
		Order("scheduled_for ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get scheduled notifications: %w", err)
	}

	result := make([]*common.Notification, len(rows))
	for i, row := range rows {
		result[i] = row.toDomain()
	}
	return result, nil
}

func (r *notificationRepository) MarkDispatched(ctx context.Context, id string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"dispatched_at": at,
			"updated_at":    at,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark notification dispatched: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return common.NewNotFound(id)
	}

	return nil
}

// PurgeExpired is the MySQL stand-in for a TTL index; the expiry sweeper
// calls it on an interval.
func (r *notificationRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", before).
		Delete(&Notification{})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge expired notifications: %w", result.Error)
	}

	return result.RowsAffected, nil
}

func (r *notificationRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("sql.DB error: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
