package dbmongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodorder/internal/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const DefaultNotificationsCollection = "notifications"

// NotificationStore keeps one document per notification. Per-channel
// delivery outcomes live under deliveryStatus.<channel> so each update is a
// single-document $set.
type NotificationStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewNotificationStore(mc *MongoClient, collection string) *NotificationStore {
	if collection == "" {
		collection = DefaultNotificationsCollection
	}
	return newNotificationStore(mc.Database.Collection(collection))
}

func newNotificationStore(coll *mongo.Collection) *NotificationStore {
	return &NotificationStore{coll: coll, now: time.Now}
}

// EnsureIndexes creates the unread lookup index, the TTL index on expiresAt
// and the schedule index. It is safe to call on every start.
func (s *NotificationStore) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "recipient.id", Value: 1},
				{Key: "isRead", Value: 1},
				{Key: "createdAt", Value: -1},
			},
			Options: options.Index().SetName("recipient_unread_created"),
		},
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetName("expires_ttl").SetExpireAfterSeconds(0),
		},
		{
			Keys: bson.D{
				{Key: "scheduledFor", Value: 1},
				{Key: "dispatchedAt", Value: 1},
			},
			Options: options.Index().SetName("scheduled_dispatch").SetSparse(true),
		},
	}

	if _, err := s.coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("failed to create notification indexes: %w", err)
	}
	return nil
}

// live matches documents the TTL monitor has not removed yet but whose
// expiry already passed, so reads never see them.
func (s *NotificationStore) live(filter bson.M) bson.M {
	filter["$or"] = bson.A{
		bson.M{"expiresAt": nil},
		bson.M{"expiresAt": bson.M{"$gt": s.now()}},
	}
	return filter
}

func (s *NotificationStore) Create(ctx context.Context, n *common.Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}

	if _, err := s.coll.InsertOne(ctx, n); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &common.ValidationError{Field: "id", Reason: "already exists"}
		}
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (s *NotificationStore) ByID(ctx context.Context, id string) (*common.Notification, error) {
	var n common.Notification
	err := s.coll.FindOne(ctx, s.live(bson.M{"_id": id})).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.NewNotFound(id)
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return &n, nil
}

func (s *NotificationStore) UnreadByRecipient(ctx context.Context, recipientID string, limit int) ([]*common.Notification, error) {
	filter := s.live(bson.M{"recipient.id": recipientID, "isRead": false})
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list unread notifications: %w", err)
	}

	notifications := make([]*common.Notification, 0)
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode unread notifications: %w", err)
	}
	return notifications, nil
}

func (s *NotificationStore) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	count, err := s.coll.CountDocuments(ctx, s.live(bson.M{"recipient.id": recipientID, "isRead": false}))
	if err != nil {
		return 0, fmt.Errorf("failed to get unread count: %w", err)
	}
	return count, nil
}

func (s *NotificationStore) NextUnreadExpiry(ctx context.Context, recipientID string) (*time.Time, error) {
	filter := s.live(bson.M{
		"recipient.id": recipientID,
		"isRead":       false,
		"expiresAt":    bson.M{"$ne": nil},
	})
	opts := options.FindOne().
		SetSort(bson.D{{Key: "expiresAt", Value: 1}}).
		SetProjection(bson.M{"expiresAt": 1})

	var doc struct {
		ExpiresAt *time.Time `bson:"expiresAt"`
	}
	if err := s.coll.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get next unread expiry: %w", err)
	}
	return doc.ExpiresAt, nil
}

// MarkAsRead overwrites readAt on every call and returns the updated record.
func (s *NotificationStore) MarkAsRead(ctx context.Context, id string, at time.Time) (*common.Notification, error) {
	update := bson.M{"$set": bson.M{
		"isRead":    true,
		"readAt":    at,
		"updatedAt": at,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var n common.Notification
	err := s.coll.FindOneAndUpdate(ctx, s.live(bson.M{"_id": id}), update, opts).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.NewNotFound(id)
		}
		return nil, fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return &n, nil
}

// UpdateDeliveryStatus writes status and sentAt (and error, when given) of
// one channel in a single $set.
func (s *NotificationStore) UpdateDeliveryStatus(
	ctx context.Context,
	id string,
	channel common.Channel,
	status common.DeliveryState,
	errMsg string,
	at time.Time,
) error {
	if !channel.IsTracked() {
		return nil
	}

	prefix := "deliveryStatus." + channel.String()
	set := bson.M{
		prefix + ".status": status,
		prefix + ".sentAt": at,
		"updatedAt":        at,
	}
	if errMsg != "" {
		set[prefix+".error"] = errMsg
	}

	result, err := s.coll.UpdateOne(ctx, s.live(bson.M{"_id": id}), bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update delivery status: %w", err)
	}
	if result.MatchedCount == 0 {
		return common.NewNotFound(id)
	}
	return nil
}

func (s *NotificationStore) Delete(ctx context.Context, id string) (*common.Notification, error) {
	var n common.Notification
	err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.NewNotFound(id)
		}
		return nil, fmt.Errorf("failed to delete notification: %w", err)
	}
	return &n, nil
}

func (s *NotificationStore) DueScheduled(ctx context.Context, before time.Time, limit int) ([]*common.Notification, error) {
	filter := s.live(bson.M{
		"scheduledFor": bson.M{"$lte": before},
		"dispatchedAt": nil,
	})
	opts := options.Find().SetSort(bson.D{{Key: "scheduledFor", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled notifications: %w", err)
	}

	notifications := make([]*common.Notification, 0)
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode scheduled notifications: %w", err)
	}
	return notifications, nil
}

func (s *NotificationStore) MarkDispatched(ctx context.Context, id string, at time.Time) error {
	result, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"dispatchedAt": at, "updatedAt": at}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification dispatched: %w", err)
	}
	if result.MatchedCount == 0 {
		return common.NewNotFound(id)
	}
	return nil
}

// PurgeExpired removes what the TTL monitor has not reached yet. The TTL
// index does the same work on its own roughly once a minute.
func (s *NotificationStore) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.coll.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lte": before}})
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired notifications: %w", err)
	}
	return result.DeletedCount, nil
}

func (s *NotificationStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, readpref.Primary())
}

var _ common.NotificationRepository = (*NotificationStore)(nil)
