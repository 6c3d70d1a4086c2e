package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationsRepo interface {
	InsertNotifications(ctx context.Context, notifications []*Notification) error
	ListNotifications(ctx context.Context, recipient uuid.UUID, offset, limit int) ([]*Notification, int, error)
	MarkNotificationRead(ctx context.Context, id primitive.ObjectID, recipient uuid.UUID) (*Notification, error)
	MarkAllNotificationsRead(ctx context.Context, recipient uuid.UUID) (int64, error)
	EnsureNotificationIndexes(ctx context.Context) error
}

func (mdb *MongodbRepo) EnsureNotificationIndexes(ctx context.Context) error {
	col, err := mdb.GetCollection(ctx, DBName, NotificationsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	_, err = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "recipient_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("recipient_created_at_idx"),
		},
	})
	if err != nil {
		return fmt.Errorf("error creating notification indexes: %v", err)
	}
	return nil
}

func (mdb *MongodbRepo) InsertNotifications(ctx context.Context, notifications []*Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	col, err := mdb.GetCollection(ctx, DBName, NotificationsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	docs := make([]interface{}, 0, len(notifications))
	for _, n := range notifications {
		if n.ID.IsZero() {
			n.ID = primitive.NewObjectID()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = time.Now()
		}
		docs = append(docs, n)
	}

	if _, err := col.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("error inserting notifications: %v", err)
	}
	return nil
}

func (mdb *MongodbRepo) ListNotifications(ctx context.Context, recipient uuid.UUID, offset, limit int) ([]*Notification, int, error) {
	col, err := mdb.GetCollection(ctx, DBName, NotificationsColName)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{"recipient_id": recipient}

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting notifications: %v", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error finding notifications: %v", err)
	}
	defer cursor.Close(ctx)

	var notifications []*Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, 0, fmt.Errorf("error decoding notifications: %v", err)
	}

	return notifications, int(total), nil
}

// MarkNotificationRead flips a single notification to read, scoped to the
// recipient so a user cannot touch someone else's entry. Returns nil when no
// matching notification exists.
func (mdb *MongodbRepo) MarkNotificationRead(ctx context.Context, id primitive.ObjectID, recipient uuid.UUID) (*Notification, error) {
	col, err := mdb.GetCollection(ctx, DBName, NotificationsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{"_id": id, "recipient_id": recipient}
	update := bson.M{"$set": bson.M{"read_at": time.Now()}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var result Notification
	err = col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&result)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error marking notification read: %v", err)
	}
	return &result, nil
}

func (mdb *MongodbRepo) MarkAllNotificationsRead(ctx context.Context, recipient uuid.UUID) (int64, error) {
	col, err := mdb.GetCollection(ctx, DBName, NotificationsColName)
	if err != nil {
		return 0, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{
		"recipient_id": recipient,
		"read_at":      bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{"read_at": time.Now()}}

	res, err := col.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("error marking notifications read: %v", err)
	}
	return res.ModifiedCount, nil
}
