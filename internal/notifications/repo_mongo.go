package notifications

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const collectionName = "notifications"

// MongoRepo implements Repo on a MongoDB collection.
type MongoRepo struct {
	coll *mongo.Collection
}

// NewMongoRepo constructs a MongoRepo bound to the notifications collection.
func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{coll: db.Collection(collectionName)}
}

// EnsureIndexes creates the indexes notification queries rely on.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{
			Keys:    bson.D{{Key: "notification_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "read", Value: 1}}},
	})
	return err
}

// Create inserts a new notification.
func (r *MongoRepo) Create(ctx context.Context, n Notification) error {
	_, err := r.coll.InsertOne(ctx, n)
	return err
}

// ListByUser returns notifications newest first, honoring the filter.
func (r *MongoRepo) ListByUser(ctx context.Context, userID string, filter ListFilter) ([]Notification, error) {
	query := bson.M{"user_id": userID}
	if filter.UnreadOnly {
		query["read"] = false
	}
	if filter.Since != nil {
		query["created_at"] = bson.M{"$gt": *filter.Since}
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter.Limit > 0 {
		findOpts = findOpts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.coll.Find(ctx, query, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []Notification{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountUnread returns the number of unread notifications for a user.
func (r *MongoRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
}

// MarkRead toggles the read flag on a single owned notification.
func (r *MongoRepo) MarkRead(ctx context.Context, userID, notificationID string, read bool) (int64, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"user_id": userID, "notification_id": notificationID},
		bson.M{"$set": bson.M{"read": read, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// MarkAllRead marks every unread notification of a user as read.
func (r *MongoRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"user_id": userID, "read": false},
		bson.M{"$set": bson.M{"read": true, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// Delete removes a single owned notification.
func (r *MongoRepo) Delete(ctx context.Context, userID, notificationID string) (int64, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"user_id": userID, "notification_id": notificationID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteAll removes every notification of a user.
func (r *MongoRepo) DeleteAll(ctx context.Context, userID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteOlderThan removes notifications created strictly before the cutoff.
func (r *MongoRepo) DeleteOlderThan(ctx context.Context, userID string, cutoff time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{
		"user_id":    userID,
		"created_at": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

var _ Repo = (*MongoRepo)(nil)
