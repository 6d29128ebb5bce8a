package documents

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const collectionName = "documents"

// MongoRepo implements Repo on the MongoDB documents collection. This is the
// primary store; new documents are written here.
type MongoRepo struct {
	coll *mongo.Collection
}

// NewMongoRepo constructs a MongoRepo bound to the documents collection.
func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{coll: db.Collection(collectionName)}
}

// EnsureIndexes creates the indexes document queries rely on.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{
			Keys:    bson.D{{Key: "document_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}

// Create inserts a new document.
func (r *MongoRepo) Create(ctx context.Context, doc Document) error {
	_, err := r.coll.InsertOne(ctx, doc)
	return err
}

// GetByID fetches a document by ID for a user.
func (r *MongoRepo) GetByID(ctx context.Context, userID, documentID string) (Document, error) {
	var doc Document
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID, "document_id": documentID}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListByUser lists documents newest first, honoring limit/offset.
func (r *MongoRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []Document{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TransitionStatus moves a document between lifecycle states.
func (r *MongoRepo) TransitionStatus(ctx context.Context, userID, documentID string, from, to Status) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"user_id": userID, "document_id": documentID, "processing_status": from},
		bson.M{"$set": bson.M{"processing_status": to, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// SetResult records the processing outcome alongside the processed state.
func (r *MongoRepo) SetResult(ctx context.Context, userID, documentID, extractedKey, summary string, citations []Citation) error {
	if citations == nil {
		citations = []Citation{}
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"user_id": userID, "document_id": documentID},
		bson.M{"$set": bson.M{
			"processing_status":  StatusProcessed,
			"extracted_text_key": extractedKey,
			"summary":            summary,
			"citations":          citations,
			"processing_error":   "",
			"updated_at":         time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetFailure marks a document failed with a reason.
func (r *MongoRepo) SetFailure(ctx context.Context, userID, documentID, reason string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"user_id": userID, "document_id": documentID},
		bson.M{"$set": bson.M{
			"processing_status": StatusFailed,
			"processing_error":  reason,
			"updated_at":        time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a document owned by a user.
func (r *MongoRepo) Delete(ctx context.Context, userID, documentID string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"user_id": userID, "document_id": documentID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// DeleteByUser removes every document of a user.
func (r *MongoRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ClaimGuest reassigns guest-owned documents to an authenticated user.
func (r *MongoRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"user_id": guestUserID},
		bson.M{"$set": bson.M{"user_id": authedUserID, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

var _ Repo = (*MongoRepo)(nil)
