package projects

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const collectionName = "projects"

// MongoRepo implements Repo on the projects collection.
type MongoRepo struct {
	coll *mongo.Collection
}

// NewMongoRepo constructs a MongoRepo.
func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{coll: db.Collection(collectionName)}
}

// EnsureIndexes creates the indexes project queries rely on.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}}},
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}

// Create inserts a new project.
func (r *MongoRepo) Create(ctx context.Context, p Project) error {
	_, err := r.coll.InsertOne(ctx, p)
	return err
}

// GetByID fetches a project owned by the user.
func (r *MongoRepo) GetByID(ctx context.Context, userID, projectID string) (Project, error) {
	var p Project
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID, "project_id": projectID}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return Project{}, ErrNotFound
		}
		return Project{}, err
	}
	return p, nil
}

// ListByUser returns projects most recently updated first.
func (r *MongoRepo) ListByUser(ctx context.Context, userID string, limit int) ([]Project, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []Project{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces an owned project.
func (r *MongoRepo) Update(ctx context.Context, p Project) (bool, error) {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"user_id": p.UserID, "project_id": p.ProjectID}, p)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// Delete removes an owned project.
func (r *MongoRepo) Delete(ctx context.Context, userID, projectID string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"user_id": userID, "project_id": projectID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// DeleteByUser removes every project of a user.
func (r *MongoRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

var _ Repo = (*MongoRepo)(nil)
