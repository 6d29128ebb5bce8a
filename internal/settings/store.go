package settings

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ErrNotFound indicates no saved settings for the user.
var ErrNotFound = errors.New("not found")

// Store persists per-user settings.
type Store interface {
	Get(ctx context.Context, userID string) (Settings, error)
	Put(ctx context.Context, s Settings) error
	Delete(ctx context.Context, userID string) error
}

const collectionName = "user_settings"

// MongoStore implements Store on the user_settings collection.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore constructs a MongoStore.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(collectionName)}
}

// Get returns the user's saved settings.
func (s *MongoStore) Get(ctx context.Context, userID string) (Settings, error) {
	var out Settings
	err := s.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&out)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return Settings{}, ErrNotFound
		}
		return Settings{}, err
	}
	return out, nil
}

// Put upserts the user's settings. Last write wins.
func (s *MongoStore) Put(ctx context.Context, in Settings) error {
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"user_id": in.UserID},
		in,
		options.Replace().SetUpsert(true),
	)
	return err
}

// Delete removes the user's settings.
func (s *MongoStore) Delete(ctx context.Context, userID string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"user_id": userID})
	return err
}

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Settings
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]Settings)}
}

// Get returns the user's saved settings.
func (s *MemoryStore) Get(ctx context.Context, userID string) (Settings, error) {
	if err := ctx.Err(); err != nil {
		return Settings{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out, ok := s.data[userID]
	if !ok {
		return Settings{}, ErrNotFound
	}
	return out, nil
}

// Put stores the user's settings. Last write wins.
func (s *MemoryStore) Put(ctx context.Context, in Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[in.UserID] = in
	return nil
}

// Delete removes the user's settings.
func (s *MemoryStore) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, userID)
	return nil
}

var (
	_ Store = (*MongoStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
