package chat

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	sessionsCollection = "chats"
	messagesCollection = "chat_messages"
)

// MongoRepo implements Repo on the chats and chat_messages collections.
type MongoRepo struct {
	sessions *mongo.Collection
	messages *mongo.Collection
}

// NewMongoRepo constructs a MongoRepo.
func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{
		sessions: db.Collection(sessionsCollection),
		messages: db.Collection(messagesCollection),
	}
}

// EnsureIndexes creates the indexes chat queries rely on.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	if _, err := r.sessions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}}},
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "document_id", Value: 1}}},
	}); err != nil {
		return err
	}
	_, err := r.messages.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "created_at", Value: 1}}},
	})
	return err
}

// CreateSession inserts a new session.
func (r *MongoRepo) CreateSession(ctx context.Context, s Session) error {
	_, err := r.sessions.InsertOne(ctx, s)
	return err
}

// GetSession fetches a session owned by the user.
func (r *MongoRepo) GetSession(ctx context.Context, userID, sessionID string) (Session, error) {
	var s Session
	err := r.sessions.FindOne(ctx, bson.M{"user_id": userID, "session_id": sessionID}).Decode(&s)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	return s, nil
}

// ListSessions returns sessions most recently active first.
func (r *MongoRepo) ListSessions(ctx context.Context, userID string, limit int) ([]Session, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.sessions.Find(ctx, bson.M{"user_id": userID}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []Session{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TouchSession bumps a session's updated_at.
func (r *MongoRepo) TouchSession(ctx context.Context, userID, sessionID string) error {
	_, err := r.sessions.UpdateOne(ctx,
		bson.M{"user_id": userID, "session_id": sessionID},
		bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}},
	)
	return err
}

// DeleteSession removes a session and its messages.
func (r *MongoRepo) DeleteSession(ctx context.Context, userID, sessionID string) (bool, error) {
	res, err := r.sessions.DeleteOne(ctx, bson.M{"user_id": userID, "session_id": sessionID})
	if err != nil {
		return false, err
	}
	if res.DeletedCount == 0 {
		return false, nil
	}
	_, err = r.messages.DeleteMany(ctx, bson.M{"session_id": sessionID})
	return true, err
}

// DeleteByDocument removes sessions bound to a document, plus their messages.
func (r *MongoRepo) DeleteByDocument(ctx context.Context, userID, documentID string) (int64, error) {
	filter := bson.M{"user_id": userID, "document_id": documentID}
	cursor, err := r.sessions.Find(ctx, filter)
	if err != nil {
		return 0, err
	}
	var sessions []Session
	if err := cursor.All(ctx, &sessions); err != nil {
		return 0, err
	}
	if len(sessions) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.SessionID)
	}
	if _, err := r.messages.DeleteMany(ctx, bson.M{"session_id": bson.M{"$in": ids}}); err != nil {
		return 0, err
	}
	res, err := r.sessions.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByUser removes every session and message of a user.
func (r *MongoRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	if _, err := r.messages.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return 0, err
	}
	res, err := r.sessions.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// AppendMessage inserts a message.
func (r *MongoRepo) AppendMessage(ctx context.Context, m Message) error {
	_, err := r.messages.InsertOne(ctx, m)
	return err
}

// ListMessages returns a session's messages oldest first.
func (r *MongoRepo) ListMessages(ctx context.Context, userID, sessionID string, limit int) ([]Message, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	// Ownership check lives on the session.
	if _, err := r.GetSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))
	cursor, err := r.messages.Find(ctx, bson.M{"session_id": sessionID}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []Message{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var _ Repo = (*MongoRepo)(nil)
