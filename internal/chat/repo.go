package chat

import "context"

// Repo defines persistence operations for chat sessions and messages.
type Repo interface {
	CreateSession(ctx context.Context, s Session) error
	GetSession(ctx context.Context, userID, sessionID string) (Session, error)
	ListSessions(ctx context.Context, userID string, limit int) ([]Session, error)
	TouchSession(ctx context.Context, userID, sessionID string) error
	// DeleteSession removes a session and its messages.
	DeleteSession(ctx context.Context, userID, sessionID string) (bool, error)
	// DeleteByDocument removes all sessions (and their messages) bound to a
	// document. Used by the document deletion cascade.
	DeleteByDocument(ctx context.Context, userID, documentID string) (int64, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)

	AppendMessage(ctx context.Context, m Message) error
	ListMessages(ctx context.Context, userID, sessionID string, limit int) ([]Message, error)
}
