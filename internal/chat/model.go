package chat

import "time"

// Session is a chat conversation, optionally bound to a document for Q&A.
type Session struct {
	SessionID  string    `json:"sessionId" bson:"session_id"`
	UserID     string    `json:"userId" bson:"user_id"`
	DocumentID string    `json:"documentId,omitempty" bson:"document_id,omitempty"`
	Title      string    `json:"title" bson:"title"`
	CreatedAt  time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updated_at"`
}

// Message is a single turn inside a session.
type Message struct {
	MessageID string    `json:"messageId" bson:"message_id"`
	SessionID string    `json:"sessionId" bson:"session_id"`
	UserID    string    `json:"userId" bson:"user_id"`
	Role      string    `json:"role" bson:"role"` // user | assistant
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}
