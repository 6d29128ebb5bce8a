package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"engunity-backend/internal/shared/telemetry"
)

// Responder produces an assistant reply for a question, optionally grounded
// in document text. Implemented by the backend client.
type Responder interface {
	Answer(ctx context.Context, question, documentText string) (string, error)
}

// DocumentSource supplies extracted text for document-bound sessions.
type DocumentSource interface {
	ExtractedText(ctx context.Context, userID, documentID string) (string, error)
}

// Service contains business logic for chat sessions and document Q&A.
type Service struct {
	Repo      Repo
	Responder Responder
	Documents DocumentSource
}

// StartSession creates a new session, optionally bound to a document.
func (s *Service) StartSession(ctx context.Context, userID, documentID, title string) (Session, error) {
	if strings.TrimSpace(userID) == "" {
		return Session{}, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "New chat"
	}

	now := time.Now().UTC()
	session := Session{
		SessionID:  uuid.NewString(),
		UserID:     userID,
		DocumentID: strings.TrimSpace(documentID),
		Title:      title,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Repo.CreateSession(ctx, session); err != nil {
		return Session{}, err
	}
	return session, nil
}

// Sessions lists a user's sessions.
func (s *Service) Sessions(ctx context.Context, userID string, limit int) ([]Session, error) {
	return s.Repo.ListSessions(ctx, userID, limit)
}

// Messages lists a session's messages.
func (s *Service) Messages(ctx context.Context, userID, sessionID string, limit int) ([]Message, error) {
	return s.Repo.ListMessages(ctx, userID, sessionID, limit)
}

// Ask records the user's question, asks the backend, and records the reply.
// Both turns are returned.
func (s *Service) Ask(ctx context.Context, userID, sessionID, content string) ([]Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}

	session, err := s.Repo.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	question := Message{
		MessageID: uuid.NewString(),
		SessionID: session.SessionID,
		UserID:    userID,
		Role:      "user",
		Content:   content,
		CreatedAt: now,
	}
	if err := s.Repo.AppendMessage(ctx, question); err != nil {
		return nil, err
	}

	documentText := ""
	if session.DocumentID != "" && s.Documents != nil {
		documentText, err = s.Documents.ExtractedText(ctx, userID, session.DocumentID)
		if err != nil {
			// The document may still be processing; answer without it.
			telemetry.Warn("chat.document_context_unavailable", map[string]any{
				"session_id":  sessionID,
				"document_id": session.DocumentID,
				"error":       err.Error(),
			})
			documentText = ""
		}
	}

	answer, err := s.Responder.Answer(ctx, content, documentText)
	if err != nil {
		return nil, err
	}

	reply := Message{
		MessageID: uuid.NewString(),
		SessionID: session.SessionID,
		UserID:    userID,
		Role:      "assistant",
		Content:   answer,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.AppendMessage(ctx, reply); err != nil {
		return nil, err
	}
	if err := s.Repo.TouchSession(ctx, userID, sessionID); err != nil {
		telemetry.Warn("chat.touch_failed", map[string]any{"session_id": sessionID, "error": err.Error()})
	}

	return []Message{question, reply}, nil
}

// DeleteSession removes a session and its messages.
func (s *Service) DeleteSession(ctx context.Context, userID, sessionID string) error {
	deleted, err := s.Repo.DeleteSession(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// DeleteByDocument implements the document deletion cascade.
func (s *Service) DeleteByDocument(ctx context.Context, userID, documentID string) (int64, error) {
	return s.Repo.DeleteByDocument(ctx, userID, documentID)
}

// DeleteByUser removes every session and message of a user. Used by account
// deletion.
func (s *Service) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	return s.Repo.DeleteByUser(ctx, userID)
}
