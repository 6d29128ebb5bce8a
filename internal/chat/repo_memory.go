package chat

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string][]Session // userId -> sessions
	messages map[string][]Message // sessionId -> messages
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		sessions: make(map[string][]Session),
		messages: make(map[string][]Message),
	}
}

// CreateSession stores a session.
func (r *MemoryRepo) CreateSession(ctx context.Context, s Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.UserID] = append(r.sessions[s.UserID], s)
	return nil
}

// GetSession fetches a session owned by the user.
func (r *MemoryRepo) GetSession(ctx context.Context, userID, sessionID string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions[userID] {
		if s.SessionID == sessionID {
			return s, nil
		}
	}
	return Session{}, ErrNotFound
}

// ListSessions returns sessions most recently active first.
func (r *MemoryRepo) ListSessions(ctx context.Context, userID string, limit int) ([]Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	r.mu.RLock()
	out := append([]Session(nil), r.sessions[userID]...)
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// TouchSession bumps a session's updated_at.
func (r *MemoryRepo) TouchSession(ctx context.Context, userID, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.sessions[userID]
	for i := range items {
		if items[i].SessionID == sessionID {
			items[i].UpdatedAt = time.Now().UTC()
			r.sessions[userID] = items
			return nil
		}
	}
	return ErrNotFound
}

// DeleteSession removes a session and its messages.
func (r *MemoryRepo) DeleteSession(ctx context.Context, userID, sessionID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.sessions[userID]
	for i := range items {
		if items[i].SessionID == sessionID {
			r.sessions[userID] = append(items[:i], items[i+1:]...)
			delete(r.messages, sessionID)
			return true, nil
		}
	}
	return false, nil
}

// DeleteByDocument removes sessions bound to a document, plus their messages.
func (r *MemoryRepo) DeleteByDocument(ctx context.Context, userID, documentID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.sessions[userID]
	kept := items[:0]
	var deleted int64
	for _, s := range items {
		if s.DocumentID == documentID {
			delete(r.messages, s.SessionID)
			deleted++
			continue
		}
		kept = append(kept, s)
	}
	r.sessions[userID] = kept
	return deleted, nil
}

// DeleteByUser removes every session and message of a user.
func (r *MemoryRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	deleted := int64(len(r.sessions[userID]))
	for _, s := range r.sessions[userID] {
		delete(r.messages, s.SessionID)
	}
	delete(r.sessions, userID)
	return deleted, nil
}

// AppendMessage stores a message.
func (r *MemoryRepo) AppendMessage(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[m.SessionID] = append(r.messages[m.SessionID], m)
	return nil
}

// ListMessages returns a session's messages oldest first.
func (r *MemoryRepo) ListMessages(ctx context.Context, userID, sessionID string, limit int) ([]Message, error) {
	if _, err := r.GetSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]Message(nil), r.messages[sessionID]...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
