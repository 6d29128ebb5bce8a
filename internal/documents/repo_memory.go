package documents

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Document // userId -> documents
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string][]Document)}
}

// Create stores a document for a user.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.UserID] = append(r.data[doc.UserID], doc)
	return nil
}

// GetByID returns a document by ID for a user.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, documentID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	docs := r.data[userID]
	for i := range docs {
		if docs[i].ID == documentID {
			return docs[i], nil
		}
	}
	return Document{}, ErrNotFound
}

// ListByUser returns documents newest first, honoring limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}

	r.mu.RLock()
	userDocs := append([]Document(nil), r.data[userID]...)
	r.mu.RUnlock()

	sort.Slice(userDocs, func(i, j int) bool {
		return userDocs[i].CreatedAt.After(userDocs[j].CreatedAt)
	})

	if offset >= len(userDocs) {
		return []Document{}, nil
	}
	end := len(userDocs)
	if offset+limit < end {
		end = offset + limit
	}
	return userDocs[offset:end], nil
}

// TransitionStatus moves a document between lifecycle states.
func (r *MemoryRepo) TransitionStatus(ctx context.Context, userID, documentID string, from, to Status) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	docs := r.data[userID]
	for i := range docs {
		if docs[i].ID == documentID && docs[i].ProcessingStatus == from {
			docs[i].ProcessingStatus = to
			docs[i].UpdatedAt = time.Now().UTC()
			r.data[userID] = docs
			return true, nil
		}
	}
	return false, nil
}

// SetResult records the processing outcome alongside the processed state.
func (r *MemoryRepo) SetResult(ctx context.Context, userID, documentID, extractedKey, summary string, citations []Citation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if citations == nil {
		citations = []Citation{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	docs := r.data[userID]
	for i := range docs {
		if docs[i].ID == documentID {
			docs[i].ProcessingStatus = StatusProcessed
			docs[i].ExtractedTextKey = extractedKey
			docs[i].Summary = summary
			docs[i].Citations = citations
			docs[i].ProcessingError = ""
			docs[i].UpdatedAt = time.Now().UTC()
			r.data[userID] = docs
			return nil
		}
	}
	return ErrNotFound
}

// SetFailure marks a document failed with a reason.
func (r *MemoryRepo) SetFailure(ctx context.Context, userID, documentID, reason string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	docs := r.data[userID]
	for i := range docs {
		if docs[i].ID == documentID {
			docs[i].ProcessingStatus = StatusFailed
			docs[i].ProcessingError = reason
			docs[i].UpdatedAt = time.Now().UTC()
			r.data[userID] = docs
			return nil
		}
	}
	return ErrNotFound
}

// Delete removes a document owned by a user.
func (r *MemoryRepo) Delete(ctx context.Context, userID, documentID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	docs := r.data[userID]
	for i := range docs {
		if docs[i].ID == documentID {
			r.data[userID] = append(docs[:i], docs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// DeleteByUser removes every document of a user.
func (r *MemoryRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	deleted := int64(len(r.data[userID]))
	delete(r.data, userID)
	return deleted, nil
}

// ClaimGuest reassigns guest-owned documents to an authenticated user.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	docs := r.data[guestUserID]
	if len(docs) == 0 {
		return 0, nil
	}
	for i := range docs {
		docs[i].UserID = authedUserID
	}
	r.data[authedUserID] = append(r.data[authedUserID], docs...)
	delete(r.data, guestUserID)
	return int64(len(docs)), nil
}

var _ Repo = (*MemoryRepo)(nil)
