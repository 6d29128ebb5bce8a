package projects

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory Repo used in tests and local dev.
type MemoryRepo struct {
	mu    sync.RWMutex
	items map[string]Project // keyed by project_id
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[string]Project)}
}

func (r *MemoryRepo) Create(_ context.Context, p Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[p.ProjectID] = p
	return nil
}

func (r *MemoryRepo) GetByID(_ context.Context, userID, projectID string) (Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[projectID]
	if !ok || p.UserID != userID {
		return Project{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryRepo) ListByUser(_ context.Context, userID string, limit int) ([]Project, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Project{}
	for _, p := range r.items {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) Update(_ context.Context, p Project) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.items[p.ProjectID]
	if !ok || existing.UserID != p.UserID {
		return false, nil
	}
	r.items[p.ProjectID] = p
	return true, nil
}

func (r *MemoryRepo) Delete(_ context.Context, userID, projectID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[projectID]
	if !ok || p.UserID != userID {
		return false, nil
	}
	delete(r.items, projectID)
	return true, nil
}

func (r *MemoryRepo) DeleteByUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, p := range r.items {
		if p.UserID == userID {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

var _ Repo = (*MemoryRepo)(nil)
