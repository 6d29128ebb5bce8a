package notifications

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Notification // userId -> notifications
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string][]Notification)}
}

// Create stores a notification for a user.
func (r *MemoryRepo) Create(ctx context.Context, n Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[n.UserID] = append(r.data[n.UserID], n)
	return nil
}

// ListByUser returns notifications newest first, honoring the filter.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, filter ListFilter) ([]Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	items := append([]Notification(nil), r.data[userID]...)
	r.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	out := []Notification{}
	for _, n := range items {
		if filter.UnreadOnly && n.Read {
			continue
		}
		if filter.Since != nil && !n.CreatedAt.After(*filter.Since) {
			continue
		}
		out = append(out, n)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

// CountUnread returns the number of unread notifications for a user.
func (r *MemoryRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, n := range r.data[userID] {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

// MarkRead toggles the read flag on a single owned notification.
func (r *MemoryRepo) MarkRead(ctx context.Context, userID, notificationID string, read bool) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.data[userID]
	for i := range items {
		if items[i].NotificationID == notificationID {
			items[i].Read = read
			items[i].UpdatedAt = time.Now().UTC()
			r.data[userID] = items
			return 1, nil
		}
	}
	return 0, nil
}

// MarkAllRead marks every unread notification of a user as read.
func (r *MemoryRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.data[userID]
	var updated int64
	for i := range items {
		if !items[i].Read {
			items[i].Read = true
			items[i].UpdatedAt = time.Now().UTC()
			updated++
		}
	}
	r.data[userID] = items
	return updated, nil
}

// Delete removes a single owned notification.
func (r *MemoryRepo) Delete(ctx context.Context, userID, notificationID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.data[userID]
	for i := range items {
		if items[i].NotificationID == notificationID {
			r.data[userID] = append(items[:i], items[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

// DeleteAll removes every notification of a user.
func (r *MemoryRepo) DeleteAll(ctx context.Context, userID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	deleted := int64(len(r.data[userID]))
	delete(r.data, userID)
	return deleted, nil
}

// DeleteOlderThan removes notifications created strictly before the cutoff.
func (r *MemoryRepo) DeleteOlderThan(ctx context.Context, userID string, cutoff time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.data[userID]
	kept := items[:0]
	var deleted int64
	for _, n := range items {
		if n.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	r.data[userID] = kept
	return deleted, nil
}

var _ Repo = (*MemoryRepo)(nil)
