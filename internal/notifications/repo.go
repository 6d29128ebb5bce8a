package notifications

import (
	"context"
	"time"
)

// Repo defines persistence operations for notifications.
type Repo interface {
	Create(ctx context.Context, n Notification) error
	ListByUser(ctx context.Context, userID string, filter ListFilter) ([]Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID string, read bool) (int64, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, notificationID string) (int64, error)
	DeleteAll(ctx context.Context, userID string) (int64, error)
	DeleteOlderThan(ctx context.Context, userID string, cutoff time.Time) (int64, error)
}
