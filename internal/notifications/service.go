package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"engunity-backend/internal/shared/metrics"
)

// Service contains business logic for notifications.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// CreateInput is the payload for a new notification.
type CreateInput struct {
	Type    string
	Title   string
	Message string
	Actions []Action
}

// Create validates and stores a new notification.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Notification, error) {
	if strings.TrimSpace(userID) == "" {
		return Notification{}, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Title) == "" {
		return Notification{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	now := time.Now().UTC()
	n := Notification{
		NotificationID: uuid.NewString(),
		UserID:         userID,
		Type:           normalizeType(in.Type),
		Title:          strings.TrimSpace(in.Title),
		Message:        strings.TrimSpace(in.Message),
		Read:           false,
		Actions:        in.Actions,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if n.Actions == nil {
		n.Actions = []Action{}
	}

	if err := s.Repo.Create(ctx, n); err != nil {
		return Notification{}, err
	}
	metrics.IncNotificationsCreated()
	return n, nil
}

// ListResult bundles a page of notifications with the unread count.
type ListResult struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int64          `json:"unreadCount"`
}

// List returns notifications for a user plus the unread count.
func (s *Service) List(ctx context.Context, userID string, filter ListFilter) (ListResult, error) {
	if strings.TrimSpace(userID) == "" {
		return ListResult{}, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}

	items, err := s.Repo.ListByUser(ctx, userID, filter)
	if err != nil {
		return ListResult{}, err
	}
	unread, err := s.Repo.CountUnread(ctx, userID)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Notifications: items, UnreadCount: unread}, nil
}

// MarkRead toggles a single notification; returns ErrNotFound when the user
// owns no such notification.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID string, read bool) error {
	if strings.TrimSpace(notificationID) == "" {
		return fmt.Errorf("%w: notificationId is required", ErrInvalidInput)
	}
	matched, err := s.Repo.MarkRead(ctx, userID, notificationID, read)
	if err != nil {
		return err
	}
	if matched == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of a user as read.
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.Repo.MarkAllRead(ctx, userID)
}

// Delete removes a single notification; ErrNotFound when nothing matched.
func (s *Service) Delete(ctx context.Context, userID, notificationID string) error {
	if strings.TrimSpace(notificationID) == "" {
		return fmt.Errorf("%w: notificationId is required", ErrInvalidInput)
	}
	deleted, err := s.Repo.Delete(ctx, userID, notificationID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll removes every notification of a user.
func (s *Service) DeleteAll(ctx context.Context, userID string) (int64, error) {
	return s.Repo.DeleteAll(ctx, userID)
}

// DeleteOlderThan removes notifications created before the cutoff.
func (s *Service) DeleteOlderThan(ctx context.Context, userID string, cutoff time.Time) (int64, error) {
	if cutoff.IsZero() {
		return 0, fmt.Errorf("%w: olderThan must be a valid timestamp", ErrInvalidInput)
	}
	return s.Repo.DeleteOlderThan(ctx, userID, cutoff)
}

func normalizeType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "success", "warning", "error", "system":
		return strings.ToLower(strings.TrimSpace(raw))
	default:
		return "info"
	}
}
