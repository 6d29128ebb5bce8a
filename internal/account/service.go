package account

import (
	"context"
	"errors"
	"strings"

	"engunity-backend/internal/documents"
	"engunity-backend/internal/shared/telemetry"
)

// ChatPurger removes a user's chat data.
type ChatPurger interface {
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// NotificationPurger removes a user's notifications.
type NotificationPurger interface {
	DeleteAll(ctx context.Context, userID string) (int64, error)
}

// SettingsPurger clears a user's saved settings.
type SettingsPurger interface {
	Reset(ctx context.Context, userID string) error
}

// ProjectPurger removes a user's projects.
type ProjectPurger interface {
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// UserDeleter removes the user profile row.
type UserDeleter interface {
	Delete(ctx context.Context, userID string) error
}

// Service coordinates operations that span every feature owned by a user:
// claiming guest data after login, and full account deletion.
type Service struct {
	Documents     *documents.Service
	Chats         ChatPurger
	Notifications NotificationPurger
	Settings      SettingsPurger
	Projects      ProjectPurger
	Users         UserDeleter
}

type ClaimResult struct {
	MigratedDocuments int64 `json:"migratedDocuments"`
}

type DeleteResult struct {
	DeletedDocuments     int64 `json:"deletedDocuments"`
	DeletedChatSessions  int64 `json:"deletedChatSessions"`
	DeletedNotifications int64 `json:"deletedNotifications"`
	DeletedProjects      int64 `json:"deletedProjects"`
}

type guestClaimer interface {
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int64, error)
}

// ClaimGuest reassigns documents created under a guest identity to the
// authenticated user. Both document stores are claimed; the legacy store is
// skipped when not configured.
func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (ClaimResult, error) {
	if strings.TrimSpace(guestUserID) == "" || strings.TrimSpace(authedUserID) == "" {
		return ClaimResult{}, errors.New("guestUserID and authedUserID are required")
	}
	if s.Documents == nil {
		return ClaimResult{}, errors.New("documents service not configured")
	}

	var total int64
	for _, repo := range []documents.Repo{s.Documents.Primary, s.Documents.Legacy} {
		claimer, ok := repo.(guestClaimer)
		if !ok {
			continue
		}
		n, err := claimer.ClaimGuest(ctx, guestUserID, authedUserID)
		if err != nil {
			return ClaimResult{}, err
		}
		total += n
	}
	return ClaimResult{MigratedDocuments: total}, nil
}

// DeleteAccount removes every piece of data the user owns. Documents go
// through the service so per-document chats are cascaded; remaining chats,
// notifications, projects and settings are purged directly, then the profile
// row is dropped.
func (s *Service) DeleteAccount(ctx context.Context, userID string) (DeleteResult, error) {
	if strings.TrimSpace(userID) == "" {
		return DeleteResult{}, errors.New("user id is required")
	}

	var result DeleteResult

	if s.Documents != nil {
		for {
			docs, err := s.Documents.List(ctx, userID, 100, 0)
			if err != nil {
				return result, err
			}
			if len(docs) == 0 {
				break
			}
			var deletedThisPass int64
			for _, doc := range docs {
				if err := s.Documents.Delete(ctx, userID, doc.ID); err != nil {
					telemetry.Warn("account deletion: document cleanup failed", map[string]any{
						"documentId": doc.ID,
						"error":      err.Error(),
					})
					continue
				}
				deletedThisPass++
			}
			result.DeletedDocuments += deletedThisPass
			if deletedThisPass == 0 {
				// Nothing deletable remains; avoid spinning on failures.
				break
			}
		}
	}

	if s.Chats != nil {
		n, err := s.Chats.DeleteByUser(ctx, userID)
		if err != nil {
			return result, err
		}
		result.DeletedChatSessions = n
	}

	if s.Notifications != nil {
		n, err := s.Notifications.DeleteAll(ctx, userID)
		if err != nil {
			return result, err
		}
		result.DeletedNotifications = n
	}

	if s.Projects != nil {
		n, err := s.Projects.DeleteByUser(ctx, userID)
		if err != nil {
			return result, err
		}
		result.DeletedProjects = n
	}

	if s.Settings != nil {
		if err := s.Settings.Reset(ctx, userID); err != nil {
			return result, err
		}
	}

	if s.Users != nil {
		if err := s.Users.Delete(ctx, userID); err != nil {
			return result, err
		}
	}

	return result, nil
}
