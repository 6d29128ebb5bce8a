package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidInput indicates a malformed settings payload.
var ErrInvalidInput = errors.New("invalid input")

var validThemes = map[string]struct{}{
	"system": {},
	"light":  {},
	"dark":   {},
}

var validAIStyles = map[string]struct{}{
	"balanced": {},
	"concise":  {},
	"detailed": {},
}

// Service contains business logic for settings. Saves go to the store and a
// change event is emitted to in-process subscribers.
type Service struct {
	Store   Store
	Emitter *Emitter
}

// Get returns the user's settings, falling back to defaults.
func (s *Service) Get(ctx context.Context, userID string) (Settings, error) {
	if strings.TrimSpace(userID) == "" {
		return Settings{}, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	saved, err := s.Store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			def := Defaults()
			def.UserID = userID
			return def, nil
		}
		return Settings{}, err
	}
	return saved, nil
}

// Update validates and saves the full settings record (last write wins) and
// emits exactly one change event.
func (s *Service) Update(ctx context.Context, userID string, in Settings) (Settings, error) {
	if strings.TrimSpace(userID) == "" {
		return Settings{}, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	if _, ok := validThemes[in.Theme]; !ok {
		return Settings{}, fmt.Errorf("%w: theme must be one of system, light, dark", ErrInvalidInput)
	}
	if _, ok := validAIStyles[in.AIStyle]; !ok {
		return Settings{}, fmt.Errorf("%w: aiStyle must be one of balanced, concise, detailed", ErrInvalidInput)
	}
	if in.FontScale < 0.5 || in.FontScale > 2.0 {
		return Settings{}, fmt.Errorf("%w: fontScale must be between 0.5 and 2.0", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Language) == "" {
		in.Language = "en"
	}

	in.UserID = userID
	in.UpdatedAt = time.Now().UTC()
	if err := s.Store.Put(ctx, in); err != nil {
		return Settings{}, err
	}

	if s.Emitter != nil {
		s.Emitter.Emit(Event{
			Name:     EventChanged,
			UserID:   userID,
			Settings: in,
			At:       in.UpdatedAt,
		})
	}
	return in, nil
}

// Reset removes the user's saved settings.
func (s *Service) Reset(ctx context.Context, userID string) error {
	return s.Store.Delete(ctx, userID)
}
