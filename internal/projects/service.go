package projects

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service implements project workspace operations.
type Service struct {
	Repo Repo
	Now  func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: time.Now}
}

// CreateInput carries the fields a caller may set on a new project.
type CreateInput struct {
	Name        string
	Description string
	Tags        []string
}

// Create validates and stores a new project.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Project{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(name) > 200 {
		return Project{}, fmt.Errorf("%w: name exceeds 200 characters", ErrInvalidInput)
	}
	now := s.Now().UTC()
	p := Project{
		ProjectID:   uuid.NewString(),
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Status:      StatusActive,
		Tags:        normalizeTags(in.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return Project{}, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

// Get returns a single owned project.
func (s *Service) Get(ctx context.Context, userID, projectID string) (Project, error) {
	return s.Repo.GetByID(ctx, userID, projectID)
}

// List returns the user's projects, newest update first.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]Project, error) {
	return s.Repo.ListByUser(ctx, userID, limit)
}

// UpdateInput carries optional field updates. Nil means leave unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
	Status      *string
	Tags        []string
}

// Update applies partial changes to an owned project.
func (s *Service) Update(ctx context.Context, userID, projectID string, in UpdateInput) (Project, error) {
	p, err := s.Repo.GetByID(ctx, userID, projectID)
	if err != nil {
		return Project{}, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Project{}, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		p.Name = name
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*in.Status))
		if status != StatusActive && status != StatusArchived {
			return Project{}, fmt.Errorf("%w: status must be active or archived", ErrInvalidInput)
		}
		p.Status = status
	}
	if in.Tags != nil {
		p.Tags = normalizeTags(in.Tags)
	}
	p.UpdatedAt = s.Now().UTC()

	ok, err := s.Repo.Update(ctx, p)
	if err != nil {
		return Project{}, fmt.Errorf("update project: %w", err)
	}
	if !ok {
		return Project{}, ErrNotFound
	}
	return p, nil
}

// Delete removes an owned project.
func (s *Service) Delete(ctx context.Context, userID, projectID string) error {
	ok, err := s.Repo.Delete(ctx, userID, projectID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// DeleteByUser removes all projects of a user. Used by account deletion.
func (s *Service) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	return s.Repo.DeleteByUser(ctx, userID)
}

func normalizeTags(tags []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if len(out) == 20 {
			break
		}
	}
	return out
}
