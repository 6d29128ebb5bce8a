package projects

import "context"

// Repo defines persistence operations for projects.
type Repo interface {
	Create(ctx context.Context, p Project) error
	GetByID(ctx context.Context, userID, projectID string) (Project, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]Project, error)
	Update(ctx context.Context, p Project) (bool, error)
	Delete(ctx context.Context, userID, projectID string) (bool, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}
