package documents

import "context"

// Repo defines persistence operations for documents. Both the legacy
// Postgres store and the MongoDB store implement it.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, userID, documentID string) (Document, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error)
	// TransitionStatus moves a document between lifecycle states. It only
	// applies when the stored status equals from, and reports whether a row
	// changed.
	TransitionStatus(ctx context.Context, userID, documentID string, from, to Status) (bool, error)
	// SetResult records the processing outcome alongside the processed state.
	SetResult(ctx context.Context, userID, documentID, extractedKey, summary string, citations []Citation) error
	SetFailure(ctx context.Context, userID, documentID, reason string) error
	Delete(ctx context.Context, userID, documentID string) (bool, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}
