package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGRepo implements Repo on Supabase Postgres. It backs the legacy document
// rows keyed by UUID; new writes land in the Mongo store.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `
id, user_id, file_name, mime_type, size_bytes, storage_provider, storage_key,
processing_status, extracted_text_key, summary, citations, created_at, updated_at`

// Create inserts a new document row.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id, user_id, file_name, mime_type, size_bytes, storage_provider,
    storage_key, processing_status, citations, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	provider := doc.StorageProvider
	if provider == "" {
		provider = "local"
	}
	citations, err := json.Marshal(doc.Citations)
	if err != nil {
		return err
	}
	if doc.Citations == nil {
		citations = []byte("[]")
	}

	var storageKey sql.NullString
	if doc.StorageKey != "" {
		storageKey = sql.NullString{String: doc.StorageKey, Valid: true}
	}

	_, err = r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.UserID,
		doc.FileName,
		doc.MimeType,
		doc.SizeBytes,
		provider,
		storageKey,
		string(doc.ProcessingStatus),
		citations,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return err
}

// GetByID fetches a document row by ID for a user.
func (r *PGRepo) GetByID(ctx context.Context, userID, documentID string) (Document, error) {
	const query = `
SELECT ` + selectColumns + `
FROM documents
WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, userID, documentID)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListByUser lists document rows newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT ` + selectColumns + `
FROM documents
WHERE user_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// TransitionStatus moves a document row between lifecycle states.
func (r *PGRepo) TransitionStatus(ctx context.Context, userID, documentID string, from, to Status) (bool, error) {
	const query = `
UPDATE documents
SET processing_status = $1, updated_at = now()
WHERE user_id = $2 AND id = $3 AND processing_status = $4 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, string(to), userID, documentID, string(from))
	if err != nil {
		return false, err
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

// SetResult records the processing outcome alongside the processed state.
func (r *PGRepo) SetResult(ctx context.Context, userID, documentID, extractedKey, summary string, citations []Citation) error {
	if citations == nil {
		citations = []Citation{}
	}
	encoded, err := json.Marshal(citations)
	if err != nil {
		return err
	}
	const query = `
UPDATE documents
SET processing_status = $1, extracted_text_key = $2, summary = $3,
    citations = $4, updated_at = now()
WHERE user_id = $5 AND id = $6 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, string(StatusProcessed), extractedKey, summary, encoded, userID, documentID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetFailure marks a document row failed.
func (r *PGRepo) SetFailure(ctx context.Context, userID, documentID, reason string) error {
	const query = `
UPDATE documents
SET processing_status = $1, updated_at = now()
WHERE user_id = $2 AND id = $3 AND deleted_at IS NULL`
	_ = reason // legacy rows carry no error column
	res, err := r.DB.ExecContext(ctx, query, string(StatusFailed), userID, documentID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete soft-deletes a document row.
func (r *PGRepo) Delete(ctx context.Context, userID, documentID string) (bool, error) {
	const query = `
UPDATE documents
SET deleted_at = now()
WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, userID, documentID)
	if err != nil {
		return false, err
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

// DeleteByUser soft-deletes every document row of a user.
func (r *PGRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	const query = `
UPDATE documents
SET deleted_at = now()
WHERE user_id = $1 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}

// ClaimGuest reassigns guest-owned rows to an authenticated user.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int64, error) {
	const query = `
UPDATE documents
SET user_id = $1, updated_at = now()
WHERE user_id = $2 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var mimeType sql.NullString
	var storageKey sql.NullString
	var extractedKey sql.NullString
	var summary sql.NullString
	var status string
	var citations []byte

	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.FileName,
		&mimeType,
		&doc.SizeBytes,
		&doc.StorageProvider,
		&storageKey,
		&status,
		&extractedKey,
		&summary,
		&citations,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	doc.ProcessingStatus = Status(status)
	if mimeType.Valid {
		doc.MimeType = mimeType.String
	}
	if storageKey.Valid {
		doc.StorageKey = storageKey.String
	}
	if extractedKey.Valid {
		doc.ExtractedTextKey = extractedKey.String
	}
	if summary.Valid {
		doc.Summary = summary.String
	}
	doc.Citations = []Citation{}
	if len(citations) > 0 {
		if err := json.Unmarshal(citations, &doc.Citations); err != nil {
			return Document{}, err
		}
	}
	return doc, nil
}

var _ Repo = (*PGRepo)(nil)
