package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"engunity-backend/internal/extract"
	"engunity-backend/internal/queue"
	"engunity-backend/internal/shared/metrics"
	"engunity-backend/internal/shared/storage/object"
	"engunity-backend/internal/shared/telemetry"
)

// ChatCascade removes chat sessions tied to a document when the document is
// deleted.
type ChatCascade interface {
	DeleteByDocument(ctx context.Context, userID, documentID string) (int64, error)
}

// Summarizer produces a summary and citations for extracted document text.
type Summarizer interface {
	Summarize(ctx context.Context, fileName, text string) (string, []Citation, error)
}

// Service contains business logic for documents. Primary is the MongoDB
// store; Legacy is the Supabase Postgres store and may be nil.
type Service struct {
	Primary         Repo
	Legacy          Repo
	Store           object.ObjectStore
	StorageProvider string
	Chats           ChatCascade
	Summarizer      Summarizer
	JobQueue        queue.Client
}

// isPrimaryID reports whether an ID has the hex ObjectId shape used by the
// Mongo store. Legacy Supabase rows use dashed UUIDs.
func isPrimaryID(id string) bool {
	if len(id) != 24 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func (s *Service) repoFor(documentID string) (Repo, error) {
	if isPrimaryID(documentID) {
		return s.Primary, nil
	}
	if s.Legacy == nil {
		return nil, ErrNotFound
	}
	return s.Legacy, nil
}

// Upload saves the file to object storage, records the document, and kicks
// off processing (queued when a job queue is configured, inline otherwise).
func (s *Service) Upload(ctx context.Context, userID, fileName string, r io.Reader) (Document, error) {
	if strings.TrimSpace(userID) == "" {
		return Document{}, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	if fileName == "" {
		return Document{}, fmt.Errorf("%w: file name required", ErrInvalidInput)
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, userID, fileName, r)
	if err != nil {
		return Document{}, err
	}

	now := time.Now().UTC()
	doc := Document{
		ID:               bson.NewObjectID().Hex(),
		UserID:           userID,
		FileName:         fileName,
		MimeType:         mimeType,
		SizeBytes:        size,
		StorageProvider:  s.StorageProvider,
		StorageKey:       storageKey,
		ProcessingStatus: StatusUploaded,
		Citations:        []Citation{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.Primary.Create(ctx, doc); err != nil {
		return Document{}, err
	}
	metrics.IncDocumentsUploaded()

	if s.JobQueue != nil {
		msg := queue.Message{
			DocumentID: doc.ID,
			UserID:     userID,
			EnqueuedAt: now.Format(time.RFC3339),
			Version:    1,
		}
		if err := s.JobQueue.Send(ctx, msg); err != nil {
			telemetry.Error("documents.enqueue_failed", map[string]any{
				"document_id": doc.ID,
				"error":       err.Error(),
			})
		} else {
			return s.Get(ctx, userID, doc.ID)
		}
	}

	// No queue (or enqueue failed): process inline so dev mode still works
	// end to end.
	if err := s.Process(ctx, userID, doc.ID); err != nil {
		telemetry.Warn("documents.inline_process_failed", map[string]any{
			"document_id": doc.ID,
			"error":       err.Error(),
		})
	}
	return s.Get(ctx, userID, doc.ID)
}

// Process runs the extraction/summary pipeline for one document. It moves
// the document uploaded→processing→processed, or →failed on error. Failed
// documents may be reprocessed.
func (s *Service) Process(ctx context.Context, userID, documentID string) error {
	repo, err := s.repoFor(documentID)
	if err != nil {
		return err
	}

	doc, err := repo.GetByID(ctx, userID, documentID)
	if err != nil {
		return err
	}

	from := doc.ProcessingStatus
	if !CanTransition(from, StatusProcessing) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, StatusProcessing)
	}
	ok, err := repo.TransitionStatus(ctx, userID, documentID, from, StatusProcessing)
	if err != nil {
		return err
	}
	if !ok {
		// Lost the race with another worker; nothing to do.
		return nil
	}

	started := time.Now()
	text, err := extract.ExtractText(ctx, s.Store, doc.StorageKey, doc.MimeType, doc.FileName)
	if err != nil {
		metrics.IncDocumentsFailed()
		if failErr := repo.SetFailure(ctx, userID, documentID, err.Error()); failErr != nil {
			return errors.Join(err, failErr)
		}
		return err
	}

	summary := ""
	citations := []Citation{}
	if s.Summarizer != nil {
		summary, citations, err = s.Summarizer.Summarize(ctx, doc.FileName, text)
		if err != nil {
			// Extracted text is still useful without a summary.
			telemetry.Warn("documents.summarize_failed", map[string]any{
				"document_id": documentID,
				"error":       err.Error(),
			})
			summary, citations = "", []Citation{}
		}
	}

	// ExtractText already persisted the derived text at this key.
	extractedKey := doc.StorageKey + ".extracted.txt"
	if err := repo.SetResult(ctx, userID, documentID, extractedKey, summary, citations); err != nil {
		return err
	}
	metrics.IncDocumentsProcessed()
	metrics.ObserveProcessingDurationMs(float64(time.Since(started).Microseconds()) / 1000.0)
	return nil
}

// Get fetches a document from whichever store owns the ID.
func (s *Service) Get(ctx context.Context, userID, documentID string) (Document, error) {
	repo, err := s.repoFor(documentID)
	if err != nil {
		return Document{}, err
	}
	return repo.GetByID(ctx, userID, documentID)
}

// List merges documents from both stores, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	fetch := limit + offset
	docs, err := s.Primary.ListByUser(ctx, userID, fetch, 0)
	if err != nil {
		return nil, err
	}
	if s.Legacy != nil {
		legacy, err := s.Legacy.ListByUser(ctx, userID, fetch, 0)
		if err != nil {
			return nil, err
		}
		docs = append(docs, legacy...)
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})

	if offset >= len(docs) {
		return []Document{}, nil
	}
	end := len(docs)
	if offset+limit < end {
		end = offset + limit
	}
	return docs[offset:end], nil
}

// ExtractedText returns the extracted text of a processed document.
func (s *Service) ExtractedText(ctx context.Context, userID, documentID string) (string, error) {
	doc, err := s.Get(ctx, userID, documentID)
	if err != nil {
		return "", err
	}
	if doc.ProcessingStatus != StatusProcessed || doc.ExtractedTextKey == "" {
		return "", fmt.Errorf("%w: document not processed", ErrInvalidInput)
	}
	body, err := s.Store.Open(ctx, doc.ExtractedTextKey)
	if err != nil {
		return "", err
	}
	defer body.Close()
	raw, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Delete removes a document and cascades to its chat sessions.
func (s *Service) Delete(ctx context.Context, userID, documentID string) error {
	repo, err := s.repoFor(documentID)
	if err != nil {
		return err
	}
	deleted, err := repo.Delete(ctx, userID, documentID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}

	if s.Chats != nil {
		removed, err := s.Chats.DeleteByDocument(ctx, userID, documentID)
		if err != nil {
			// The document is gone; report the partial cascade but succeed.
			telemetry.Error("documents.chat_cascade_failed", map[string]any{
				"document_id": documentID,
				"error":       err.Error(),
			})
			return nil
		}
		if removed > 0 {
			telemetry.Info("documents.chat_cascade", map[string]any{
				"document_id":      documentID,
				"sessions_removed": removed,
			})
		}
	}
	return nil
}
