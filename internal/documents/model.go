package documents

import "time"

// Status is the processing lifecycle state of a document.
type Status string

const (
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusProcessed  Status = "processed"
	StatusFailed     Status = "failed"
)

// CanTransition reports whether a lifecycle move is legal. Reprocessing a
// failed document is allowed; everything else is forward-only.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusUploaded:
		return to == StatusProcessing
	case StatusProcessing:
		return to == StatusProcessed || to == StatusFailed
	case StatusFailed:
		return to == StatusProcessing
	default:
		return false
	}
}

// Citation is a source reference attached to a processed document.
type Citation struct {
	Title   string `json:"title" bson:"title"`
	URL     string `json:"url,omitempty" bson:"url,omitempty"`
	Snippet string `json:"snippet,omitempty" bson:"snippet,omitempty"`
}

// Document represents an uploaded document owned by a user. Legacy rows live
// in Supabase Postgres keyed by UUID; newer documents live in MongoDB keyed
// by a hex ObjectId.
type Document struct {
	ID               string     `bson:"document_id"`
	UserID           string     `bson:"user_id"`
	FileName         string     `bson:"file_name"`
	MimeType         string     `bson:"mime_type"`
	SizeBytes        int64      `bson:"size_bytes"`
	StorageProvider  string     `bson:"storage_provider"`
	StorageKey       string     `bson:"storage_key"`
	ProcessingStatus Status     `bson:"processing_status"`
	ExtractedTextKey string     `bson:"extracted_text_key,omitempty"`
	Summary          string     `bson:"summary,omitempty"`
	Citations        []Citation `bson:"citations"`
	ProcessingError  string     `bson:"processing_error,omitempty"`
	CreatedAt        time.Time  `bson:"created_at"`
	UpdatedAt        time.Time  `bson:"updated_at"`
}
