package documents

import "time"

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	DocumentID       string     `json:"documentId"`
	FileName         string     `json:"fileName"`
	MimeType         string     `json:"mimeType"`
	SizeBytes        int64      `json:"sizeBytes"`
	ProcessingStatus Status     `json:"processingStatus"`
	Summary          string     `json:"summary,omitempty"`
	Citations        []Citation `json:"citations"`
	ProcessingError  string     `json:"processingError,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func toResponse(doc Document) DocumentResponse {
	citations := doc.Citations
	if citations == nil {
		citations = []Citation{}
	}
	return DocumentResponse{
		DocumentID:       doc.ID,
		FileName:         doc.FileName,
		MimeType:         doc.MimeType,
		SizeBytes:        doc.SizeBytes,
		ProcessingStatus: doc.ProcessingStatus,
		Summary:          doc.Summary,
		Citations:        citations,
		ProcessingError:  doc.ProcessingError,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
}
