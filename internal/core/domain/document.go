package domain

import (
	"strings"
	"time"
)

type DocumentStatus string

const (
	StatusPending    DocumentStatus = "pending"
	StatusProcessing DocumentStatus = "processing"
	StatusCompleted  DocumentStatus = "completed"

	failedStatusPrefix = "failed: "
)

// FailedStatus records the terminal failure state together with the
// stringified reason, e.g. "failed: decode document: ...".
func FailedStatus(reason string) DocumentStatus {
	return DocumentStatus(failedStatusPrefix + strings.TrimSpace(reason))
}

func (s DocumentStatus) IsFailed() bool {
	return strings.HasPrefix(string(s), failedStatusPrefix)
}

func (s DocumentStatus) FailureReason() string {
	if !s.IsFailed() {
		return ""
	}
	return strings.TrimPrefix(string(s), failedStatusPrefix)
}

// ValidDocumentTypes is the fixed set of declared types accepted at upload.
// Only txt/text content is decoded strictly; everything else is decoded
// best-effort.
var ValidDocumentTypes = map[string]struct{}{
	"pdf":  {},
	"txt":  {},
	"text": {},
	"doc":  {},
	"docx": {},
	"csv":  {},
}

func IsValidDocumentType(documentType string) bool {
	_, ok := ValidDocumentTypes[strings.ToLower(strings.TrimSpace(documentType))]
	return ok
}

type Document struct {
	ID           string         `json:"id"`
	TenantID     string         `json:"tenant_id"`
	Title        string         `json:"title"`
	Description  string         `json:"description,omitempty"`
	StoragePath  string         `json:"storage_path"`
	DocumentType string         `json:"document_type"`
	Status       DocumentStatus `json:"status"`
	Processed    bool           `json:"processed"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// IngestRequest is the unit of ingestion work handed to the engine after
// an upload returns. It travels over the message queue as JSON.
type IngestRequest struct {
	DocumentID   string `json:"document_id"`
	StoragePath  string `json:"storage_path"`
	DocumentType string `json:"document_type"`
	TenantID     string `json:"tenant_id"`
}
