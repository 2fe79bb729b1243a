package model

import (
	"time"
)

// Document is a file attached to a log. (LogID, Path) is unique; Path is the
// object key in the blob store.
type Document struct {
	ID          string    `json:"id"`
	LogID       string    `json:"log_id"`
	Filename    string    `json:"filename" validate:"required,max=255,plainfile"`
	Path        string    `json:"path" validate:"required"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// NewDocument creates document metadata for an upload.
func NewDocument(logID, filename, path, contentType string, size int64, now time.Time) *Document {
	return &Document{
		ID:          NewID(),
		LogID:       logID,
		Filename:    filename,
		Path:        path,
		ContentType: contentType,
		Size:        size,
		UploadedAt:  now,
	}
}
