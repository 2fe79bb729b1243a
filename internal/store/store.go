// Package store persists tasks, daily logs and document metadata.
//
// The DataStore interface is what the tracker and the attachment manager
// depend on. SQLStore implements it with gorm over SQLite (local file or
// in-memory) or PostgreSQL (the remote relational store). Calls are not
// retried: a failure surfaces as *errors.StoreError, a missing row as
// *errors.NotFoundError.
package store

import (
	"context"
	"time"

	"github.com/manav03panchal/tasklog/internal/calendar"
	"github.com/manav03panchal/tasklog/internal/model"
)

// LogUpdate holds the log fields to overwrite. Nil fields are left untouched.
type LogUpdate struct {
	Notes   *string
	Percent *int
}

// Empty reports whether the update changes nothing.
func (u LogUpdate) Empty() bool {
	return u.Notes == nil && u.Percent == nil
}

// DataStore is the relational store for tasks, logs and documents.
type DataStore interface {
	// Tasks
	InsertTask(ctx context.Context, task *model.Task) error
	GetTask(ctx context.Context, id string) (*model.Task, error)
	// ListTasks returns tasks most recently updated first.
	ListTasks(ctx context.Context) ([]model.Task, error)
	UpdateTaskName(ctx context.Context, id, name string, now time.Time) error
	UpdateTaskRange(ctx context.Context, id string, start, end calendar.Date, now time.Time) error
	TouchTask(ctx context.Context, id string, now time.Time) error

	// Logs
	// ListLogs returns a task's logs ordered by date.
	ListLogs(ctx context.Context, taskID string) ([]model.Log, error)
	GetLog(ctx context.Context, id string) (*model.Log, error)
	GetLogByDate(ctx context.Context, taskID string, date calendar.Date) (*model.Log, error)
	// EnsureLogs inserts an empty log for every date that has none and leaves
	// existing rows untouched. It returns how many rows were created.
	EnsureLogs(ctx context.Context, taskID string, dates []calendar.Date) (int, error)
	UpdateLog(ctx context.Context, id string, update LogUpdate) error
	DeleteLogs(ctx context.Context, taskID string, dates []calendar.Date) (int, error)

	// Documents
	// UpsertDocument inserts doc or, when (log_id, path) exists, refreshes its
	// filename, content type, size and upload time.
	UpsertDocument(ctx context.Context, doc *model.Document) error
	GetDocument(ctx context.Context, id string) (*model.Document, error)
	GetDocumentByPath(ctx context.Context, logID, path string) (*model.Document, error)
	// ListDocuments returns a log's documents newest upload first.
	ListDocuments(ctx context.Context, logID string) ([]model.Document, error)
	ListDocumentsForLogs(ctx context.Context, logIDs []string) ([]model.Document, error)
	DeleteDocument(ctx context.Context, id string) error

	Close() error
}
