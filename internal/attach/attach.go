// Package attach manages documents attached to a task's daily logs. Content
// lives in the blob store under task_{taskID}/{date}/{filename}; metadata
// lives in the data store, one row per (log, path).
package attach

import (
	"context"
	"time"

	"github.com/manav03panchal/tasklog/internal/blob"
	"github.com/manav03panchal/tasklog/internal/calendar"
	"github.com/manav03panchal/tasklog/internal/errors"
	"github.com/manav03panchal/tasklog/internal/logging"
	"github.com/manav03panchal/tasklog/internal/model"
	"github.com/manav03panchal/tasklog/internal/store"
	"github.com/manav03panchal/tasklog/internal/syncer"
	"github.com/manav03panchal/tasklog/internal/validate"
)

// Options configures a Manager.
type Options struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Manager attaches, lists, fetches and removes documents.
type Manager struct {
	data  store.DataStore
	blobs blob.Store
	now   func() time.Time
}

// NewManager creates a Manager over the two stores.
func NewManager(data store.DataStore, blobs blob.Store, opts Options) *Manager {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{data: data, blobs: blobs, now: now}
}

// AttachDocument uploads Content as Filename on the log's day.
type AttachDocument struct {
	LogID    string `validate:"required"`
	Filename string
	Content  []byte
}

// DayDocuments groups a task's documents by log.
type DayDocuments struct {
	Date      calendar.Date    `json:"date"`
	LogID     string           `json:"log_id"`
	Documents []model.Document `json:"documents"`
}

// Attach uploads the content, overwriting any object at the same path, then
// upserts the metadata row and reads it back. Re-attaching the same filename
// to the same day replaces the content and keeps a single row.
func (m *Manager) Attach(ctx context.Context, cmd AttachDocument) (*model.Document, error) {
	if err := validate.Struct(cmd); err != nil {
		return nil, err
	}
	filename, err := validate.Filename(cmd.Filename)
	if err != nil {
		return nil, err
	}

	l, err := m.data.GetLog(ctx, cmd.LogID)
	if err != nil {
		return nil, err
	}

	ctx = logging.WithTask(ctx, l.TaskID)
	path := blob.ObjectPath(l.TaskID, l.Date, filename)
	contentType := blob.ContentTypeFor(filename)
	doc := model.NewDocument(l.ID, filename, path, contentType, int64(len(cmd.Content)), m.now())

	var saved *model.Document
	_, err = syncer.New("attach_document").
		Step("upload_blob", func(ctx context.Context) error {
			return m.blobs.Upload(ctx, path, cmd.Content, contentType, true)
		}).
		Step("upsert_metadata", func(ctx context.Context) error {
			return m.data.UpsertDocument(ctx, doc)
		}).
		Step("read_back", func(ctx context.Context) error {
			saved, err = m.data.GetDocumentByPath(ctx, l.ID, path)
			return err
		}).
		Run(ctx)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Debug("document attached",
		logging.KeyDocument, saved.ID, logging.KeyPath, path, logging.KeyCount, len(cmd.Content))
	return saved, nil
}

// Get returns a document's metadata.
func (m *Manager) Get(ctx context.Context, id string) (*model.Document, error) {
	return m.data.GetDocument(ctx, id)
}

// List returns a log's documents, newest upload first.
func (m *Manager) List(ctx context.Context, logID string) ([]model.Document, error) {
	return m.data.ListDocuments(ctx, logID)
}

// ListForTask returns every day of the task that has documents, in date order.
func (m *Manager) ListForTask(ctx context.Context, taskID string) ([]DayDocuments, error) {
	logs, err := m.data.ListLogs(ctx, taskID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(logs))
	for i, l := range logs {
		ids[i] = l.ID
	}
	docs, err := m.data.ListDocumentsForLogs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byLog := make(map[string][]model.Document, len(logs))
	for _, d := range docs {
		byLog[d.LogID] = append(byLog[d.LogID], d)
	}

	var out []DayDocuments
	for _, l := range logs {
		if ds := byLog[l.ID]; len(ds) > 0 {
			out = append(out, DayDocuments{Date: l.Date, LogID: l.ID, Documents: ds})
		}
	}
	return out, nil
}

// Fetch returns a document with its content. A missing metadata row is a
// NotFoundError; a row whose content is gone is a BlobMissingError.
func (m *Manager) Fetch(ctx context.Context, id string) (*model.Document, *blob.Object, error) {
	doc, err := m.data.GetDocument(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	obj, err := m.blobs.Download(ctx, doc.Path)
	if errors.Is(err, blob.ErrObjectNotFound) {
		logging.FromContext(ctx).Warn("document content missing",
			logging.KeyDocument, doc.ID, logging.KeyPath, doc.Path)
		return doc, nil, &errors.BlobMissingError{DocumentID: doc.ID, Path: doc.Path, Err: err}
	}
	if err != nil {
		return doc, nil, err
	}
	return doc, obj, nil
}

// URL returns a download link for the document.
func (m *Manager) URL(ctx context.Context, id string) (string, error) {
	doc, err := m.data.GetDocument(ctx, id)
	if err != nil {
		return "", err
	}

	u, err := m.blobs.URL(ctx, doc.Path)
	if errors.Is(err, blob.ErrNoURL) {
		return "", errors.NewUserError("local document storage has no download links",
			"Use 'tasklog doc get "+doc.ID+" -o FILE' to save the file instead.")
	}
	return u, err
}

// Remove deletes a document. The blob delete is best effort and reported as a
// warning; the metadata delete must succeed.
func (m *Manager) Remove(ctx context.Context, id string) (*syncer.Report, error) {
	doc, err := m.data.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	return syncer.New("remove_document").
		BestEffort("remove_blob", func(ctx context.Context) error {
			return m.blobs.Remove(ctx, doc.Path)
		}).
		Step("delete_metadata", func(ctx context.Context) error {
			return m.data.DeleteDocument(ctx, doc.ID)
		}).
		Run(ctx)
}

// RemoveForLogs deletes every document attached to the logs, blobs first.
// It returns how many metadata rows were removed.
func (m *Manager) RemoveForLogs(ctx context.Context, logIDs []string) (int, *syncer.Report, error) {
	docs, err := m.data.ListDocumentsForLogs(ctx, logIDs)
	if err != nil {
		return 0, nil, err
	}
	if len(docs) == 0 {
		return 0, &syncer.Report{Plan: "remove_documents"}, nil
	}

	paths := make([]string, len(docs))
	for i, d := range docs {
		paths[i] = d.Path
	}

	removed := 0
	report, err := syncer.New("remove_documents").
		BestEffort("remove_blobs", func(ctx context.Context) error {
			return m.blobs.Remove(ctx, paths...)
		}).
		Step("delete_metadata", func(ctx context.Context) error {
			for _, d := range docs {
				if err := m.data.DeleteDocument(ctx, d.ID); err != nil && !errors.Is(err, errors.ErrNotFound) {
					return err
				}
				removed++
			}
			return nil
		}).
		Run(ctx)
	return removed, report, err
}
