// Package blob stores document content by object path.
//
// Two backends implement Store: BadgerStore keeps objects in a local Badger
// database, S3Store talks to any S3-compatible object storage (AWS S3,
// Supabase Storage, MinIO). Missing objects are reported as ErrObjectNotFound
// so callers can tell content drift apart from a failed call, which is
// returned as *errors.StoreError.
package blob

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/manav03panchal/tasklog/internal/calendar"
)

var (
	// ErrObjectNotFound is returned when no object exists at a path.
	ErrObjectNotFound = errors.New("object not found")
	// ErrObjectExists is returned by a non-overwriting upload onto an existing path.
	ErrObjectExists = errors.New("object already exists")
	// ErrNoURL is returned by backends that cannot hand out links.
	ErrNoURL = errors.New("blob store cannot produce URLs")
)

// DefaultContentType is used when the file extension is unknown.
const DefaultContentType = "application/octet-stream"

// Object is stored content with its metadata.
type Object struct {
	Path        string
	ContentType string
	Data        []byte
}

// Size returns the content length in bytes.
func (o *Object) Size() int64 { return int64(len(o.Data)) }

// Store is an object store keyed by path.
type Store interface {
	// Upload writes data at path. With overwrite false an existing object
	// fails the call with ErrObjectExists.
	Upload(ctx context.Context, path string, data []byte, contentType string, overwrite bool) error
	Download(ctx context.Context, path string) (*Object, error)
	// Remove deletes the objects. Paths that do not exist are ignored.
	Remove(ctx context.Context, paths ...string) error
	// URL returns a link a browser can download the object from.
	URL(ctx context.Context, path string) (string, error)
	Close() error
}

// ObjectPath returns the storage key for a file attached to a task's day:
// task_{taskID}/{YYYY-MM-DD}/{filename}.
func ObjectPath(taskID string, date calendar.Date, filename string) string {
	return fmt.Sprintf("task_%s/%s/%s", taskID, date, filename)
}

// ContentTypeFor guesses a MIME type from the file extension.
func ContentTypeFor(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		return DefaultContentType
	}
	t := mime.TypeByExtension(ext)
	if t == "" {
		return DefaultContentType
	}
	// Drop parameters such as "; charset=utf-8".
	if media, _, err := mime.ParseMediaType(t); err == nil {
		return media
	}
	return t
}
