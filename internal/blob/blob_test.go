package blob

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/tasklog/internal/calendar"
	"github.com/manav03panchal/tasklog/internal/errors"
)

var ctx = context.Background()

func setupBadger(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := OpenBadger(BadgerOptions{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// =============================================================================
// Path and Content Type Tests
// =============================================================================

func TestObjectPath(t *testing.T) {
	p := ObjectPath("0190-abc", calendar.MustParse("2024-01-02"), "report.pdf")
	assert.Equal(t, "task_0190-abc/2024-01-02/report.pdf", p)
}

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"report.pdf", "application/pdf"},
		{"notes.txt", "text/plain"},
		{"photo.PNG", "image/png"},
		{"photo.jpg", "image/jpeg"},
		{"page.html", "text/html"},
		{"archive.unknownext", DefaultContentType},
		{"README", DefaultContentType},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, ContentTypeFor(tt.filename))
		})
	}
}

// =============================================================================
// BadgerStore Tests
// =============================================================================

func TestBadgerUploadDownload(t *testing.T) {
	s := setupBadger(t)

	require.NoError(t, s.Upload(ctx, "task_1/2024-01-01/a.txt", []byte("hello"), "text/plain", false))

	obj, err := s.Download(ctx, "task_1/2024-01-01/a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), obj.Data)
	assert.Equal(t, "text/plain", obj.ContentType)
	assert.Equal(t, int64(5), obj.Size())
}

func TestBadgerUploadOverwrite(t *testing.T) {
	s := setupBadger(t)
	path := "task_1/2024-01-01/a.txt"

	require.NoError(t, s.Upload(ctx, path, []byte("v1"), "text/plain", false))

	err := s.Upload(ctx, path, []byte("v2"), "text/plain", false)
	assert.ErrorIs(t, err, ErrObjectExists)

	require.NoError(t, s.Upload(ctx, path, []byte("v2"), "text/markdown", true))
	obj, err := s.Download(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(obj.Data))
	assert.Equal(t, "text/markdown", obj.ContentType)
}

func TestBadgerDownloadMissing(t *testing.T) {
	s := setupBadger(t)
	_, err := s.Download(ctx, "nope")
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.NotErrorIs(t, err, errors.ErrStore)
}

func TestBadgerRemove(t *testing.T) {
	s := setupBadger(t)
	require.NoError(t, s.Upload(ctx, "a", []byte("1"), "text/plain", true))
	require.NoError(t, s.Upload(ctx, "b", []byte("2"), "text/plain", true))

	require.NoError(t, s.Remove(ctx, "a", "missing"))

	_, err := s.Download(ctx, "a")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	obj, err := s.Download(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "2", string(obj.Data))

	assert.NoError(t, s.Remove(ctx))
}

func TestBadgerURLUnsupported(t *testing.T) {
	s := setupBadger(t)
	_, err := s.URL(ctx, "a")
	assert.ErrorIs(t, err, ErrNoURL)
}

func TestBadgerPersistsToDisk(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenBadger(BadgerOptions{Path: dir})
	require.NoError(t, err)
	require.NoError(t, s.Upload(ctx, "k", []byte("kept"), "text/plain", true))
	require.NoError(t, s.Close())

	s, err = OpenBadger(BadgerOptions{Path: dir})
	require.NoError(t, err)
	defer s.Close()

	obj, err := s.Download(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "kept", string(obj.Data))
}
