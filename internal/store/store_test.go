package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/tasklog/internal/calendar"
	"github.com/manav03panchal/tasklog/internal/errors"
	"github.com/manav03panchal/tasklog/internal/model"
)

var (
	ctx = context.Background()
	t0  = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
)

func d(s string) calendar.Date { return calendar.MustParse(s) }

// setupTestStore opens a private in-memory database.
func setupTestStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := Open(ctx, Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedTask(t *testing.T, s *SQLStore, name, start, end string) *model.Task {
	t.Helper()
	task := model.NewTask(name, d(start), d(end), t0)
	require.NoError(t, s.InsertTask(ctx, task))
	_, err := s.EnsureLogs(ctx, task.ID, task.Dates())
	require.NoError(t, err)
	return task
}

// =============================================================================
// Open Tests
// =============================================================================

func TestOpenFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tasklog.db")
	s, err := Open(ctx, Options{Driver: DriverSQLite, DSN: path})
	require.NoError(t, err)

	task := model.NewTask("persisted", d("2024-01-01"), d("2024-01-02"), t0)
	require.NoError(t, s.InsertTask(ctx, task))
	require.NoError(t, s.Close())

	// Reopening migrates again without losing data.
	s, err = Open(ctx, Options{Driver: DriverSQLite, DSN: path})
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Name)
}

func TestOpenRejectsBadOptions(t *testing.T) {
	_, err := Open(ctx, Options{Driver: "oracle", DSN: "x"})
	assert.ErrorIs(t, err, errors.ErrValidation)

	_, err = Open(ctx, Options{Driver: DriverPostgres})
	assert.ErrorIs(t, err, errors.ErrValidation)

	_, err = Open(ctx, Options{Driver: DriverSQLite})
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestInMemoryStoresAreIsolated(t *testing.T) {
	a := setupTestStore(t)
	b := setupTestStore(t)

	seedTask(t, a, "only in a", "2024-01-01", "2024-01-01")

	tasks, err := b.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

// =============================================================================
// Task Tests
// =============================================================================

func TestTaskRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	task := seedTask(t, s, "Draft report", "2024-01-01", "2024-01-03")

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, "Draft report", got.Name)
	assert.Equal(t, d("2024-01-01"), got.Start)
	assert.Equal(t, d("2024-01-03"), got.End)
	assert.True(t, t0.Equal(got.UpdatedAt))
}

func TestGetTaskNotFound(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.GetTask(ctx, "missing")
	assert.ErrorIs(t, err, errors.ErrNotFound)
	assert.NotErrorIs(t, err, errors.ErrStore)
}

func TestListTasksByUpdatedAtDesc(t *testing.T) {
	s := setupTestStore(t)
	older := seedTask(t, s, "older", "2024-01-01", "2024-01-01")
	newer := seedTask(t, s, "newer", "2024-01-01", "2024-01-01")
	require.NoError(t, s.TouchTask(ctx, newer.ID, t0.Add(time.Hour)))

	tasks, err := s.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, newer.ID, tasks[0].ID)
	assert.Equal(t, older.ID, tasks[1].ID)

	require.NoError(t, s.TouchTask(ctx, older.ID, t0.Add(2*time.Hour)))
	tasks, err = s.ListTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, older.ID, tasks[0].ID)
}

func TestUpdateTask(t *testing.T) {
	s := setupTestStore(t)
	task := seedTask(t, s, "name", "2024-01-01", "2024-01-03")

	require.NoError(t, s.UpdateTaskName(ctx, task.ID, "renamed", t0.Add(time.Minute)))
	require.NoError(t, s.UpdateTaskRange(ctx, task.ID, d("2024-01-02"), d("2024-01-09"), t0.Add(2*time.Minute)))

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, d("2024-01-02"), got.Start)
	assert.Equal(t, d("2024-01-09"), got.End)
	assert.True(t, t0.Add(2*time.Minute).Equal(got.UpdatedAt))

	err = s.UpdateTaskName(ctx, "missing", "x", t0)
	assert.ErrorIs(t, err, errors.ErrNotFound)
	err = s.TouchTask(ctx, "missing", t0)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

// =============================================================================
// Log Tests
// =============================================================================

func TestEnsureLogsCreatesOnePerDay(t *testing.T) {
	s := setupTestStore(t)
	task := seedTask(t, s, "t", "2024-01-01", "2024-01-03")

	logs, err := s.ListLogs(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, []calendar.Date{d("2024-01-01"), d("2024-01-02"), d("2024-01-03")}, model.LogDates(logs))
	for _, l := range logs {
		assert.Equal(t, "", l.Notes)
		assert.Equal(t, 0, l.Percent)
	}
}

func TestEnsureLogsLeavesExistingRowsUntouched(t *testing.T) {
	s := setupTestStore(t)
	task := seedTask(t, s, "t", "2024-01-01", "2024-01-02")

	first, err := s.GetLogByDate(ctx, task.ID, d("2024-01-01"))
	require.NoError(t, err)
	notes, pct := "halfway", 50
	require.NoError(t, s.UpdateLog(ctx, first.ID, LogUpdate{Notes: &notes, Percent: &pct}))

	created, err := s.EnsureLogs(ctx, task.ID, []calendar.Date{d("2024-01-01"), d("2024-01-02"), d("2024-01-03")})
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	again, err := s.GetLogByDate(ctx, task.ID, d("2024-01-01"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "halfway", again.Notes)
	assert.Equal(t, 50, again.Percent)

	created, err = s.EnsureLogs(ctx, task.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestUpdateLogOnlySuppliedFields(t *testing.T) {
	s := setupTestStore(t)
	task := seedTask(t, s, "t", "2024-01-01", "2024-01-01")
	l, err := s.GetLogByDate(ctx, task.ID, d("2024-01-01"))
	require.NoError(t, err)

	notes := "started"
	require.NoError(t, s.UpdateLog(ctx, l.ID, LogUpdate{Notes: &notes}))
	pct := 40
	require.NoError(t, s.UpdateLog(ctx, l.ID, LogUpdate{Percent: &pct}))

	got, err := s.GetLog(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "started", got.Notes)
	assert.Equal(t, 40, got.Percent)

	assert.NoError(t, s.UpdateLog(ctx, l.ID, LogUpdate{}))
	assert.ErrorIs(t, s.UpdateLog(ctx, "missing", LogUpdate{Percent: &pct}), errors.ErrNotFound)
}

func TestPercentCheckConstraint(t *testing.T) {
	s := setupTestStore(t)
	task := seedTask(t, s, "t", "2024-01-01", "2024-01-01")
	l, err := s.GetLogByDate(ctx, task.ID, d("2024-01-01"))
	require.NoError(t, err)

	bad := 150
	err = s.UpdateLog(ctx, l.ID, LogUpdate{Percent: &bad})
	assert.ErrorIs(t, err, errors.ErrStore)
}

func TestDeleteLogs(t *testing.T) {
	s := setupTestStore(t)
	task := seedTask(t, s, "t", "2024-01-01", "2024-01-05")
	other := seedTask(t, s, "other", "2024-01-01", "2024-01-05")

	n, err := s.DeleteLogs(ctx, task.ID, []calendar.Date{d("2024-01-01"), d("2024-01-05"), d("2024-02-01")})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	logs, err := s.ListLogs(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, []calendar.Date{d("2024-01-02"), d("2024-01-03"), d("2024-01-04")}, model.LogDates(logs))

	otherLogs, err := s.ListLogs(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, otherLogs, 5, "other tasks are untouched")

	n, err = s.DeleteLogs(ctx, task.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestLogsForLongTask(t *testing.T) {
	s := setupTestStore(t)
	task := seedTask(t, s, "long", "2000-01-01", "2024-12-31")
	require.Greater(t, task.Days(), 7000)

	logs, err := s.ListLogs(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, logs, task.Days())
	assert.Equal(t, d("2000-01-01"), logs[0].Date)
	assert.Equal(t, d("2024-12-31"), logs[len(logs)-1].Date)

	// Re-ensuring every day creates nothing.
	created, err := s.EnsureLogs(ctx, task.ID, task.Dates())
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	drop, err := calendar.Expand(d("2000-01-01"), d("2019-12-31"))
	require.NoError(t, err)
	n, err := s.DeleteLogs(ctx, task.ID, drop)
	require.NoError(t, err)
	assert.Equal(t, len(drop), n)

	logs, err = s.ListLogs(ctx, task.ID)
	require.NoError(t, err)
	assert.Len(t, logs, task.Days()-len(drop))
	assert.Equal(t, d("2020-01-01"), logs[0].Date)
}

func TestBatches(t *testing.T) {
	items := make([]int, 1001)
	got := batches(items, 500)
	require.Len(t, got, 3)
	assert.Len(t, got[0], 500)
	assert.Len(t, got[1], 500)
	assert.Len(t, got[2], 1)
	assert.Empty(t, batches([]int{}, 500))
	assert.Len(t, batches(make([]int, 500), 500), 1)
}

func TestGetLogByDateNotFound(t *testing.T) {
	s := setupTestStore(t)
	task := seedTask(t, s, "t", "2024-01-01", "2024-01-01")
	_, err := s.GetLogByDate(ctx, task.ID, d("2024-01-02"))
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

// =============================================================================
// Document Tests
// =============================================================================

func TestUpsertDocumentOverwritesSamePath(t *testing.T) {
	s := setupTestStore(t)
	task := seedTask(t, s, "t", "2024-01-01", "2024-01-01")
	l, err := s.GetLogByDate(ctx, task.ID, d("2024-01-01"))
	require.NoError(t, err)

	path := "task_" + task.ID + "/2024-01-01/report.pdf"
	first := model.NewDocument(l.ID, "report.pdf", path, "application/pdf", 10, t0)
	require.NoError(t, s.UpsertDocument(ctx, first))

	second := model.NewDocument(l.ID, "report.pdf", path, "application/pdf", 20, t0.Add(time.Hour))
	require.NoError(t, s.UpsertDocument(ctx, second))

	docs, err := s.ListDocuments(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1, "same (log, path) keeps one row")
	assert.Equal(t, first.ID, docs[0].ID)
	assert.Equal(t, int64(20), docs[0].Size)
	assert.True(t, t0.Add(time.Hour).Equal(docs[0].UploadedAt))

	byPath, err := s.GetDocumentByPath(ctx, l.ID, path)
	require.NoError(t, err)
	assert.Equal(t, first.ID, byPath.ID)
}

func TestListDocumentsNewestFirst(t *testing.T) {
	s := setupTestStore(t)
	task := seedTask(t, s, "t", "2024-01-01", "2024-01-02")
	logs, err := s.ListLogs(ctx, task.ID)
	require.NoError(t, err)

	a := model.NewDocument(logs[0].ID, "a.txt", "p/a.txt", "text/plain", 1, t0)
	b := model.NewDocument(logs[0].ID, "b.txt", "p/b.txt", "text/plain", 1, t0.Add(time.Minute))
	c := model.NewDocument(logs[1].ID, "c.txt", "p/c.txt", "text/plain", 1, t0.Add(2*time.Minute))
	for _, doc := range []*model.Document{a, b, c} {
		require.NoError(t, s.UpsertDocument(ctx, doc))
	}

	docs, err := s.ListDocuments(ctx, logs[0].ID)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "b.txt", docs[0].Filename)
	assert.Equal(t, "a.txt", docs[1].Filename)

	all, err := s.ListDocumentsForLogs(ctx, []string{logs[0].ID, logs[1].ID})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := s.ListDocumentsForLogs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListDocumentsForManyLogs(t *testing.T) {
	s := setupTestStore(t)
	task := seedTask(t, s, "long", "2000-01-01", "2019-12-31")
	logs, err := s.ListLogs(ctx, task.ID)
	require.NoError(t, err)
	require.Greater(t, len(logs), 2*BatchSize)

	first := model.NewDocument(logs[0].ID, "first.txt", "p/first.txt", "text/plain", 1, t0)
	last := model.NewDocument(logs[len(logs)-1].ID, "last.txt", "p/last.txt", "text/plain", 1, t0.Add(time.Hour))
	require.NoError(t, s.UpsertDocument(ctx, first))
	require.NoError(t, s.UpsertDocument(ctx, last))

	ids := make([]string, len(logs))
	for i, l := range logs {
		ids[i] = l.ID
	}
	docs, err := s.ListDocumentsForLogs(ctx, ids)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "last.txt", docs[0].Filename, "newest first across batches")
	assert.Equal(t, "first.txt", docs[1].Filename)
}

func TestDeleteDocument(t *testing.T) {
	s := setupTestStore(t)
	task := seedTask(t, s, "t", "2024-01-01", "2024-01-01")
	l, err := s.GetLogByDate(ctx, task.ID, d("2024-01-01"))
	require.NoError(t, err)

	doc := model.NewDocument(l.ID, "a.txt", "p/a.txt", "text/plain", 1, t0)
	require.NoError(t, s.UpsertDocument(ctx, doc))

	require.NoError(t, s.DeleteDocument(ctx, doc.ID))
	_, err = s.GetDocument(ctx, doc.ID)
	assert.ErrorIs(t, err, errors.ErrNotFound)
	assert.ErrorIs(t, s.DeleteDocument(ctx, doc.ID), errors.ErrNotFound)
}
