package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/manav03panchal/tasklog/internal/calendar"
	tlerrors "github.com/manav03panchal/tasklog/internal/errors"
	"github.com/manav03panchal/tasklog/internal/model"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SlowQueryThreshold is the duration after which a query is logged as slow.
const SlowQueryThreshold = 200 * time.Millisecond

// BatchSize caps the rows per INSERT and the values per IN list so a long
// task stays under SQLite's and Postgres's bind variable limits.
const BatchSize = 500

// Options configures Open.
type Options struct {
	Driver string // sqlite or postgres
	// DSN is a file path for sqlite and a connection string for postgres.
	DSN string
	// InMemory opens a private in-memory sqlite database; DSN is ignored.
	InMemory bool
}

// SQLStore implements DataStore on a gorm connection.
type SQLStore struct {
	db     *gorm.DB
	driver string
}

var _ DataStore = (*SQLStore)(nil)

// Open connects to the configured database and migrates the schema.
func Open(ctx context.Context, opts Options) (*SQLStore, error) {
	dialector, err := dialectorFor(opts)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   newGormLogger(gormLevel(), SlowQueryThreshold),
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, tlerrors.NewStoreError("open database", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, tlerrors.NewStoreError("open database", err)
	}
	if opts.InMemory || opts.Driver == DriverSQLite || opts.Driver == "" {
		// One writer; an in-memory database lives only as long as its connection.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, tlerrors.NewStoreError("ping database", err)
	}

	s := &SQLStore{db: db, driver: opts.Driver}
	if err := s.Migrate(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return s, nil
}

func dialectorFor(opts Options) (gorm.Dialector, error) {
	if opts.InMemory {
		dsn := fmt.Sprintf("file:memdb_%s?mode=memory&cache=shared", uuid.NewString())
		return sqlite.Open(dsn), nil
	}

	switch opts.Driver {
	case DriverSQLite, "":
		if opts.DSN == "" {
			return nil, tlerrors.NewValidationError("store.dsn", "sqlite needs a database file path")
		}
		if err := os.MkdirAll(filepath.Dir(opts.DSN), 0o755); err != nil {
			return nil, tlerrors.NewStoreError("create data directory", err)
		}
		return sqlite.Open(opts.DSN + "?_busy_timeout=5000&_journal_mode=WAL"), nil
	case DriverPostgres:
		if opts.DSN == "" {
			return nil, tlerrors.NewValidationError("store.dsn", "postgres needs a connection string")
		}
		return postgres.Open(opts.DSN), nil
	default:
		return nil, tlerrors.NewValidationError("store.driver", fmt.Sprintf("unknown driver %q", opts.Driver))
	}
}

// Migrate creates or updates the tasks, logs and docs tables. It is idempotent.
func (s *SQLStore) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(&taskRow{}, &logRow{}, &docRow{})
	return tlerrors.NewStoreError("migrate schema", err)
}

// Close closes the underlying connection pool.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return tlerrors.NewStoreError("close database", err)
	}
	return tlerrors.NewStoreError("close database", sqlDB.Close())
}

// wrap converts a gorm error into the store taxonomy.
func wrap(op, kind, id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tlerrors.NewNotFoundError(kind, id)
	}
	return tlerrors.NewStoreError(op, err)
}

// =============================================================================
// Tasks
// =============================================================================

func (s *SQLStore) InsertTask(ctx context.Context, task *model.Task) error {
	err := s.db.WithContext(ctx).Create(toTaskRow(task)).Error
	return wrap("insert task", "task", task.ID, err)
}

func (s *SQLStore) GetTask(ctx context.Context, id string) (*model.Task, error) {
	var row taskRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, wrap("get task", "task", id, err)
	}
	task := row.toModel()
	return &task, nil
}

func (s *SQLStore) ListTasks(ctx context.Context) ([]model.Task, error) {
	var rows []taskRow
	err := s.db.WithContext(ctx).Order("updated_at DESC").Order("id").Find(&rows).Error
	if err != nil {
		return nil, wrap("list tasks", "task", "", err)
	}

	tasks := make([]model.Task, len(rows))
	for i := range rows {
		tasks[i] = rows[i].toModel()
	}
	return tasks, nil
}

func (s *SQLStore) UpdateTaskName(ctx context.Context, id, name string, now time.Time) error {
	return s.updateTask(ctx, "rename task", id, map[string]any{
		"name":       name,
		"updated_at": now.UTC(),
	})
}

func (s *SQLStore) UpdateTaskRange(ctx context.Context, id string, start, end calendar.Date, now time.Time) error {
	return s.updateTask(ctx, "update task range", id, map[string]any{
		"start_date": start,
		"end_date":   end,
		"updated_at": now.UTC(),
	})
}

func (s *SQLStore) TouchTask(ctx context.Context, id string, now time.Time) error {
	return s.updateTask(ctx, "touch task", id, map[string]any{"updated_at": now.UTC()})
}

func (s *SQLStore) updateTask(ctx context.Context, op, id string, cols map[string]any) error {
	res := s.db.WithContext(ctx).Model(&taskRow{}).Where("id = ?", id).UpdateColumns(cols)
	if res.Error != nil {
		return wrap(op, "task", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return tlerrors.NewNotFoundError("task", id)
	}
	return nil
}

// =============================================================================
// Logs
// =============================================================================

func (s *SQLStore) ListLogs(ctx context.Context, taskID string) ([]model.Log, error) {
	var rows []logRow
	err := s.db.WithContext(ctx).Where("task_id = ?", taskID).Order("log_date").Find(&rows).Error
	if err != nil {
		return nil, wrap("list logs", "task", taskID, err)
	}

	logs := make([]model.Log, len(rows))
	for i := range rows {
		logs[i] = rows[i].toModel()
	}
	return logs, nil
}

func (s *SQLStore) GetLog(ctx context.Context, id string) (*model.Log, error) {
	var row logRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, wrap("get log", "log", id, err)
	}
	l := row.toModel()
	return &l, nil
}

func (s *SQLStore) GetLogByDate(ctx context.Context, taskID string, date calendar.Date) (*model.Log, error) {
	var row logRow
	err := s.db.WithContext(ctx).
		Where("task_id = ? AND log_date = ?", taskID, date).
		First(&row).Error
	if err != nil {
		return nil, wrap("get log", "log", taskID+"/"+date.String(), err)
	}
	l := row.toModel()
	return &l, nil
}

func (s *SQLStore) EnsureLogs(ctx context.Context, taskID string, dates []calendar.Date) (int, error) {
	if len(dates) == 0 {
		return 0, nil
	}

	rows := make([]logRow, len(dates))
	for i, d := range dates {
		rows[i] = logRow{ID: model.NewID(), TaskID: taskID, LogDate: d}
	}

	var created int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, batch := range batches(rows, BatchSize) {
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "task_id"}, {Name: "log_date"}},
				DoNothing: true,
			}).Create(&batch)
			if res.Error != nil {
				return res.Error
			}
			created += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, wrap("insert logs", "task", taskID, err)
	}
	return int(created), nil
}

func (s *SQLStore) UpdateLog(ctx context.Context, id string, update LogUpdate) error {
	if update.Empty() {
		return nil
	}

	cols := make(map[string]any, 2)
	if update.Notes != nil {
		cols["progress"] = *update.Notes
	}
	if update.Percent != nil {
		cols["percent"] = *update.Percent
	}

	res := s.db.WithContext(ctx).Model(&logRow{}).Where("id = ?", id).UpdateColumns(cols)
	if res.Error != nil {
		return wrap("update log", "log", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return tlerrors.NewNotFoundError("log", id)
	}
	return nil
}

func (s *SQLStore) DeleteLogs(ctx context.Context, taskID string, dates []calendar.Date) (int, error) {
	if len(dates) == 0 {
		return 0, nil
	}

	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, batch := range batches(dates, BatchSize) {
			res := tx.Where("task_id = ? AND log_date IN ?", taskID, batch).Delete(&logRow{})
			if res.Error != nil {
				return res.Error
			}
			deleted += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, wrap("delete logs", "task", taskID, err)
	}
	return int(deleted), nil
}

// =============================================================================
// Documents
// =============================================================================

func (s *SQLStore) UpsertDocument(ctx context.Context, doc *model.Document) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "log_id"}, {Name: "path"}},
			DoUpdates: clause.AssignmentColumns([]string{"filename", "content_type", "size", "uploaded_at"}),
		}).
		Create(toDocRow(doc)).Error
	return wrap("upsert document", "document", doc.ID, err)
}

func (s *SQLStore) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	var row docRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, wrap("get document", "document", id, err)
	}
	d := row.toModel()
	return &d, nil
}

func (s *SQLStore) GetDocumentByPath(ctx context.Context, logID, path string) (*model.Document, error) {
	var row docRow
	err := s.db.WithContext(ctx).
		Where("log_id = ? AND path = ?", logID, path).
		First(&row).Error
	if err != nil {
		return nil, wrap("get document", "document", path, err)
	}
	d := row.toModel()
	return &d, nil
}

func (s *SQLStore) ListDocuments(ctx context.Context, logID string) ([]model.Document, error) {
	return listDocuments(s.db.WithContext(ctx).Where("log_id = ?", logID))
}

func (s *SQLStore) ListDocumentsForLogs(ctx context.Context, logIDs []string) ([]model.Document, error) {
	if len(logIDs) == 0 {
		return nil, nil
	}

	var docs []model.Document
	for _, batch := range batches(logIDs, BatchSize) {
		part, err := listDocuments(s.db.WithContext(ctx).Where("log_id IN ?", batch))
		if err != nil {
			return nil, err
		}
		docs = append(docs, part...)
	}
	if len(logIDs) > BatchSize {
		slices.SortStableFunc(docs, newestFirst)
	}
	return docs, nil
}

func listDocuments(q *gorm.DB) ([]model.Document, error) {
	var rows []docRow
	if err := q.Order("uploaded_at DESC").Order("filename").Find(&rows).Error; err != nil {
		return nil, wrap("list documents", "document", "", err)
	}

	docs := make([]model.Document, len(rows))
	for i := range rows {
		docs[i] = rows[i].toModel()
	}
	return docs, nil
}

// newestFirst orders documents the way listDocuments does.
func newestFirst(a, b model.Document) int {
	if c := b.UploadedAt.Compare(a.UploadedAt); c != 0 {
		return c
	}
	return strings.Compare(a.Filename, b.Filename)
}

// batches splits items into consecutive slices of at most size elements.
func batches[T any](items []T, size int) [][]T {
	out := make([][]T, 0, (len(items)+size-1)/size)
	for len(items) > size {
		out = append(out, items[:size:size])
		items = items[size:]
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}

func (s *SQLStore) DeleteDocument(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&docRow{})
	if res.Error != nil {
		return wrap("delete document", "document", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return tlerrors.NewNotFoundError("document", id)
	}
	return nil
}
