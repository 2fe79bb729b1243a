package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"

	"github.com/manav03panchal/tasklog/internal/logging"
)

// =============================================================================
// Gorm Logger Tests
// =============================================================================

func TestTraceTruncatesFailedStatement(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: slog.LevelDebug, JSON: true, Output: &buf})
	t.Cleanup(func() { logging.Init(logging.DefaultConfig()) })

	stmt := "INSERT INTO logs VALUES " + strings.Repeat("(?,?,?,?,?,?),", 10000)
	l := newGormLogger(gormlogger.Warn, 0)
	l.Trace(logging.WithTask(ctx, "task-1"), time.Now(), func() (string, int64) { return stmt, 0 },
		errors.New("too many SQL variables"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "task-1", entry[logging.KeyTask])
	sql, _ := entry["sql"].(string)
	assert.Len(t, sql, maxLoggedSQL)
	assert.True(t, strings.HasSuffix(sql, "..."))
}

func TestTraceKeepsShortStatement(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: slog.LevelDebug, JSON: true, Output: &buf})
	t.Cleanup(func() { logging.Init(logging.DefaultConfig()) })

	l := newGormLogger(gormlogger.Info, 0)
	l.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "SELECT 1", entry["sql"])
}
