package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/tasklog/internal/errors"
)

// isolate points XDG at a temp dir and clears variables that Load reads.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	for _, name := range []string{
		"TASKLOG_DATABASE", "TASKLOG_MEMORY", "TASKLOG_STORE_DRIVER", "TASKLOG_STORE_DSN", "DATABASE_URL",
		"TASKLOG_BLOB_BACKEND", "TASKLOG_BLOB_BUCKET", "SUPABASE_URL", "SUPABASE_KEY", "SUPABASE_BUCKET",
		"AWS_ACCESS_KEY_ID", "AWS_REGION", "TASKLOG_LOG_LEVEL",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	return dir
}

func writeFile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// =============================================================================
// Load Tests
// =============================================================================

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.False(t, cfg.Memory)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, filepath.Join(dir, "data", AppName, "tasklog.db"), cfg.Store.Path)
	assert.Equal(t, BackendBadger, cfg.Blob.Backend)
	assert.Equal(t, DefaultBucket, cfg.Blob.Bucket)
	assert.Equal(t, 15*time.Minute, cfg.Blob.PresignTTL)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Empty(t, cfg.File)
}

func TestLoadFile(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, `
store:
  driver: postgres
  dsn: postgres://app:secret@db:5432/tasks
blob:
  backend: s3
  bucket: docs
  endpoint: http://localhost:9000
  path_style: true
  presign_ttl: 5m
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://app:secret@db:5432/tasks", cfg.Store.DSN)
	assert.Equal(t, BackendS3, cfg.Blob.Backend)
	assert.Equal(t, "docs", cfg.Blob.Bucket)
	assert.True(t, cfg.Blob.PathStyle)
	assert.Equal(t, 5*time.Minute, cfg.Blob.PresignTTL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadDefaultFileLocation(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config", AppName), 0o755))
	writeFile(t, filepath.Join(dir, "config", AppName), "blob:\n  bucket: from-default\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-default", cfg.Blob.Bucket)
	assert.Equal(t, DefaultFile(), cfg.File)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsUserError(err))
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "blob:\n  bucket: from-file\n")
	t.Setenv("TASKLOG_BLOB_BUCKET", "from-env")
	t.Setenv("TASKLOG_LOG_LEVEL", "info")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Blob.Bucket)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadMemoryDatabase(t *testing.T) {
	isolate(t)
	t.Setenv("TASKLOG_DATABASE", MemoryDatabase)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Memory)
}

func TestLoadDatabasePath(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "other.db")
	t.Setenv("TASKLOG_DATABASE", db)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.False(t, cfg.Memory)
	assert.Equal(t, db, cfg.Store.Path)
}

func TestLoadSupabaseVariables(t *testing.T) {
	isolate(t)
	t.Setenv("SUPABASE_URL", "https://xyz.supabase.co/")
	t.Setenv("SUPABASE_KEY", "service-key")
	t.Setenv("SUPABASE_BUCKET", "uploads")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, BackendS3, cfg.Blob.Backend)
	assert.Equal(t, "uploads", cfg.Blob.Bucket)
	assert.Equal(t, "service-key", cfg.Blob.SecretKey)
	assert.Equal(t, "https://xyz.supabase.co/storage/v1/s3", cfg.Blob.Endpoint)
	assert.True(t, cfg.Blob.PathStyle)
	assert.Equal(t, "https://xyz.supabase.co/storage/v1/object/public/uploads", cfg.Blob.PublicURL)
}

func TestLoadSupabaseKeepsExplicitBackend(t *testing.T) {
	isolate(t)
	t.Setenv("SUPABASE_URL", "https://xyz.supabase.co")
	t.Setenv("TASKLOG_BLOB_BACKEND", BackendBadger)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, BackendBadger, cfg.Blob.Backend)
}

// =============================================================================
// Validate Tests
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown_driver", func(c *Config) { c.Store.Driver = "mysql" }, "store.driver"},
		{"postgres_without_dsn", func(c *Config) { c.Store.Driver = DriverPostgres }, "store.dsn"},
		{"unknown_backend", func(c *Config) { c.Blob.Backend = "ftp" }, "blob.backend"},
		{"s3_without_bucket", func(c *Config) { c.Blob.Backend = BackendS3; c.Blob.Bucket = "" }, "blob.bucket"},
		{"bad_level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()

			var ve *errors.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestValidateMemorySkipsPaths(t *testing.T) {
	cfg := Default()
	cfg.Memory = true
	cfg.Store.Path = ""
	cfg.Blob.Path = ""
	assert.NoError(t, cfg.Validate())
}

// =============================================================================
// Conversion Tests
// =============================================================================

func TestLogging(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "debug"
	cfg.Log.JSON = true
	cfg.Log.File = "/tmp/tasklog.log"

	lc := cfg.Logging()
	assert.Equal(t, "DEBUG", lc.Level.String())
	assert.True(t, lc.JSON)
	assert.Equal(t, "/tmp/tasklog.log", lc.File)
	assert.Equal(t, 10, lc.MaxSizeMB)
}

func TestMasked(t *testing.T) {
	cfg := Default()
	cfg.Store.DSN = "postgres://app:secret@db:5432/tasks"
	cfg.Blob.AccessKey = "AKIAEXAMPLE"
	cfg.Blob.SecretKey = "very-secret"

	m := cfg.Masked()
	assert.NotContains(t, m.Store.DSN, "secret")
	assert.Contains(t, m.Store.DSN, "db:5432")
	assert.NotEqual(t, cfg.Blob.SecretKey, m.Blob.SecretKey)
	assert.True(t, len(m.Blob.AccessKey) > 4 && m.Blob.AccessKey[:4] == "AKIA")
	assert.Equal(t, "very-secret", cfg.Blob.SecretKey, "the original is untouched")
}
