// Package runtime wires configuration, stores and services for one tasklog
// invocation.
package runtime

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/manav03panchal/tasklog/internal/attach"
	"github.com/manav03panchal/tasklog/internal/blob"
	"github.com/manav03panchal/tasklog/internal/config"
	"github.com/manav03panchal/tasklog/internal/logging"
	"github.com/manav03panchal/tasklog/internal/output"
	"github.com/manav03panchal/tasklog/internal/store"
	"github.com/manav03panchal/tasklog/internal/tracker"
)

// Context holds the application runtime context.
type Context struct {
	Config    *config.Config
	Formatter *output.Formatter

	Data  store.DataStore
	Blobs blob.Store

	Tasks *tracker.Service
	Docs  *attach.Manager

	// Now is the clock shared by every service.
	Now func() time.Time

	// Debug mode
	Debug bool

	lock *store.FileLock
}

// Options configures the runtime context.
type Options struct {
	// ConfigPath is an explicit config file; empty uses the default location.
	ConfigPath string
	// Config, when set, is used instead of loading one.
	Config    *config.Config
	Format    output.Format
	ColorMode output.ColorMode
	Debug     bool
	Now       func() time.Time
}

// DefaultOptions returns default runtime options.
func DefaultOptions() Options {
	return Options{
		Format:    output.FormatCLI,
		ColorMode: output.ColorAuto,
	}
}

// New loads configuration and opens the data and blob stores. Local
// backends are guarded by a lock file so only one process uses them.
func New(ctx context.Context, opts Options) (*Context, error) {
	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(opts.ConfigPath); err != nil {
			return nil, err
		}
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	formatter := output.NewFormatter()
	if opts.Format != "" {
		formatter.Format = opts.Format
	}
	if opts.ColorMode != "" {
		formatter.ColorMode = opts.ColorMode
	}

	rc := &Context{
		Config:    cfg,
		Formatter: formatter,
		Now:       now,
		Debug:     opts.Debug,
	}

	if dir := lockDir(cfg); dir != "" {
		rc.lock = store.NewFileLock(dir)
		if err := rc.lock.Acquire(); err != nil {
			return nil, err
		}
	}

	data, err := store.Open(ctx, storeOptions(cfg))
	if err != nil {
		rc.Close()
		return nil, err
	}
	rc.Data = data

	blobs, err := openBlobs(ctx, cfg)
	if err != nil {
		rc.Close()
		return nil, err
	}
	rc.Blobs = blobs

	rc.Docs = attach.NewManager(data, blobs, attach.Options{Now: now})
	rc.Tasks = tracker.NewService(data, rc.Docs, tracker.Options{Now: now})

	logging.FromContext(ctx).Debug("runtime ready",
		"store", cfg.Store.Driver, "blob", cfg.Blob.Backend, "memory", cfg.Memory)
	return rc, nil
}

// lockDir returns the directory to lock, or "" when nothing local is opened.
func lockDir(cfg *config.Config) string {
	if cfg.Memory {
		return ""
	}
	if cfg.Store.Driver == config.DriverSQLite {
		return filepath.Dir(cfg.Store.Path)
	}
	if cfg.Blob.Backend == config.BackendBadger {
		return filepath.Dir(cfg.Blob.Path)
	}
	return ""
}

func storeOptions(cfg *config.Config) store.Options {
	opts := store.Options{Driver: cfg.Store.Driver, InMemory: cfg.Memory}
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		opts.DSN = cfg.Store.Path
	case config.DriverPostgres:
		opts.DSN = cfg.Store.DSN
	}
	return opts
}

func openBlobs(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	if cfg.Blob.Backend == config.BackendS3 {
		s, err := blob.NewS3Store(ctx, blob.S3Options{
			Bucket:     cfg.Blob.Bucket,
			Region:     cfg.Blob.Region,
			Endpoint:   cfg.Blob.Endpoint,
			AccessKey:  cfg.Blob.AccessKey,
			SecretKey:  cfg.Blob.SecretKey,
			PublicURL:  cfg.Blob.PublicURL,
			PathStyle:  cfg.Blob.PathStyle,
			PresignTTL: cfg.Blob.PresignTTL,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	s, err := blob.OpenBadger(blob.BadgerOptions{Path: cfg.Blob.Path, InMemory: cfg.Memory})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the stores and releases the lock.
func (c *Context) Close() error {
	var errs []error
	if c.Blobs != nil {
		errs = append(errs, c.Blobs.Close())
	}
	if c.Data != nil {
		errs = append(errs, c.Data.Close())
	}
	if c.lock != nil {
		errs = append(errs, c.lock.Release())
	}
	return errors.Join(errs...)
}

// CLIFormatter returns a CLI formatter.
func (c *Context) CLIFormatter() *output.CLIFormatter {
	return output.NewCLIFormatter(c.Formatter)
}

// JSONFormatter returns a JSON formatter.
func (c *Context) JSONFormatter() *output.JSONFormatter {
	return output.NewJSONFormatter(c.Formatter)
}

// IsJSON returns true if output format is JSON.
func (c *Context) IsJSON() bool {
	return c.Formatter.Format == output.FormatJSON
}

// IsCLI returns true if output format is CLI.
func (c *Context) IsCLI() bool {
	return c.Formatter.Format == output.FormatCLI
}

// Debugf prints debug output if debug mode is enabled.
func (c *Context) Debugf(format string, args ...any) {
	if c.Debug {
		c.Formatter.Printf("[DEBUG] "+format+"\n", args...)
	}
}
