// Package config loads tasklog settings from an optional YAML file and the
// environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/manav03panchal/tasklog/internal/errors"
	"github.com/manav03panchal/tasklog/internal/logging"
)

// AppName names the XDG directories and the environment prefix.
const AppName = "tasklog"

// EnvPrefix prefixes every environment override, e.g. TASKLOG_STORE_DRIVER.
const EnvPrefix = "TASKLOG"

// MemoryDatabase as the TASKLOG_DATABASE value keeps all data in memory.
const MemoryDatabase = ":memory:"

// Backends.
const (
	BackendBadger = "badger"
	BackendS3     = "s3"
)

// Drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultBucket is the bucket documents are stored in unless configured.
const DefaultBucket = "task-files"

// Config holds all settings for one invocation.
type Config struct {
	// Memory keeps the relational and blob stores in memory.
	Memory bool        `mapstructure:"memory" yaml:"memory" json:"memory"`
	Store  StoreConfig `mapstructure:"store" yaml:"store" json:"store"`
	Blob   BlobConfig  `mapstructure:"blob" yaml:"blob" json:"blob"`
	Log    LogConfig   `mapstructure:"log" yaml:"log" json:"log"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-" yaml:"-" json:"-"`
}

// StoreConfig selects the relational store.
type StoreConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver" json:"driver"`
	// DSN is the postgres connection string.
	DSN string `mapstructure:"dsn" yaml:"dsn" json:"dsn"`
	// Path is the sqlite database file.
	Path string `mapstructure:"path" yaml:"path" json:"path"`
}

// BlobConfig selects the document store.
type BlobConfig struct {
	Backend    string        `mapstructure:"backend" yaml:"backend" json:"backend"`
	Path       string        `mapstructure:"path" yaml:"path" json:"path"`
	Bucket     string        `mapstructure:"bucket" yaml:"bucket" json:"bucket"`
	Region     string        `mapstructure:"region" yaml:"region" json:"region"`
	Endpoint   string        `mapstructure:"endpoint" yaml:"endpoint" json:"endpoint"`
	AccessKey  string        `mapstructure:"access_key" yaml:"access_key" json:"access_key"`
	SecretKey  string        `mapstructure:"secret_key" yaml:"secret_key" json:"secret_key"`
	PublicURL  string        `mapstructure:"public_url" yaml:"public_url" json:"public_url"`
	PathStyle  bool          `mapstructure:"path_style" yaml:"path_style" json:"path_style"`
	PresignTTL time.Duration `mapstructure:"presign_ttl" yaml:"presign_ttl" json:"presign_ttl"`
}

// LogConfig controls diagnostics written to stderr or a rotated file.
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level" json:"level"`
	JSON       bool   `mapstructure:"json" yaml:"json" json:"json"`
	File       string `mapstructure:"file" yaml:"file" json:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups" json:"max_backups"`
}

// DataDir returns the default data directory following the XDG spec.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// DefaultFile returns the default config file path.
func DefaultFile() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// Default returns the built-in configuration: sqlite and badger under the
// XDG data directory.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Driver: DriverSQLite,
			Path:   filepath.Join(DataDir(), "tasklog.db"),
		},
		Blob: BlobConfig{
			Backend:    BackendBadger,
			Path:       filepath.Join(DataDir(), "blobs"),
			Bucket:     DefaultBucket,
			Region:     "us-east-1",
			PresignTTL: 15 * time.Minute,
		},
		Log: LogConfig{
			Level:      "warn",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Load reads path (or the default config file when path is empty and it
// exists) and applies environment overrides. A missing default file is not
// an error; a missing explicit file is.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, Default())
	if err := bindEnv(v); err != nil {
		return nil, errors.NewSystemErrorWithOp("config", "cannot bind environment variables", err)
	}

	file := path
	if file == "" {
		if _, err := os.Stat(DefaultFile()); err == nil {
			file = DefaultFile()
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewUserError(
				fmt.Sprintf("cannot read config file %s: %v", file, err),
				"Check the file exists and is valid YAML.",
			)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.NewUserError(
			fmt.Sprintf("invalid configuration: %v", err),
			"Check value types in the config file and TASKLOG_* variables.",
		)
	}
	cfg.File = v.ConfigFileUsed()

	applyDatabaseEnv(cfg)
	applySupabase(cfg, v.InConfig("blob.backend") || os.Getenv(EnvPrefix+"_BLOB_BACKEND") != "")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("memory", d.Memory)
	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.dsn", d.Store.DSN)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("blob.backend", d.Blob.Backend)
	v.SetDefault("blob.path", d.Blob.Path)
	v.SetDefault("blob.bucket", d.Blob.Bucket)
	v.SetDefault("blob.region", d.Blob.Region)
	v.SetDefault("blob.endpoint", d.Blob.Endpoint)
	v.SetDefault("blob.access_key", d.Blob.AccessKey)
	v.SetDefault("blob.secret_key", d.Blob.SecretKey)
	v.SetDefault("blob.public_url", d.Blob.PublicURL)
	v.SetDefault("blob.path_style", d.Blob.PathStyle)
	v.SetDefault("blob.presign_ttl", d.Blob.PresignTTL)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
}

// bindEnv accepts the variable names of the hosted deployment as fallbacks.
func bindEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"blob.bucket":     {"TASKLOG_BLOB_BUCKET", "SUPABASE_BUCKET"},
		"blob.secret_key": {"TASKLOG_BLOB_SECRET_KEY", "SUPABASE_KEY"},
		"blob.access_key": {"TASKLOG_BLOB_ACCESS_KEY", "AWS_ACCESS_KEY_ID"},
		"blob.region":     {"TASKLOG_BLOB_REGION", "AWS_REGION"},
		"store.dsn":       {"TASKLOG_STORE_DSN", "DATABASE_URL"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return err
		}
	}
	return nil
}

// applyDatabaseEnv honours TASKLOG_DATABASE: ":memory:" keeps everything in
// memory, any other value is the sqlite file.
func applyDatabaseEnv(cfg *Config) {
	db := os.Getenv(EnvPrefix + "_DATABASE")
	switch db {
	case "":
	case MemoryDatabase:
		cfg.Memory = true
	default:
		cfg.Store.Driver = DriverSQLite
		cfg.Store.Path = db
	}
}

// applySupabase derives the S3 endpoint and public URL from SUPABASE_URL.
// The blob backend switches to s3 unless one was chosen explicitly.
func applySupabase(cfg *Config, backendChosen bool) {
	base := strings.TrimRight(os.Getenv("SUPABASE_URL"), "/")
	if base == "" {
		return
	}
	if !backendChosen {
		cfg.Blob.Backend = BackendS3
	}
	if cfg.Blob.Endpoint == "" {
		cfg.Blob.Endpoint = base + "/storage/v1/s3"
		cfg.Blob.PathStyle = true
	}
	if cfg.Blob.PublicURL == "" {
		cfg.Blob.PublicURL = base + "/storage/v1/object/public/" + cfg.Blob.Bucket
	}
}

// Validate rejects unknown drivers and backends and incomplete settings.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.Path == "" && !c.Memory {
			return errors.NewValidationError("store.path", "sqlite needs a database file path")
		}
	case DriverPostgres:
		if c.Store.DSN == "" && !c.Memory {
			return errors.NewValidationError("store.dsn", "postgres needs a connection string")
		}
	default:
		return errors.NewValidationError("store.driver", fmt.Sprintf("unknown driver %q (use sqlite or postgres)", c.Store.Driver))
	}

	switch c.Blob.Backend {
	case BackendBadger:
		if c.Blob.Path == "" && !c.Memory {
			return errors.NewValidationError("blob.path", "badger needs a directory")
		}
	case BackendS3:
		if c.Blob.Bucket == "" {
			return errors.NewValidationError("blob.bucket", "s3 needs a bucket")
		}
	default:
		return errors.NewValidationError("blob.backend", fmt.Sprintf("unknown backend %q (use badger or s3)", c.Blob.Backend))
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		return errors.NewValidationError("log.level", err.Error())
	}
	return nil
}

// Logging converts the log section into a logger configuration.
func (c *Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	if level, err := parseLevel(c.Log.Level); err == nil {
		cfg.Level = level
	}
	cfg.JSON = c.Log.JSON
	cfg.File = c.Log.File
	cfg.MaxSizeMB = c.Log.MaxSizeMB
	cfg.MaxBackups = c.Log.MaxBackups
	return cfg
}

// Masked returns a copy safe to print.
func (c *Config) Masked() *Config {
	m := *c
	m.Store.DSN = logging.MaskDSN(c.Store.DSN)
	if c.Blob.AccessKey != "" {
		m.Blob.AccessKey = logging.MaskPartial(c.Blob.AccessKey, 4)
	}
	if c.Blob.SecretKey != "" {
		m.Blob.SecretKey = logging.MaskValue(c.Blob.SecretKey)
	}
	return &m
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(s))
	return level, err
}
