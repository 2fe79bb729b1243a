package blob

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	badger "github.com/dgraph-io/badger/v4"

	tlerrors "github.com/manav03panchal/tasklog/internal/errors"
)

const (
	objectPrefix      = "obj/"
	contentTypePrefix = "ctype/"
)

// DefaultBadgerPath returns the default blob directory following the XDG spec.
func DefaultBadgerPath(app string) string {
	return filepath.Join(xdg.DataHome, app, "blobs")
}

// BadgerOptions configures OpenBadger.
type BadgerOptions struct {
	// Path is the database directory. Empty uses in-memory mode.
	Path string
	// InMemory forces in-memory mode regardless of Path.
	InMemory bool
}

// BadgerStore keeps objects in a local Badger database.
type BadgerStore struct {
	db *badger.DB
}

var _ Store = (*BadgerStore)(nil)

// OpenBadger opens or creates a blob database.
func OpenBadger(opts BadgerOptions) (*BadgerStore, error) {
	var badgerOpts badger.Options

	if opts.InMemory || opts.Path == "" {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(opts.Path, 0o755); err != nil {
			return nil, tlerrors.NewStoreError("create blob directory", err)
		}
		badgerOpts = badger.DefaultOptions(opts.Path)
	}

	// Reduce logging noise
	badgerOpts = badgerOpts.WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, tlerrors.NewStoreError("open blob store", err)
	}
	return &BadgerStore{db: db}, nil
}

// Upload writes the object and its content type in one transaction.
func (s *BadgerStore) Upload(_ context.Context, path string, data []byte, contentType string, overwrite bool) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if !overwrite {
			_, err := txn.Get([]byte(objectPrefix + path))
			if err == nil {
				return ErrObjectExists
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		if err := txn.Set([]byte(objectPrefix+path), data); err != nil {
			return err
		}
		return txn.Set([]byte(contentTypePrefix+path), []byte(contentType))
	})
	if errors.Is(err, ErrObjectExists) {
		return err
	}
	return tlerrors.NewStoreError("upload "+path, err)
}

// Download reads an object.
func (s *BadgerStore) Download(_ context.Context, path string) (*Object, error) {
	obj := &Object{Path: path, ContentType: DefaultContentType}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(objectPrefix + path))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrObjectNotFound
			}
			return err
		}
		if obj.Data, err = item.ValueCopy(nil); err != nil {
			return err
		}

		ct, err := txn.Get([]byte(contentTypePrefix + path))
		if err == nil {
			return ct.Value(func(val []byte) error {
				obj.ContentType = string(val)
				return nil
			})
		}
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, err
		}
		return nil, tlerrors.NewStoreError("download "+path, err)
	}
	return obj, nil
}

// Remove deletes objects and their content types.
func (s *BadgerStore) Remove(_ context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, p := range paths {
			if err := txn.Delete([]byte(objectPrefix + p)); err != nil {
				return err
			}
			if err := txn.Delete([]byte(contentTypePrefix + p)); err != nil {
				return err
			}
		}
		return nil
	})
	return tlerrors.NewStoreError("remove objects", err)
}

// URL is not available for local storage.
func (s *BadgerStore) URL(_ context.Context, _ string) (string, error) {
	return "", ErrNoURL
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return tlerrors.NewStoreError("close blob store", s.db.Close())
}
