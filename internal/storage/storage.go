// ABOUTME: Durable key/value persistence for client-side state
// ABOUTME: Selects a JSON file or SQLite backend under the config directory

package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
)

// ErrNotFound is returned by Load when the key has never been saved
var ErrNotFound = errors.New("storage: key not found")

// Backend names accepted by Open
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Storage persists opaque JSON values under string keys
type Storage interface {
	Load(key string) ([]byte, error)
	Save(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// Open returns the storage backend named by backend, rooted at dir.
// An empty backend selects the JSON file.
func Open(backend, dir string, logger *slog.Logger) (Storage, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	switch backend {
	case "", BackendFile:
		return NewFileStorage(filepath.Join(dir, "state.json")), nil
	case BackendSQLite:
		st, err := NewSQLiteStorage(filepath.Join(dir, "state.db"), logger)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want %s or %s)", backend, BackendFile, BackendSQLite)
	}
}
