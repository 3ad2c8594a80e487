// ABOUTME: JSON file storage backend
// ABOUTME: Keeps every key as a top-level member of one state document

package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// FileStorage stores all keys in a single JSON object on disk
type FileStorage struct {
	mu   sync.Mutex
	path string
}

// NewFileStorage creates a FileStorage backed by path. The file is created on first Save.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Path returns the location of the state document
func (fs *FileStorage) Path() string {
	return fs.path
}

// read returns the current document, or "{}" when missing or corrupt
func (fs *FileStorage) read() ([]byte, error) {
	data, err := os.ReadFile(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		return []byte("{}"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fs.path, err)
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		// Invalid JSON, start fresh
		return []byte("{}"), nil
	}
	return data, nil
}

// write replaces the document atomically
func (fs *FileStorage) write(data []byte) error {
	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmpName, fs.path)
}

// Load implements Storage
func (fs *FileStorage) Load(key string) ([]byte, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	doc, err := fs.read()
	if err != nil {
		return nil, err
	}
	res := gjson.GetBytes(doc, escapeKey(key))
	if !res.Exists() {
		return nil, ErrNotFound
	}
	return []byte(res.Raw), nil
}

// Save implements Storage. value must be valid JSON.
func (fs *FileStorage) Save(key string, value []byte) error {
	if !gjson.ValidBytes(value) {
		return fmt.Errorf("save %q: value is not valid JSON", key)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	doc, err := fs.read()
	if err != nil {
		return err
	}
	doc, err = sjson.SetRawBytes(doc, escapeKey(key), value)
	if err != nil {
		return fmt.Errorf("save %q: %w", key, err)
	}
	return fs.write(doc)
}

// Delete implements Storage. Deleting a missing key is not an error.
func (fs *FileStorage) Delete(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	doc, err := fs.read()
	if err != nil {
		return err
	}
	path := escapeKey(key)
	if !gjson.GetBytes(doc, path).Exists() {
		return nil
	}
	doc, err = sjson.DeleteBytes(doc, path)
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return fs.write(doc)
}

// Close implements Storage
func (fs *FileStorage) Close() error {
	return nil
}

// escapeKey turns a literal key into a gjson/sjson path
func escapeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', '!', '=', '<', '>', '%', ':':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
