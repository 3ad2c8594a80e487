// ABOUTME: Tests for the file and SQLite storage backends
// ABOUTME: Runs the same contract against both and checks file specifics

package storage

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

func backends(t *testing.T) map[string]Storage {
	t.Helper()
	sq, err := NewSQLiteStorage(":memory:", testLogger())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sq.Close() })

	return map[string]Storage{
		"file":   NewFileStorage(filepath.Join(t.TempDir(), "state.json")),
		"sqlite": sq,
	}
}

func TestStorageContract(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := st.Load("auth-storage"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound on empty store, got %v", err)
			}

			value := []byte(`{"token":"abc","authenticated":true}`)
			if err := st.Save("auth-storage", value); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			got, err := st.Load("auth-storage")
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if string(got) != string(value) {
				t.Errorf("expected %s, got %s", value, got)
			}

			updated := []byte(`{"token":null,"authenticated":false}`)
			if err := st.Save("auth-storage", updated); err != nil {
				t.Fatalf("overwrite failed: %v", err)
			}
			got, _ = st.Load("auth-storage")
			if string(got) != string(updated) {
				t.Errorf("expected overwrite %s, got %s", updated, got)
			}

			if err := st.Delete("auth-storage"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if _, err := st.Load("auth-storage"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound after delete, got %v", err)
			}
			if err := st.Delete("auth-storage"); err != nil {
				t.Errorf("deleting a missing key should succeed, got %v", err)
			}
		})
	}
}

func TestStorageKeepsKeysIndependent(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			st.Save("a", []byte(`1`))
			st.Save("b.c", []byte(`"two"`))

			a, err := st.Load("a")
			if err != nil || string(a) != "1" {
				t.Errorf("expected a=1, got %s (%v)", a, err)
			}
			b, err := st.Load("b.c")
			if err != nil || string(b) != `"two"` {
				t.Errorf("expected b.c=\"two\", got %s (%v)", b, err)
			}
		})
	}
}

func TestFileStorage_Permissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "intranet")
	fs := NewFileStorage(filepath.Join(dir, "state.json"))

	if err := fs.Save("auth-storage", []byte(`{}`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(fs.Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected file mode 0600, got %o", perm)
	}
	dirInfo, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat dir: %v", err)
	}
	if perm := dirInfo.Mode().Perm(); perm != 0700 {
		t.Errorf("expected dir mode 0700, got %o", perm)
	}
}

func TestFileStorage_CorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("not json{"), 0600); err != nil {
		t.Fatal(err)
	}
	fs := NewFileStorage(path)

	if _, err := fs.Load("auth-storage"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for corrupt file, got %v", err)
	}
	if err := fs.Save("auth-storage", []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("Save over corrupt file failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !bytes.Contains(data, []byte(`"auth-storage"`)) {
		t.Errorf("expected rewritten document, got %s", data)
	}
}

func TestFileStorage_RejectsInvalidJSON(t *testing.T) {
	fs := NewFileStorage(filepath.Join(t.TempDir(), "state.json"))
	if err := fs.Save("k", []byte("{oops")); err == nil {
		t.Error("expected error for invalid JSON value")
	}
}

func TestNewSQLiteStorage_NilLogger(t *testing.T) {
	st, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "state.db"), nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer st.Close()

	if err := st.Save("k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := st.Load("k"); err != nil {
		t.Errorf("load: %v", err)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		backend string
		wantErr bool
	}{
		{"", false},
		{BackendFile, false},
		{BackendSQLite, false},
		{"redis", true},
	}

	for _, tc := range tests {
		t.Run(tc.backend, func(t *testing.T) {
			st, err := Open(tc.backend, dir, testLogger())
			if tc.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			defer st.Close()
			if err := st.Save("k", []byte(`true`)); err != nil {
				t.Errorf("Save failed: %v", err)
			}
		})
	}
}
