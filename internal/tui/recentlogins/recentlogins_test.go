// ABOUTME: Tests for recent login management
// ABOUTME: Validates ordering, deduplication, limits and bad stored data

package recentlogins

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/EdwinJoye/cda31-dev3-frontend/internal/storage"
)

func newStore(t *testing.T) storage.Storage {
	t.Helper()
	return storage.NewFileStorage(filepath.Join(t.TempDir(), "state.json"))
}

func TestLoadEmpty(t *testing.T) {
	r := New(newStore(t))

	emails, err := r.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(emails) != 0 {
		t.Errorf("expected empty list, got %v", emails)
	}
	if r.Last() != "" {
		t.Errorf("Last() = %q, want empty", r.Last())
	}
}

func TestAddMovesToFront(t *testing.T) {
	store := newStore(t)
	r := New(store)

	for _, e := range []string{"a@x.io", "b@x.io", "a@x.io"} {
		if err := r.Add(e); err != nil {
			t.Fatalf("Add(%q) error: %v", e, err)
		}
	}

	// A fresh manager sees the persisted order
	got := New(store).List()
	want := []string{"a@x.io", "b@x.io"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("List() = %v, want %v", got, want)
	}
}

func TestAddTrimsToMax(t *testing.T) {
	r := New(newStore(t))
	for i := range MaxRecentLogins + 3 {
		if err := r.Add(fmt.Sprintf("user%d@x.io", i)); err != nil {
			t.Fatal(err)
		}
	}

	list := r.List()
	if len(list) != MaxRecentLogins {
		t.Fatalf("expected %d emails, got %d", MaxRecentLogins, len(list))
	}
	if list[0] != fmt.Sprintf("user%d@x.io", MaxRecentLogins+2) {
		t.Errorf("newest email should be first, got %q", list[0])
	}
}

func TestAddIgnoresEmpty(t *testing.T) {
	r := New(newStore(t))
	if err := r.Add(""); err != nil {
		t.Fatal(err)
	}
	if len(r.List()) != 0 {
		t.Errorf("empty email should not be recorded: %v", r.List())
	}
}

func TestLoadInvalidData(t *testing.T) {
	store := newStore(t)
	if err := store.Save(StorageKey, []byte(`{"emails":42}`)); err != nil {
		t.Fatal(err)
	}

	emails, err := New(store).Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(emails) != 0 {
		t.Errorf("invalid data should load as empty, got %v", emails)
	}
}
