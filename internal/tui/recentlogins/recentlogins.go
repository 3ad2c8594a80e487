// ABOUTME: Remembers the emails recently used to log in
// ABOUTME: Persists the list through the session storage backend

package recentlogins

import (
	"encoding/json"
	"errors"
	"slices"

	"github.com/EdwinJoye/cda31-dev3-frontend/internal/storage"
)

// StorageKey is the storage entry holding the list
const StorageKey = "recent-logins"

// MaxRecentLogins is the maximum number of emails to keep
const MaxRecentLogins = 5

// RecentLogins manages the list of recently used emails
type RecentLogins struct {
	store  storage.Storage
	emails []string
}

type recentData struct {
	Emails []string `json:"emails"`
}

// New creates a manager backed by store
func New(store storage.Storage) *RecentLogins {
	return &RecentLogins{store: store}
}

// Load reads the list. Missing or invalid data yields an empty list.
func (r *RecentLogins) Load() ([]string, error) {
	data, err := r.store.Load(StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		r.emails = []string{}
		return r.emails, nil
	}
	if err != nil {
		return nil, err
	}

	var recent recentData
	if err := json.Unmarshal(data, &recent); err != nil || recent.Emails == nil {
		r.emails = []string{}
		return r.emails, nil
	}
	r.emails = recent.Emails
	return r.emails, nil
}

// Save writes emails, trimmed to MaxRecentLogins
func (r *RecentLogins) Save(emails []string) error {
	if len(emails) > MaxRecentLogins {
		emails = emails[:MaxRecentLogins]
	}
	r.emails = emails

	data, err := json.Marshal(recentData{Emails: emails})
	if err != nil {
		return err
	}
	return r.store.Save(StorageKey, data)
}

// Add moves email to the front of the list
func (r *RecentLogins) Add(email string) error {
	if email == "" {
		return nil
	}
	if r.emails == nil {
		if _, err := r.Load(); err != nil {
			r.emails = []string{}
		}
	}

	emails := make([]string, 0, len(r.emails)+1)
	emails = append(emails, email)
	for _, e := range r.emails {
		if e != email {
			emails = append(emails, e)
		}
	}
	return r.Save(emails)
}

// Last returns the most recent email, or ""
func (r *RecentLogins) Last() string {
	list := r.List()
	if len(list) == 0 {
		return ""
	}
	return list[0]
}

// List returns the current list
func (r *RecentLogins) List() []string {
	if r.emails == nil {
		r.Load()
	}
	return slices.Clone(r.emails)
}
