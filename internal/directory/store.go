// ABOUTME: In-memory directory of collaborators synchronized with the API
// ABOUTME: Applies server-accepted mutations locally and reports failures as notifications

package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"github.com/EdwinJoye/cda31-dev3-frontend/internal/client"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/notify"
)

// MaxRandomAttempts bounds the retries FetchRandom makes to avoid the
// connected user and the previous random pick
const MaxRandomAttempts = 10

// API is the subset of the intranet client the store calls
type API interface {
	ListUsers(ctx context.Context, token string) ([]client.User, error)
	GetUser(ctx context.Context, token string, id int) (*client.User, error)
	RandomUser(ctx context.Context, token string) (*client.User, error)
	CreateUser(ctx context.Context, token string, input *client.UserInput) (*client.User, error)
	UpdateUser(ctx context.Context, token string, id int, patch *client.UserPatch) error
	DeleteUser(ctx context.Context, token string, id int) error
}

// Session supplies the bearer token and connected user at call time
type Session interface {
	Token() string
	ConnectedUser() *client.User
}

// profileUpdater is implemented by sessions that cache the connected profile
type profileUpdater interface {
	UpdateConnectedUser(u client.User)
}

// Store is the in-memory source of truth for the directory
type Store struct {
	api      API
	session  Session
	notifier notify.Notifier
	logger   *slog.Logger

	mu         sync.RWMutex
	users      []client.User
	selected   *client.User
	lastRandom *client.User
	inflight   int
	lastError  string
}

// Option configures a Store
type Option func(*Store)

// WithNotifier sets where operation results are reported
func WithNotifier(n notify.Notifier) Option {
	return func(s *Store) {
		s.notifier = n
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates an empty Store
func New(api API, session Session, opts ...Option) *Store {
	s := &Store{
		api:      api,
		session:  session,
		notifier: notify.Discard,
		logger:   slog.New(slog.DiscardHandler),
		users:    []client.User{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "directory")
	return s
}

// begin marks an operation in flight and clears the last error
func (s *Store) begin() {
	s.mu.Lock()
	s.inflight++
	s.lastError = ""
	s.mu.Unlock()
}

func (s *Store) end() {
	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()
}

// fail records err, notifies and logs. fallback is shown when the server
// gave no message.
func (s *Store) fail(op string, err error, fallback string) {
	s.mu.Lock()
	s.lastError = err.Error()
	s.mu.Unlock()

	s.logger.Debug("Directory operation failed", "op", op, "error", err)
	s.notifier.Notify(failure(err, fallback))
}

// failure converts an API error into a user-facing notification
func failure(err error, fallback string) notify.Notification {
	if errors.Is(err, client.ErrUnreachable) {
		return notify.Error("Network error", "Cannot reach server")
	}
	if msg := client.ServerMessage(err); msg != "" {
		return notify.Error("Error", msg)
	}
	return notify.Error("Error", fallback)
}

// FetchAll replaces the collection with the server's, newest first.
// On failure the collection is kept and false is returned.
func (s *Store) FetchAll(ctx context.Context) ([]client.User, bool) {
	s.begin()
	defer s.end()

	users, err := s.api.ListUsers(ctx, s.session.Token())
	if err != nil {
		s.fail("fetch_all", err, "Cannot fetch the collaborator list")
		return nil, false
	}

	sort.SliceStable(users, func(i, j int) bool { return users[i].ID > users[j].ID })

	s.mu.Lock()
	s.users = users
	s.mu.Unlock()

	s.logger.Debug("Fetched collaborators", "count", len(users))
	return cloneUsers(users), true
}

// FetchByID loads one collaborator and selects it. It returns nil when the
// entry does not exist or the call fails; the collection is not touched.
func (s *Store) FetchByID(ctx context.Context, id int) *client.User {
	s.begin()
	defer s.end()

	user, err := s.api.GetUser(ctx, s.session.Token(), id)
	if err != nil {
		s.fail("fetch_by_id", err, fmt.Sprintf("Cannot fetch collaborator with id %d", id))
		return nil
	}

	s.mu.Lock()
	s.selected = cloneUser(user)
	s.mu.Unlock()
	return cloneUser(user)
}

// FetchRandom asks the server for a random collaborator, retrying up to
// MaxRandomAttempts times while it returns the connected user or the
// previous pick. When attempts run out the last candidate is kept.
func (s *Store) FetchRandom(ctx context.Context) *client.User {
	s.begin()
	defer s.end()

	var excluded []int
	if me := s.session.ConnectedUser(); me != nil {
		excluded = append(excluded, me.ID)
	}
	s.mu.RLock()
	if s.lastRandom != nil {
		excluded = append(excluded, s.lastRandom.ID)
	}
	s.mu.RUnlock()

	var candidate *client.User
	for attempt := 1; attempt <= MaxRandomAttempts; attempt++ {
		user, err := s.api.RandomUser(ctx, s.session.Token())
		if err != nil {
			s.fail("fetch_random", err, "Cannot fetch a random collaborator")
			return nil
		}
		candidate = user
		if candidate == nil || !slices.Contains(excluded, candidate.ID) {
			break
		}
		s.logger.Debug("Rejected random collaborator", "id", candidate.ID, "attempt", attempt)
	}

	if candidate == nil {
		return nil
	}

	s.mu.Lock()
	s.selected = cloneUser(candidate)
	s.lastRandom = cloneUser(candidate)
	s.mu.Unlock()
	return cloneUser(candidate)
}

// Create submits a new collaborator and then reloads the whole collection,
// since the server assigns ids and may normalize fields. Unlike the other
// operations the error is returned after notifying.
func (s *Store) Create(ctx context.Context, input client.UserInput) (*client.User, error) {
	s.begin()
	created, err := s.api.CreateUser(ctx, s.session.Token(), &input)
	if err != nil {
		s.fail("create", err, "Cannot create user")
		s.end()
		return nil, err
	}
	s.end()

	s.logger.Debug("Created collaborator", "email", input.Email)
	s.notifier.Notify(notify.Success("Success", "User created"))

	s.FetchAll(ctx)
	return created, nil
}

// Update submits a partial change and merges the same fields into the
// local record and the selection.
func (s *Store) Update(ctx context.Context, id int, patch client.UserPatch) bool {
	s.begin()
	defer s.end()

	if err := s.api.UpdateUser(ctx, s.session.Token(), id, &patch); err != nil {
		s.fail("update", err, fmt.Sprintf("Cannot update collaborator with id %d", id))
		return false
	}

	s.mu.Lock()
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i] = s.users[i].Apply(patch)
		}
	}
	if s.selected != nil && s.selected.ID == id {
		merged := s.selected.Apply(patch)
		s.selected = &merged
	}
	s.mu.Unlock()

	if pu, ok := s.session.(profileUpdater); ok {
		if me := s.session.ConnectedUser(); me != nil && me.ID == id {
			pu.UpdateConnectedUser(me.Apply(patch))
		}
	}

	s.logger.Debug("Updated collaborator", "id", id)
	s.notifier.Notify(notify.Success("User updated", "The user was updated successfully"))
	return true
}

// Delete removes a collaborator on the server, then locally
func (s *Store) Delete(ctx context.Context, id int) bool {
	s.begin()
	defer s.end()

	if err := s.api.DeleteUser(ctx, s.session.Token(), id); err != nil {
		s.fail("delete", err, fmt.Sprintf("Cannot delete collaborator with id %d", id))
		return false
	}

	s.mu.Lock()
	kept := s.users[:0:0]
	for _, u := range s.users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	s.users = kept
	if s.selected != nil && s.selected.ID == id {
		s.selected = nil
	}
	s.mu.Unlock()

	s.logger.Debug("Deleted collaborator", "id", id)
	s.notifier.Notify(notify.Success("Collaborator deleted", fmt.Sprintf("Collaborator with id %d was deleted", id)))
	return true
}

// Users returns a copy of the collection
func (s *Store) Users() []client.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUsers(s.users)
}

// Find returns the local record with id, if loaded
func (s *Store) Find(id int) (client.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return client.User{}, false
}

// Selected returns the currently selected collaborator, or nil
func (s *Store) Selected() *client.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUser(s.selected)
}

// SetSelected replaces the selection. nil clears it.
func (s *Store) SetSelected(u *client.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = cloneUser(u)
}

// LastError returns the message of the most recent failure, or ""
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// Loading reports whether any operation is in flight
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

func cloneUser(u *client.User) *client.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func cloneUsers(users []client.User) []client.User {
	out := make([]client.User, len(users))
	copy(out, users)
	return out
}
