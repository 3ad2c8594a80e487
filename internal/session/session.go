// ABOUTME: Session manager holding the bearer token and connected user
// ABOUTME: Persists auth state and expires it thirty minutes after login

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/EdwinJoye/cda31-dev3-frontend/internal/client"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/notify"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/storage"
)

const (
	// StorageKey is the fixed key the session is persisted under
	StorageKey = "auth-storage"

	// TTL is how long a login stays valid on the client
	TTL = 30 * time.Minute
)

// ErrNotAuthenticated is returned when an operation needs a live session
var ErrNotAuthenticated = errors.New("not authenticated")

// API is the subset of the intranet client used to log in
type API interface {
	Login(ctx context.Context, creds client.Credentials) (*client.User, error)
	LoginCheck(ctx context.Context, creds client.Credentials) (string, error)
}

// State is a point-in-time copy of the session
type State struct {
	Token         string
	IssuedAt      time.Time
	Authenticated bool
	ConnectedUser *client.User
}

// persisted is the stored layout. Absent values are written as null.
type persisted struct {
	Token         *string      `json:"token"`
	IssuedAt      *time.Time   `json:"issuedAt"`
	Authenticated bool         `json:"authenticated"`
	ConnectedUser *client.User `json:"connectedUser"`
}

// Manager owns the authentication state of the process
type Manager struct {
	mu       sync.Mutex
	state    State
	api      API
	store    storage.Storage
	notifier notify.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Manager
type Option func(*Manager)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithNotifier sets where login results are reported
func WithNotifier(n notify.Notifier) Option {
	return func(m *Manager) {
		m.notifier = n
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// New creates a Manager and restores any persisted session from store.
// Missing or unreadable state starts anonymous.
func New(api API, store storage.Storage, opts ...Option) *Manager {
	m := &Manager{
		api:      api,
		store:    store,
		notifier: notify.Discard,
		logger:   slog.New(slog.DiscardHandler),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "session")
	m.load()
	return m
}

func (m *Manager) load() {
	data, err := m.store.Load(StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		m.logger.Warn("Failed to load session", "error", err)
		return
	}

	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		m.logger.Warn("Discarding corrupt session", "error", err)
		return
	}
	if p.Token != nil {
		m.state.Token = *p.Token
	}
	if p.IssuedAt != nil {
		m.state.IssuedAt = *p.IssuedAt
	}
	m.state.Authenticated = p.Authenticated
	m.state.ConnectedUser = p.ConnectedUser
}

// save writes the current state. Callers hold m.mu.
func (m *Manager) save() {
	var p persisted
	if m.state.Token != "" {
		token := m.state.Token
		p.Token = &token
	}
	if !m.state.IssuedAt.IsZero() {
		issuedAt := m.state.IssuedAt
		p.IssuedAt = &issuedAt
	}
	p.Authenticated = m.state.Authenticated
	p.ConnectedUser = m.state.ConnectedUser

	data, err := json.Marshal(p)
	if err != nil {
		m.logger.Error("Failed to encode session", "error", err)
		return
	}
	if err := m.store.Save(StorageKey, data); err != nil {
		m.logger.Error("Failed to persist session", "error", err)
	}
}

// Login authenticates against both login endpoints concurrently. The
// session changes only when both succeed; otherwise the prior state is kept
// and the error is returned after notifying.
func (m *Manager) Login(ctx context.Context, creds client.Credentials) error {
	var (
		profile *client.User
		token   string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := m.api.Login(gctx, creds)
		if err != nil {
			return err
		}
		if u == nil {
			return fmt.Errorf("%w: empty profile", client.ErrMalformed)
		}
		profile = u
		return nil
	})
	g.Go(func() error {
		t, err := m.api.LoginCheck(gctx, creds)
		if err != nil {
			return err
		}
		token = t
		return nil
	})

	if err := g.Wait(); err != nil {
		m.logger.Debug("Login failed", "email", creds.Email, "error", err)
		m.notifier.Notify(notify.Error("Login failed", loginFailureMessage(err)))
		return fmt.Errorf("login: %w", err)
	}

	m.mu.Lock()
	m.state = State{
		Token:         token,
		IssuedAt:      m.now(),
		Authenticated: true,
		ConnectedUser: profile,
	}
	m.save()
	m.mu.Unlock()

	m.logger.Debug("Logged in", "email", profile.Email, "user_id", profile.ID)
	m.notifier.Notify(notify.Success("Connected", "Welcome, "+profile.Email))
	return nil
}

func loginFailureMessage(err error) string {
	if errors.Is(err, client.ErrUnreachable) {
		return "Cannot reach server"
	}
	if msg := client.ServerMessage(err); msg != "" {
		return msg
	}
	return "Invalid credentials."
}

// Logout clears the session. It is safe to call when already anonymous.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clear()
}

// clear resets every field and persists. Callers hold m.mu.
func (m *Manager) clear() {
	m.state = State{}
	m.save()
}

// CheckAndRefresh expires the session once TTL has elapsed since login, or
// when the stored state is inconsistent, and reports whether it is still
// authenticated.
func (m *Manager) CheckAndRefresh() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.IssuedAt.IsZero() && m.now().Sub(m.state.IssuedAt) > TTL {
		m.logger.Debug("Session expired", "issued_at", m.state.IssuedAt)
		m.clear()
		return false
	}
	if m.state.Authenticated && (m.state.Token == "" || m.state.IssuedAt.IsZero()) {
		m.logger.Warn("Discarding inconsistent session")
		m.clear()
		return false
	}
	return m.state.Authenticated
}

// Token returns the current bearer token, or "" when anonymous
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Token
}

// ConnectedUser returns a copy of the logged-in profile, or nil
func (m *Manager) ConnectedUser() *client.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.ConnectedUser == nil {
		return nil
	}
	u := *m.state.ConnectedUser
	return &u
}

// IsAdmin reports whether the connected user has the admin flag
func (m *Manager) IsAdmin() bool {
	u := m.ConnectedUser()
	return u != nil && u.IsAdmin
}

// IssuedAt returns the time of the last successful login
func (m *Manager) IssuedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.IssuedAt
}

// ExpiresAt returns when the session lapses, or the zero time when anonymous
func (m *Manager) ExpiresAt() time.Time {
	issuedAt := m.IssuedAt()
	if issuedAt.IsZero() {
		return time.Time{}
	}
	return issuedAt.Add(TTL)
}

// Snapshot returns a copy of the whole state
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.state
	if s.ConnectedUser != nil {
		u := *s.ConnectedUser
		s.ConnectedUser = &u
	}
	return s
}

// UpdateConnectedUser replaces the stored profile after the user edits
// their own record. Other ids are ignored.
func (m *Manager) UpdateConnectedUser(u client.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.ConnectedUser == nil || m.state.ConnectedUser.ID != u.ID {
		return
	}
	m.state.ConnectedUser = &u
	m.save()
}
