// ABOUTME: In-memory fake of the intranet collaborator API for tests
// ABOUTME: Supports bearer auth, scripted random picks and injected failures

package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/EdwinJoye/cda31-dev3-frontend/internal/client"
)

// Route names accepted by Fail and Calls
const (
	RouteList       = "list"
	RouteGet        = "get"
	RouteRandom     = "random"
	RouteCreate     = "create"
	RouteUpdate     = "update"
	RouteDelete     = "delete"
	RouteLogin      = "login"
	RouteLoginCheck = "login_check"
)

// SigningKey signs the tokens issued by login_check
var SigningKey = []byte("apitest-signing-key")

type account struct {
	password string
	userID   int
}

type failure struct {
	status  int
	message string
}

// Server is a fake API backed by a map of collaborators
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	users       map[int]client.User
	accounts    map[string]account
	nextID      int
	token       string
	randomSeq   []int
	randomIdx   int
	failures    map[string]failure
	calls       map[string]int
	bodies      map[string][]byte
	requestIDs  []string
	echoCreate  bool
	lastAuthHdr string
}

// New starts a fake API and stops it when the test ends
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		users:      make(map[int]client.User),
		accounts:   make(map[string]account),
		nextID:     1,
		failures:   make(map[string]failure),
		calls:      make(map[string]int),
		bodies:     make(map[string][]byte),
		echoCreate: true,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /all/collaborators", s.route(RouteList, true, s.handleList))
	mux.HandleFunc("POST /collaborator/id", s.route(RouteGet, true, s.handleGet))
	mux.HandleFunc("GET /collaborator/random", s.route(RouteRandom, true, s.handleRandom))
	mux.HandleFunc("POST /collaborator/create", s.route(RouteCreate, true, s.handleCreate))
	mux.HandleFunc("PUT /collaborator/update/{id}", s.route(RouteUpdate, true, s.handleUpdate))
	mux.HandleFunc("DELETE /collaborator/delete/{id}", s.route(RouteDelete, true, s.handleDelete))
	mux.HandleFunc("POST /login", s.route(RouteLogin, false, s.handleLogin))
	mux.HandleFunc("POST /login_check", s.route(RouteLoginCheck, false, s.handleLoginCheck))

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// Client returns an API client pointed at the fake
func (s *Server) Client(opts ...client.Option) *client.Client {
	return client.New(s.URL, opts...)
}

// AddUser stores u, assigning an id when u.ID is zero. A non-empty
// password also creates a login account for u.Email.
func (s *Server) AddUser(u client.User, password string) client.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == 0 {
		u.ID = s.nextID
	}
	if u.ID >= s.nextID {
		s.nextID = u.ID + 1
	}
	s.users[u.ID] = u
	if password != "" {
		s.accounts[u.Email] = account{password: password, userID: u.ID}
	}
	return u
}

// User returns the stored collaborator
func (s *Server) User(id int) (client.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok
}

// Len returns the number of stored collaborators
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// Token returns the token issued by the last successful login_check
func (s *Server) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// SetToken accepts token for authenticated routes without logging in
func (s *Server) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// SetRandomSequence scripts the ids returned by the random route. The last
// id repeats once the sequence is exhausted.
func (s *Server) SetRandomSequence(ids ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.randomSeq = ids
	s.randomIdx = 0
}

// SetEchoCreate controls whether create returns the new record
func (s *Server) SetEchoCreate(echo bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.echoCreate = echo
}

// Fail makes route answer status with {"error": message} until ClearFailures.
// An empty message sends an empty JSON object.
func (s *Server) Fail(route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, message: message}
}

// ClearFailures removes every injected failure
func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]failure)
}

// Calls returns how many requests reached route
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// LastBody returns the raw body of the last request to route
func (s *Server) LastBody(route string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bodies[route]
}

// RequestIDs returns every X-Request-ID header received, in order
func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requestIDs...)
}

// IssueToken signs a token for email the way login_check does
func IssueToken(email string, admin bool) string {
	roles := []string{"ROLE_USER"}
	if admin {
		roles = append(roles, "ROLE_ADMIN")
	}
	now := time.Now()
	signed, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      email,
		"username": email,
		"roles":    roles,
		"iat":      now.Unix(),
		"exp":      now.Add(time.Hour).Unix(),
	}).SignedString(SigningKey)
	return signed
}

func (s *Server) sortedIDs() []int {
	ids := make([]int, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	return id, err == nil
}

func writeJSON(w http.ResponseWriter, v any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, message string, code int) {
	if message == "" {
		writeJSON(w, struct{}{}, code)
		return
	}
	writeJSON(w, map[string]string{"error": message}, code)
}

// LastAuthorization returns the Authorization header of the last request
func (s *Server) LastAuthorization() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAuthHdr
}
