// ABOUTME: Route handlers and middleware of the fake intranet API
// ABOUTME: Records calls, enforces bearer auth and applies injected failures

package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/EdwinJoye/cda31-dev3-frontend/internal/client"
)

// route wraps h with call recording, failure injection and, when auth is
// set, a bearer token check
func (s *Server) route(name string, auth bool, h http.HandlerFunc) http.HandlerFunc {
	middlewares := []func(http.HandlerFunc) http.HandlerFunc{s.record(name), s.inject(name)}
	if auth {
		middlewares = append(middlewares, s.requireBearer)
	}
	return chain(h, middlewares...)
}

// chain applies middleware in order; the first is outermost
func chain(h http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

func (s *Server) record(name string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))

			s.mu.Lock()
			s.calls[name]++
			s.bodies[name] = body
			s.lastAuthHdr = r.Header.Get("Authorization")
			if id := r.Header.Get("X-Request-ID"); id != "" {
				s.requestIDs = append(s.requestIDs, id)
			}
			s.mu.Unlock()

			next(w, r)
		}
	}
}

func (s *Server) inject(name string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			s.mu.Lock()
			f, ok := s.failures[name]
			s.mu.Unlock()
			if ok {
				writeError(w, f.message, f.status)
				return
			}
			next(w, r)
		}
	}
}

func (s *Server) requireBearer(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		expected := "Bearer " + s.token
		valid := s.token != "" && r.Header.Get("Authorization") == expected
		s.mu.Unlock()
		if !valid {
			writeJSON(w, map[string]any{"code": 401, "message": "Invalid JWT Token"}, http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	users := make([]client.User, 0, len(s.users))
	for _, id := range s.sortedIDs() {
		users = append(users, s.users[id])
	}
	s.mu.Unlock()

	writeJSON(w, map[string]any{"allCollaborators": users}, http.StatusOK)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	u, ok := s.User(req.ID)
	if !ok {
		writeError(w, "Collaborator not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{"collaborator": u}, http.StatusOK)
}

func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	var (
		u     client.User
		found bool
	)
	if len(s.randomSeq) > 0 {
		idx := min(s.randomIdx, len(s.randomSeq)-1)
		u, found = s.users[s.randomSeq[idx]]
		s.randomIdx++
	} else if ids := s.sortedIDs(); len(ids) > 0 {
		u, found = s.users[ids[s.randomIdx%len(ids)]], true
		s.randomIdx++
	}
	s.mu.Unlock()

	if !found {
		writeJSON(w, map[string]any{"collaborator": nil}, http.StatusOK)
		return
	}
	writeJSON(w, map[string]any{"collaborator": u}, http.StatusOK)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in client.UserInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	u := s.AddUser(client.User{
		Gender:    in.Gender,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Birthdate: in.Birthdate,
		City:      in.City,
		Country:   in.Country,
		Photo:     in.Photo,
		Category:  in.Category,
		IsAdmin:   in.IsAdmin,
	}, in.Password)

	s.mu.Lock()
	echo := s.echoCreate
	s.mu.Unlock()
	if !echo {
		w.WriteHeader(http.StatusCreated)
		return
	}
	writeJSON(w, map[string]any{"collaborateur": u}, http.StatusCreated)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, "Invalid id", http.StatusBadRequest)
		return
	}
	var patch client.UserPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, found := s.users[id]
	if !found {
		writeError(w, "Collaborator not found", http.StatusNotFound)
		return
	}
	s.users[id] = u.Apply(patch)
	writeJSON(w, map[string]string{"message": "Collaborator updated"}, http.StatusOK)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, "Invalid id", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.users[id]; !found {
		writeError(w, "Collaborator not found", http.StatusNotFound)
		return
	}
	delete(s.users, id)
	writeJSON(w, map[string]string{"message": "Collaborator deleted"}, http.StatusOK)
}

// authenticate resolves credentials to a stored user
func (s *Server) authenticate(r *http.Request) (client.User, bool) {
	var creds client.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		return client.User{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[creds.Email]
	if !ok || acct.password != creds.Password {
		return client.User{}, false
	}
	u, ok := s.users[acct.userID]
	return u, ok
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticate(r)
	if !ok {
		writeJSON(w, map[string]string{"message": "Invalid credentials."}, http.StatusUnauthorized)
		return
	}
	writeJSON(w, u, http.StatusOK)
}

func (s *Server) handleLoginCheck(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticate(r)
	if !ok {
		writeJSON(w, map[string]any{"code": 401, "message": "Invalid credentials."}, http.StatusUnauthorized)
		return
	}

	token := IssueToken(u.Email, u.IsAdmin)
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	writeJSON(w, map[string]string{"token": token}, http.StatusOK)
}
