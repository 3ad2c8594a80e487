// ABOUTME: Shared fixtures for command tests
// ABOUTME: Builds a runtime against the fake API with notifications captured

package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/EdwinJoye/cda31-dev3-frontend/internal/apitest"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/client"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/config"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/notify"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/storage"
)

const testPassword = "secret"

type testEnv struct {
	*env
	srv    *apitest.Server
	notes  *bytes.Buffer
	config *config.Config
}

// newTestEnv builds a runtime with an admin (id 1), a regular user (id 2)
// and a collaborator without an account (id 3)
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	jsonOutput = false
	t.Cleanup(func() { jsonOutput = false })

	srv := apitest.New(t)
	srv.AddUser(client.User{FirstName: "Ada", LastName: "Admin", Email: "admin@x.io", IsAdmin: true, Category: client.CategoryTechnique, City: "Paris"}, testPassword)
	srv.AddUser(client.User{FirstName: "Rita", LastName: "Regular", Email: "rita@x.io", Category: client.CategoryClient, City: "Lyon", Birthdate: "1990-04-02"}, testPassword)
	srv.AddUser(client.User{FirstName: "Carl", LastName: "Client", Email: "carl@x.io", Category: client.CategoryClient, City: "Lyon"}, "")

	cfg := &config.Config{
		APIURL:        srv.URL,
		LoginURL:      srv.URL + "/login",
		LoginCheckURL: srv.URL + "/login_check",
		Storage:       storage.BackendFile,
		HTTPTimeout:   5 * time.Second,
		ConfigDir:     t.TempDir(),
	}
	store := storage.NewFileStorage(filepath.Join(cfg.ConfigDir, "state.json"))
	notes := &bytes.Buffer{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	e := buildEnv(cfg, log, store, notify.NewPrinter(notes))
	t.Cleanup(e.Close)
	return &testEnv{env: e, srv: srv, notes: notes, config: cfg}
}

// login authenticates as email or fails the test
func (te *testEnv) login(t *testing.T, email string) {
	t.Helper()
	if err := te.session.Login(context.Background(), client.Credentials{Email: email, Password: testPassword}); err != nil {
		t.Fatalf("login as %s: %v", email, err)
	}
	te.notes.Reset()
}
