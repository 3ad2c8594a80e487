// ABOUTME: Runtime shared by CLI commands
// ABOUTME: Wires config, logging, storage, API client, session and directory

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/EdwinJoye/cda31-dev3-frontend/internal/client"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/config"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/directory"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/logger"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/notify"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/session"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/storage"
)

// env is everything a command needs, built once per invocation
type env struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     storage.Storage
	api       *client.Client
	session   *session.Manager
	directory *directory.Store
}

// loadConfig resolves configuration and applies global flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.SetAPIURL(apiURL)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if storageBackend != "" {
		cfg.Storage = storageBackend
	}
	return cfg, cfg.Validate()
}

// newEnv builds the runtime with logs going to logOut
func newEnv(cfg *config.Config, logOut io.Writer, notifier notify.Notifier) (*env, error) {
	log := logger.New(cfg.LogLevel, cfg.LogFormat, logOut)

	store, err := storage.Open(cfg.Storage, cfg.ConfigDir, log)
	if err != nil {
		return nil, fmt.Errorf("open session storage: %w", err)
	}

	return buildEnv(cfg, log, store, notifier), nil
}

// buildEnv wires the core around an already opened store
func buildEnv(cfg *config.Config, log *slog.Logger, store storage.Storage, notifier notify.Notifier) *env {
	api := client.New(cfg.APIURL,
		client.WithLoginURLs(cfg.LoginURL, cfg.LoginCheckURL),
		client.WithTimeout(cfg.HTTPTimeout),
		client.WithLogger(log),
	)
	sess := session.New(api, store,
		session.WithNotifier(notifier),
		session.WithLogger(log),
	)
	dir := directory.New(api, sess,
		directory.WithNotifier(notifier),
		directory.WithLogger(log),
	)
	return &env{
		cfg:       cfg,
		logger:    log,
		store:     store,
		api:       api,
		session:   sess,
		directory: dir,
	}
}

// Close releases the storage backend
func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.logger.Warn("Failed to close storage", "error", err)
	}
}

// requireSession runs the session check every protected command starts with
func (e *env) requireSession(w io.Writer) int {
	if !e.session.CheckAndRefresh() {
		fmt.Fprintln(w, "Not logged in. Run 'intranet login' first.")
		return exitNotAuthenticated
	}
	return exitOK
}

// requireAdmin refuses admin-only actions for regular users
func (e *env) requireAdmin(w io.Writer) int {
	if !e.session.IsAdmin() {
		fmt.Fprintln(w, "Error: this action requires an administrator account")
		return exitFailure
	}
	return exitOK
}

// execute builds the CLI runtime, runs fn with a signal-aware context and
// exits with its code
func execute(fn func(ctx context.Context, e *env) int) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	cfg, err := loadConfig()
	if err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitFailure)
	}
	e, err := newEnv(cfg, os.Stderr, notify.NewPrinter(os.Stderr))
	if err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitFailure)
	}

	exitCode := fn(ctx, e)
	e.Close()
	cancel()
	if exitCode != exitOK {
		os.Exit(exitCode)
	}
}
