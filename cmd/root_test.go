// ABOUTME: Tests for the root command and global flag handling
// ABOUTME: Verifies configuration overrides and the session guards

package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestJSONOutput(t *testing.T) {
	jsonOutput = true
	defer func() { jsonOutput = false }()

	if !IsJSONOutput() {
		t.Error("expected IsJSONOutput to return true")
	}
}

func TestLoadConfig_FlagsOverride(t *testing.T) {
	t.Setenv("INTRANET_API_URL", "http://env.example.com/api")
	configDir = t.TempDir()
	apiURL = "http://flag.example.com/api"
	logLevel = "debug"
	storageBackend = "sqlite"
	defer func() {
		configDir, apiURL, logLevel, storageBackend = "", "", "", ""
	}()

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.APIURL != "http://flag.example.com/api" {
		t.Errorf("APIURL = %q, want flag value", cfg.APIURL)
	}
	if cfg.LoginURL != "http://flag.example.com/api/login" {
		t.Errorf("LoginURL = %q, want derived from flag", cfg.LoginURL)
	}
	if cfg.LogLevel != "debug" || cfg.Storage != "sqlite" {
		t.Errorf("LogLevel/Storage = %q/%q", cfg.LogLevel, cfg.Storage)
	}
}

func TestLoadConfig_RejectsUnknownStorage(t *testing.T) {
	configDir = t.TempDir()
	storageBackend = "redis"
	defer func() { configDir, storageBackend = "", "" }()

	if _, err := loadConfig(); err == nil {
		t.Error("expected an error for an unknown storage backend")
	}
}

func TestRequireSession(t *testing.T) {
	te := newTestEnv(t)

	var buf bytes.Buffer
	if code := te.requireSession(&buf); code != exitNotAuthenticated {
		t.Errorf("anonymous: exit code %d, want %d", code, exitNotAuthenticated)
	}
	if !strings.Contains(buf.String(), "Not logged in") {
		t.Errorf("unexpected output %q", buf.String())
	}

	te.login(t, "rita@x.io")
	buf.Reset()
	if code := te.requireSession(&buf); code != exitOK {
		t.Errorf("logged in: exit code %d, want 0", code)
	}
	if code := te.requireAdmin(&buf); code != exitFailure {
		t.Errorf("regular user: requireAdmin exit code %d, want %d", code, exitFailure)
	}
}
