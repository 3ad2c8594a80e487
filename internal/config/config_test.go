// ABOUTME: Tests for configuration loading
// ABOUTME: Covers defaults, precedence between sources and validation

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv unsets every variable the loader reads
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"INTRANET_API_URL", "INTRANET_LOGIN_URL", "INTRANET_LOGIN_CHECK_URL",
		"INTRANET_STORAGE", "INTRANET_HTTP_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := LoadFrom(dir, filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("expected APIURL %s, got %s", DefaultAPIURL, cfg.APIURL)
	}
	if cfg.LoginURL != DefaultAPIURL+"/login" {
		t.Errorf("unexpected LoginURL %s", cfg.LoginURL)
	}
	if cfg.LoginCheckURL != DefaultAPIURL+"/login_check" {
		t.Errorf("unexpected LoginCheckURL %s", cfg.LoginCheckURL)
	}
	if cfg.Storage != "file" {
		t.Errorf("expected file storage, got %s", cfg.Storage)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %s", cfg.HTTPTimeout)
	}
	if cfg.ConfigDir != dir {
		t.Errorf("expected ConfigDir %s, got %s", dir, cfg.ConfigDir)
	}
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	dotenv := filepath.Join(dir, ".env")

	writeFile(t, dotenv, "INTRANET_API_URL=http://dotenv/api\nINTRANET_STORAGE=sqlite\nLOG_LEVEL=warn\n")
	writeFile(t, filepath.Join(dir, "config.yaml"), "api_url: http://yaml/api\nlog_level: debug\n")
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := LoadFrom(dir, dotenv)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.APIURL != "http://yaml/api" {
		t.Errorf("expected config.yaml to beat .env, got %s", cfg.APIURL)
	}
	if cfg.Storage != "sqlite" {
		t.Errorf("expected .env to beat defaults, got %s", cfg.Storage)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("expected environment to beat config.yaml, got %s", cfg.LogLevel)
	}
	if cfg.LoginURL != "http://yaml/api/login" {
		t.Errorf("expected login URL derived from API URL, got %s", cfg.LoginURL)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		yaml string
	}{
		{"bad storage", map[string]string{"INTRANET_STORAGE": "redis"}, ""},
		{"bad timeout", map[string]string{"INTRANET_HTTP_TIMEOUT": "soon"}, ""},
		{"negative timeout", map[string]string{"INTRANET_HTTP_TIMEOUT": "-1s"}, ""},
		{"bad yaml", nil, "api_url: [unterminated"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			dir := t.TempDir()
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if tc.yaml != "" {
				writeFile(t, filepath.Join(dir, "config.yaml"), tc.yaml)
			}

			if _, err := LoadFrom(dir, filepath.Join(dir, ".env")); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSetAPIURL(t *testing.T) {
	cfg := &Config{
		APIURL:        "http://a/api",
		LoginURL:      "http://a/api/login",
		LoginCheckURL: "http://auth/check",
	}

	cfg.SetAPIURL("b.example.com/api/")

	if cfg.APIURL != "https://b.example.com/api" {
		t.Errorf("unexpected APIURL %s", cfg.APIURL)
	}
	if cfg.LoginURL != "https://b.example.com/api/login" {
		t.Errorf("expected defaulted login URL to follow, got %s", cfg.LoginURL)
	}
	if cfg.LoginCheckURL != "http://auth/check" {
		t.Errorf("expected explicit login-check URL to stay, got %s", cfg.LoginCheckURL)
	}
}

func TestDefaultConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultConfigDir(); got != "/tmp/xdg/intranet" {
		t.Errorf("expected /tmp/xdg/intranet, got %s", got)
	}
}

func TestEnsureScheme(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"api.example.com", "https://api.example.com"},
		{"http://localhost:8000", "http://localhost:8000"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := ensureScheme(tc.input); got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}
