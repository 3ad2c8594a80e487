// ABOUTME: Tests for the status command
// ABOUTME: Verifies session reporting, expiry formatting and exit codes

package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestRemaining(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "expired"},
		{-time.Second, "expired"},
		{90 * time.Second, "1m30s"},
		{29*time.Minute + 59*time.Second, "29m59s"},
		{5 * time.Second, "0m05s"},
	}
	for _, tt := range tests {
		if got := remaining(tt.d); got != tt.want {
			t.Errorf("remaining(%s) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestRunStatus_Anonymous(t *testing.T) {
	te := newTestEnv(t)

	var buf bytes.Buffer
	if code := runStatus(te.env, &buf, time.Now()); code != exitNotAuthenticated {
		t.Errorf("exit code %d, want %d", code, exitNotAuthenticated)
	}
	if !strings.Contains(buf.String(), "Not logged in") || !strings.Contains(buf.String(), te.srv.URL) {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestRunStatus_LoggedIn(t *testing.T) {
	te := newTestEnv(t)
	te.login(t, "admin@x.io")

	var buf bytes.Buffer
	if code := runStatus(te.env, &buf, time.Now()); code != exitOK {
		t.Fatalf("exit code %d, want 0", code)
	}
	out := buf.String()
	for _, want := range []string{"Ada Admin <admin@x.io>", "administrator", "Expires in:", "Token user:  admin@x.io", "ROLE_ADMIN"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunStatus_JSON(t *testing.T) {
	te := newTestEnv(t)
	te.login(t, "rita@x.io")
	jsonOutput = true

	var buf bytes.Buffer
	runStatus(te.env, &buf, time.Now())

	var status sessionStatus
	if err := json.Unmarshal(buf.Bytes(), &status); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if !status.Authenticated || status.Email != "rita@x.io" {
		t.Errorf("unexpected status %+v", status)
	}
	if status.ExpiresAt == nil || status.IssuedAt == nil || status.ExpiresAt.Sub(*status.IssuedAt) != 30*time.Minute {
		t.Errorf("expiry should be 30 minutes after issue: %+v", status)
	}
	if status.Claims == nil || status.Claims.Username != "rita@x.io" {
		t.Errorf("expected decoded claims, got %+v", status.Claims)
	}
}

func TestFormatStatusHuman_OpaqueToken(t *testing.T) {
	issued := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	expires := issued.Add(30 * time.Minute)
	s := sessionStatus{
		Authenticated: true,
		Email:         "rita@x.io",
		Name:          "Rita Regular",
		IssuedAt:      &issued,
		ExpiresAt:     &expires,
		APIURL:        "http://localhost:8000/api",
	}

	out := formatStatusHuman(s, issued.Add(10*time.Minute))
	if !strings.Contains(out, "Expires in:  20m00s") {
		t.Errorf("unexpected remaining time:\n%s", out)
	}
	if !strings.Contains(out, "Token:       opaque") {
		t.Errorf("expected opaque token line:\n%s", out)
	}
}
