// ABOUTME: Status command for the intranet CLI
// ABOUTME: Shows who is logged in, when the session expires and the token claims

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/EdwinJoye/cda31-dev3-frontend/internal/session"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	Long:  `Check the stored session, expiring it if it is older than thirty minutes, and display the connected user.`,
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, e *env) int {
			return runStatus(e, os.Stdout, time.Now())
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// sessionStatus is the JSON shape of the status command
type sessionStatus struct {
	Authenticated bool            `json:"authenticated"`
	Email         string          `json:"email,omitempty"`
	Name          string          `json:"name,omitempty"`
	Admin         bool            `json:"admin"`
	IssuedAt      *time.Time      `json:"issuedAt,omitempty"`
	ExpiresAt     *time.Time      `json:"expiresAt,omitempty"`
	Claims        *session.Claims `json:"claims,omitempty"`
	APIURL        string          `json:"apiUrl"`
}

// runStatus reports the session and returns exit code
func runStatus(e *env, w io.Writer, now time.Time) int {
	authenticated := e.session.CheckAndRefresh()
	status := buildStatus(e, authenticated)

	if IsJSONOutput() {
		fmt.Fprintln(w, formatStatusJSON(status))
	} else {
		fmt.Fprintln(w, formatStatusHuman(status, now))
	}

	if !authenticated {
		return exitNotAuthenticated
	}
	return exitOK
}

func buildStatus(e *env, authenticated bool) sessionStatus {
	status := sessionStatus{Authenticated: authenticated, APIURL: e.cfg.APIURL}
	if !authenticated {
		return status
	}

	snap := e.session.Snapshot()
	if snap.ConnectedUser != nil {
		status.Email = snap.ConnectedUser.Email
		status.Name = snap.ConnectedUser.FullName()
		status.Admin = snap.ConnectedUser.IsAdmin
	}
	issuedAt := snap.IssuedAt
	expiresAt := e.session.ExpiresAt()
	status.IssuedAt = &issuedAt
	status.ExpiresAt = &expiresAt

	if claims, err := e.session.TokenClaims(); err == nil {
		status.Claims = claims
	}
	return status
}

// formatStatusHuman formats the session for human readability
func formatStatusHuman(s sessionStatus, now time.Time) string {
	if !s.Authenticated {
		return fmt.Sprintf("Not logged in (API: %s).\nRun 'intranet login' to start a session.", s.APIURL)
	}

	role := "user"
	if s.Admin {
		role = "administrator"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "User:        %s <%s>\n", s.Name, s.Email)
	fmt.Fprintf(&sb, "Role:        %s\n", role)
	fmt.Fprintf(&sb, "API:         %s\n", s.APIURL)
	fmt.Fprintf(&sb, "Logged in:   %s\n", s.IssuedAt.Local().Format(time.DateTime))
	fmt.Fprintf(&sb, "Expires in:  %s", remaining(s.ExpiresAt.Sub(now)))

	if s.Claims == nil {
		sb.WriteString("\nToken:       opaque")
		return sb.String()
	}
	if s.Claims.Username != "" {
		fmt.Fprintf(&sb, "\nToken user:  %s", s.Claims.Username)
	}
	if len(s.Claims.Roles) > 0 {
		fmt.Fprintf(&sb, "\nToken roles: %s", strings.Join(s.Claims.Roles, ", "))
	}
	if !s.Claims.ExpiresAt.IsZero() {
		fmt.Fprintf(&sb, "\nToken valid: until %s", s.Claims.ExpiresAt.Local().Format(time.DateTime))
	}
	return sb.String()
}

// remaining formats a positive duration as minutes and seconds
func remaining(d time.Duration) string {
	if d <= 0 {
		return "expired"
	}
	d = d.Round(time.Second)
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}

// formatStatusJSON formats the session as JSON
func formatStatusJSON(s sessionStatus) string {
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}

// formatSessionJSON formats the live session after login
func formatSessionJSON(e *env) string {
	return formatStatusJSON(buildStatus(e, e.session.CheckAndRefresh()))
}
