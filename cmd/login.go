// ABOUTME: Login and logout commands for the intranet CLI
// ABOUTME: Prompts for missing credentials and manages the persisted session

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/EdwinJoye/cda31-dev3-frontend/internal/client"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/directory"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/tui/styles"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the intranet",
	Long:  `Authenticate with email and password. Missing values are prompted for interactively.`,
	Run: func(cmd *cobra.Command, args []string) {
		creds := client.Credentials{Email: loginEmail, Password: loginPassword}
		if creds.Email == "" || creds.Password == "" {
			if err := promptCredentials(&creds); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(exitFailure)
			}
		}
		execute(func(ctx context.Context, e *env) int {
			return runLogin(ctx, e, os.Stdout, creds)
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the stored session",
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, e *env) int {
			return runLogout(e, os.Stdout)
		})
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

// promptCredentials asks for the fields creds is missing
func promptCredentials(creds *client.Credentials) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&creds.Email).
				Validate(directory.ValidateEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&creds.Password).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("password is required")
					}
					return nil
				}),
		).Title("Intranet login"),
	).WithTheme(styles.FormTheme())
	return form.Run()
}

// runLogin authenticates and returns exit code
func runLogin(ctx context.Context, e *env, w io.Writer, creds client.Credentials) int {
	if err := e.session.Login(ctx, creds); err != nil {
		if IsJSONOutput() {
			fmt.Fprintln(w, formatErrorJSON(err))
		}
		return exitFailure
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatSessionJSON(e))
	} else {
		fmt.Fprintln(w, formatLoginHuman(e.session.ConnectedUser()))
	}
	return exitOK
}

// runLogout clears the session and returns exit code
func runLogout(e *env, w io.Writer) int {
	e.session.Logout()
	if IsJSONOutput() {
		fmt.Fprintln(w, `{"authenticated":false}`)
	} else {
		fmt.Fprintln(w, "Logged out.")
	}
	return exitOK
}

// formatLoginHuman formats the login confirmation
func formatLoginHuman(u *client.User) string {
	if u == nil {
		return "Logged in."
	}
	role := "user"
	if u.IsAdmin {
		role = "administrator"
	}
	return fmt.Sprintf("Logged in as %s <%s> (%s)", u.FullName(), u.Email, role)
}

// formatErrorJSON formats a command failure as JSON
func formatErrorJSON(err error) string {
	data, _ := json.MarshalIndent(map[string]string{"error": err.Error()}, "", "  ")
	return string(data)
}
