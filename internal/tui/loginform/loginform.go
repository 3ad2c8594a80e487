// ABOUTME: Login screen as a bubbletea model
// ABOUTME: Wraps a huh form and emits the submitted credentials

package loginform

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/EdwinJoye/cda31-dev3-frontend/internal/client"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/directory"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/tui/icons"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/tui/styles"
)

// SubmittedMsg carries the credentials once the form completes
type SubmittedMsg struct {
	Credentials client.Credentials
}

// CancelledMsg is sent when the user leaves the login screen
type CancelledMsg struct{}

// LoginForm collects an email and a password
type LoginForm struct {
	form      *huh.Form
	email     string
	password  string
	width     int
	submitted bool
}

// New creates a login form, prefilled with email when known
func New(email string) *LoginForm {
	lf := &LoginForm{email: email}
	lf.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("name@company.com").
				Value(&lf.email).
				Validate(directory.ValidateEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&lf.password).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("password is required")
					}
					return nil
				}),
		).Title(icons.Lock.String() + " Sign in").
			Description("Use your intranet account"),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
	return lf
}

// Init implements tea.Model
func (lf *LoginForm) Init() tea.Cmd {
	return lf.form.Init()
}

// Update implements tea.Model
func (lf *LoginForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		lf.width = msg.Width
	case tea.KeyMsg:
		if msg.String() == "esc" {
			return lf, func() tea.Msg { return CancelledMsg{} }
		}
	}

	form, cmd := lf.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		lf.form = f
	}

	if lf.form.State == huh.StateCompleted && !lf.submitted {
		lf.submitted = true
		creds := client.Credentials{Email: strings.TrimSpace(lf.email), Password: lf.password}
		return lf, func() tea.Msg { return SubmittedMsg{Credentials: creds} }
	}
	return lf, cmd
}

// View implements tea.Model
func (lf *LoginForm) View() string {
	width := max(lf.width/2, 50)
	return lipgloss.NewStyle().
		Width(width).
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary).
		Render(lf.form.View())
}
