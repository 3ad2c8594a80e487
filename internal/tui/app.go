// ABOUTME: Root bubbletea model for the intranet TUI
// ABOUTME: Routes between login, list, detail, form and stats screens behind the session guard

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/EdwinJoye/cda31-dev3-frontend/internal/client"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/directory"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/notify"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/session"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/stats"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/tui/icons"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/tui/loginform"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/tui/recentlogins"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/tui/statsview"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/tui/styles"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/tui/userform"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/tui/userlist"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenList
	ScreenDetail
	ScreenForm
	ScreenStats
)

// Layout constants
const (
	minTerminalWidth = 80
	toastTTL         = 5 * time.Second
	tickInterval     = time.Second
)

// loginDoneMsg is sent when a login attempt finishes
type loginDoneMsg struct {
	email string
	err   error
}

// usersLoadedMsg is sent when the directory has been fetched
type usersLoadedMsg struct {
	ok bool
}

// userLoadedMsg is sent when a single collaborator has been fetched
type userLoadedMsg struct {
	user *client.User
}

// savedMsg is sent when a create or update finishes
type savedMsg struct {
	id      int
	created *client.User
	ok      bool
}

// deletedMsg is sent when a delete finishes
type deletedMsg struct {
	id int
	ok bool
}

// tickMsg drives toast expiry
type tickMsg time.Time

// toast is a notification shown until expires
type toast struct {
	notify.Notification
	expires time.Time
}

// Deps are the services the TUI drives
type Deps struct {
	Session   *session.Manager
	Directory *directory.Store
	Toasts    *notify.Queue
	Recent    *recentlogins.RecentLogins
	APIURL    string
}

// App is the root model for the TUI
type App struct {
	ctx       context.Context
	session   *session.Manager
	directory *directory.Store
	queue     *notify.Queue
	recent    *recentlogins.RecentLogins
	apiURL    string
	now       func() time.Time

	screen     Screen
	width      int
	height     int
	busy       bool
	spinner    spinner.Model
	toasts     []toast
	lastUpdate time.Time

	// Child models
	login  *loginform.LoginForm
	list   *userlist.UserList
	form   *userform.UserForm
	stats  *statsview.StatsView
	detail *client.User

	confirmDelete bool
}

// New creates the TUI application
func New(ctx context.Context, deps Deps) *App {
	if deps.Toasts == nil {
		deps.Toasts = notify.NewQueue()
	}
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return &App{
		ctx:       ctx,
		session:   deps.Session,
		directory: deps.Directory,
		queue:     deps.Toasts,
		recent:    deps.Recent,
		apiURL:    deps.APIURL,
		now:       time.Now,
		spinner:   sp,
		list:      userlist.New(directory.DefaultPerPage),
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.tick()}
	if a.session.CheckAndRefresh() {
		a.screen = ScreenList
		cmds = append(cmds, a.loadUsers())
	} else {
		cmds = append(cmds, a.showLogin())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	a.collectToasts()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.list.SetWidth(msg.Width)
		if a.stats != nil {
			a.stats.SetWidth(msg.Width)
		}
		return a, a.forwardToForm(msg)

	case tickMsg:
		a.pruneToasts()
		return a, a.tick()

	case spinner.TickMsg:
		if !a.working() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.screen {
		case ScreenLogin:
			return a.updateLogin(msg)
		case ScreenList:
			return a.updateList(msg)
		case ScreenDetail:
			return a.updateDetail(msg)
		case ScreenForm:
			return a.updateForm(msg)
		case ScreenStats:
			return a.updateStats(msg)
		}

	case loginform.SubmittedMsg:
		a.busy = true
		return a, tea.Batch(a.doLogin(msg.Credentials), a.spinner.Tick)

	case loginform.CancelledMsg:
		return a, tea.Quit

	case loginDoneMsg:
		a.busy = false
		if msg.err != nil {
			a.login = loginform.New(msg.email)
			return a, a.login.Init()
		}
		if a.recent != nil {
			a.recent.Add(msg.email)
		}
		a.login = nil
		if cmd, ok := a.navigate(ScreenList); !ok {
			return a, cmd
		}
		return a, a.loadUsers()

	case usersLoadedMsg:
		a.list.SetUsers(a.directory.Users())
		if msg.ok {
			a.lastUpdate = a.now()
		}
		if a.stats != nil {
			a.stats = statsview.New(stats.Compute(a.directory.Users(), a.now()), a.width)
		}
		return a, nil

	case userLoadedMsg:
		if msg.user != nil && a.screen == ScreenDetail {
			a.detail = msg.user
		}
		return a, nil

	case userlist.OpenMsg:
		u := msg.User
		return a.openDetail(&u, a.fetchUser(u.ID))

	case userform.SubmittedMsg:
		return a.submitForm(msg)

	case userform.CancelledMsg:
		a.form = nil
		if a.detail != nil {
			cmd, _ := a.navigate(ScreenDetail)
			return a, cmd
		}
		cmd, _ := a.navigate(ScreenList)
		return a, cmd

	case savedMsg:
		return a.handleSaved(msg)

	case deletedMsg:
		if !msg.ok {
			return a, nil
		}
		a.detail = nil
		a.list.SetUsers(a.directory.Users())
		cmd, _ := a.navigate(ScreenList)
		return a, cmd

	default:
		// huh forms need their internal messages
		return a, a.forwardToForm(msg)
	}

	return a, nil
}

// forwardToForm passes msg to whichever form is on screen
func (a *App) forwardToForm(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case a.screen == ScreenLogin && a.login != nil:
		_, cmd = a.login.Update(msg)
	case a.screen == ScreenForm && a.form != nil:
		_, cmd = a.form.Update(msg)
	}
	return cmd
}

// navigate moves to screen after the session guard. ok is false when the
// session lapsed and the login screen was shown instead.
func (a *App) navigate(screen Screen) (tea.Cmd, bool) {
	a.confirmDelete = false
	if screen != ScreenLogin && !a.session.CheckAndRefresh() {
		a.queue.Notify(notify.Info("Session expired", "Please log in again"))
		a.collectToasts()
		return a.showLogin(), false
	}
	a.screen = screen
	return nil, true
}

// showLogin resets the views and opens the login form
func (a *App) showLogin() tea.Cmd {
	email := ""
	if a.recent != nil {
		email = a.recent.Last()
	}
	a.screen = ScreenLogin
	a.detail = nil
	a.form = nil
	a.stats = nil
	a.busy = false
	a.login = loginform.New(email)
	return a.login.Init()
}

func (a *App) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.busy || a.login == nil {
		return a, nil
	}
	_, cmd := a.login.Update(msg)
	return a, cmd
}

func (a *App) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.list.Searching() {
		_, cmd := a.list.Update(msg)
		return a, cmd
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "r":
		if cmd, ok := a.navigate(ScreenList); !ok {
			return a, cmd
		}
		return a, a.loadUsers()
	case "n":
		if !a.session.IsAdmin() {
			a.queue.Notify(notify.Error("Forbidden", "Only administrators can add collaborators"))
			a.collectToasts()
			return a, nil
		}
		return a.openForm(userform.NewCreate(true))
	case "s":
		cmd, ok := a.navigate(ScreenStats)
		if !ok {
			return a, cmd
		}
		a.stats = statsview.New(stats.Compute(a.directory.Users(), a.now()), a.width)
		return a, a.loadUsers()
	case "R":
		return a.openRandom()
	case "p":
		if me := a.session.ConnectedUser(); me != nil {
			return a.openDetail(me, a.fetchUser(me.ID))
		}
	case "L":
		a.session.Logout()
		a.queue.Notify(notify.Info("Logged out", ""))
		a.collectToasts()
		return a, a.showLogin()
	}

	_, cmd := a.list.Update(msg)
	return a, cmd
}

func (a *App) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.confirmDelete {
		a.confirmDelete = false
		if msg.String() == "y" && a.detail != nil {
			if cmd, ok := a.navigate(ScreenDetail); !ok {
				return a, cmd
			}
			return a, a.deleteUser(a.detail.ID)
		}
		return a, nil
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "b", "esc":
		a.detail = nil
		cmd, _ := a.navigate(ScreenList)
		return a, cmd
	case "R":
		return a.openRandom()
	case "e":
		if a.detail == nil || !a.canEdit(a.detail.ID) {
			return a, nil
		}
		return a.openForm(userform.NewEdit(*a.detail, a.session.IsAdmin()))
	case "d":
		if a.detail != nil && a.session.IsAdmin() {
			a.confirmDelete = true
		}
	}
	return a, nil
}

func (a *App) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.form == nil || a.working() {
		return a, nil
	}
	_, cmd := a.form.Update(msg)
	return a, cmd
}

func (a *App) updateStats(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "r":
		if cmd, ok := a.navigate(ScreenStats); !ok {
			return a, cmd
		}
		return a, a.loadUsers()
	case "b", "esc":
		a.stats = nil
		cmd, _ := a.navigate(ScreenList)
		return a, cmd
	}
	return a, nil
}

// openDetail shows u and runs fetch to refresh it
func (a *App) openDetail(u *client.User, fetch tea.Cmd) (tea.Model, tea.Cmd) {
	cmd, ok := a.navigate(ScreenDetail)
	if !ok {
		return a, cmd
	}
	a.detail = u
	a.directory.SetSelected(u)
	return a, fetch
}

// openRandom shows a random collaborator other than the connected user
func (a *App) openRandom() (tea.Model, tea.Cmd) {
	cmd, ok := a.navigate(ScreenDetail)
	if !ok {
		return a, cmd
	}
	return a, tea.Batch(a.fetchRandom(), a.spinner.Tick)
}

// openForm shows f behind the session guard
func (a *App) openForm(f *userform.UserForm) (tea.Model, tea.Cmd) {
	cmd, ok := a.navigate(ScreenForm)
	if !ok {
		return a, cmd
	}
	a.form = f
	a.form.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
	return a, a.form.Init()
}

// canEdit reports whether the connected user may edit collaborator id
func (a *App) canEdit(id int) bool {
	me := a.session.ConnectedUser()
	return me != nil && (me.IsAdmin || me.ID == id)
}

func (a *App) submitForm(msg userform.SubmittedMsg) (tea.Model, tea.Cmd) {
	if cmd, ok := a.navigate(ScreenForm); !ok {
		return a, cmd
	}
	if msg.Patch != nil && msg.Patch.IsEmpty() {
		a.form = nil
		a.queue.Notify(notify.Info("Nothing to save", "No field was changed"))
		a.collectToasts()
		cmd, _ := a.navigate(ScreenDetail)
		return a, cmd
	}
	return a, tea.Batch(a.save(msg), a.spinner.Tick)
}

func (a *App) handleSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	if !msg.ok {
		// Keep the entered values so the user can correct and resubmit
		if a.form != nil {
			return a, a.form.Reopen()
		}
		return a, nil
	}

	a.form = nil
	a.list.SetUsers(a.directory.Users())
	a.lastUpdate = a.now()

	if msg.created != nil {
		return a.openDetail(msg.created, nil)
	}
	if msg.id != 0 {
		if u, ok := a.directory.Find(msg.id); ok {
			return a.openDetail(&u, a.fetchUser(msg.id))
		}
		return a, a.fetchUser(msg.id)
	}
	cmd, _ := a.navigate(ScreenList)
	return a, cmd
}

// working reports whether a request is in flight
func (a *App) working() bool {
	return a.busy || a.directory.Loading()
}

// collectToasts moves queued notifications onto the screen
func (a *App) collectToasts() {
	for _, n := range a.queue.Drain() {
		a.toasts = append(a.toasts, toast{Notification: n, expires: a.now().Add(toastTTL)})
	}
}

// pruneToasts drops toasts older than toastTTL
func (a *App) pruneToasts() {
	now := a.now()
	kept := a.toasts[:0]
	for _, t := range a.toasts {
		if now.Before(t.expires) {
			kept = append(kept, t)
		}
	}
	a.toasts = kept
}

func (a *App) tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Commands wrapping the blocking store calls

func (a *App) doLogin(creds client.Credentials) tea.Cmd {
	return func() tea.Msg {
		err := a.session.Login(a.ctx, creds)
		return loginDoneMsg{email: creds.Email, err: err}
	}
}

func (a *App) loadUsers() tea.Cmd {
	return tea.Batch(func() tea.Msg {
		_, ok := a.directory.FetchAll(a.ctx)
		return usersLoadedMsg{ok: ok}
	}, a.spinner.Tick)
}

func (a *App) fetchUser(id int) tea.Cmd {
	return func() tea.Msg {
		return userLoadedMsg{user: a.directory.FetchByID(a.ctx, id)}
	}
}

func (a *App) fetchRandom() tea.Cmd {
	return func() tea.Msg {
		return userLoadedMsg{user: a.directory.FetchRandom(a.ctx)}
	}
}

func (a *App) save(msg userform.SubmittedMsg) tea.Cmd {
	return func() tea.Msg {
		if msg.Input != nil {
			created, err := a.directory.Create(a.ctx, *msg.Input)
			return savedMsg{created: created, ok: err == nil}
		}
		ok := a.directory.Update(a.ctx, msg.ID, *msg.Patch)
		return savedMsg{id: msg.ID, ok: ok}
	}
}

func (a *App) deleteUser(id int) tea.Cmd {
	return tea.Batch(func() tea.Msg {
		return deletedMsg{id: id, ok: a.directory.Delete(a.ctx, id)}
	}, a.spinner.Tick)
}

// View implements tea.Model
func (a *App) View() string {
	var content string
	switch a.screen {
	case ScreenLogin:
		content = a.viewLogin()
	case ScreenList:
		content = a.list.View()
	case ScreenDetail:
		content = a.viewDetail()
	case ScreenForm:
		if a.form != nil {
			content = a.form.View()
		}
	case ScreenStats:
		if a.stats != nil {
			content = a.stats.View()
		}
	}
	return a.wrapWithFrame(content)
}

func (a *App) viewLogin() string {
	if a.busy {
		return a.spinner.View() + " Signing in..."
	}
	if a.login == nil {
		return ""
	}
	return a.login.View()
}

// viewDetail renders the selected collaborator as a card
func (a *App) viewDetail() string {
	u := a.detail
	if u == nil {
		if a.working() {
			return a.spinner.View() + " Loading..."
		}
		return styles.Subtitle.Render("No collaborator selected.")
	}

	field := func(icon icons.Icon, label, value string) string {
		if value == "" {
			value = "-"
		}
		return fmt.Sprintf("%s %s %s", icon.String(), styles.LabelStyle.Render(label), styles.ValueStyle.Render(value))
	}

	name := styles.Title.Render(u.FullName())
	if u.IsAdmin {
		name += " " + styles.AdminBadge.Render("ADMIN")
	}

	birth := u.Birthdate
	if age, ok := stats.Age(u.Birthdate, a.now()); ok {
		birth = fmt.Sprintf("%s (%d years)", u.Birthdate, age)
	}
	place := strings.Trim(u.City+", "+u.Country, ", ")

	lines := []string{
		name,
		field(icons.Mail, "Email", u.Email),
		field(icons.Phone, "Phone", u.Phone),
		field(icons.Cake, "Birthdate", birth),
		field(icons.Place, "Location", place),
		field(icons.Tag, "Category", string(u.Category)),
		field(icons.User, "Gender", string(u.Gender)),
	}
	if u.Photo != "" {
		lines = append(lines, field(icons.Info, "Photo", u.Photo))
	}
	if a.confirmDelete {
		lines = append(lines, "", styles.ErrorText.Render(fmt.Sprintf("Delete %s? y to confirm, any key to cancel", u.FullName())))
	}

	return styles.ActivePanel.Render(strings.Join(lines, "\n"))
}

// frameWidth is the drawable width, one column short of the terminal
func (a *App) frameWidth() int {
	return max(a.width-1, minTerminalWidth)
}

// renderHeader creates the header bar with app branding and the session
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftText := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("Intranet"))

	rightText := ""
	if me := a.session.ConnectedUser(); me != nil && a.screen != ScreenLogin {
		who := me.Email
		if me.IsAdmin {
			who = icons.Admin.String() + " " + who
		}
		if left := a.session.ExpiresAt().Sub(a.now()); left > 0 {
			who += fmt.Sprintf(" (%dm)", int(left.Minutes()))
		}
		rightText = " " + contextStyle.Render(who) + " "
	} else {
		rightText = " " + lipgloss.NewStyle().Foreground(styles.Muted).Render(a.apiURL) + " "
	}

	fillWidth := max(0, width-4-lipgloss.Width(leftText)-lipgloss.Width(rightText))
	header := "╭─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╮"
	return borderStyle.Render(header)
}

// shortcuts lists the key hints for the current screen
func (a *App) shortcuts() []string {
	switch a.screen {
	case ScreenLogin:
		return []string{"Tab Next", "Enter Submit", "Esc Quit"}
	case ScreenList:
		if a.list.Searching() {
			return []string{"Enter Done", "Esc Done"}
		}
		keys := []string{"↑↓ Select", "←→ Page", "Enter Open", "/ Search", "c Category", "f Name", "R Random", "s Stats"}
		if a.session.IsAdmin() {
			keys = append(keys, "n New")
		}
		return append(keys, "p Profile", "L Logout", "q Quit")
	case ScreenDetail:
		keys := []string{"b Back"}
		if a.detail != nil && a.canEdit(a.detail.ID) {
			keys = append(keys, "e Edit")
		}
		if a.session.IsAdmin() {
			keys = append(keys, "d Delete")
		}
		return append(keys, "R Random", "q Quit")
	case ScreenForm:
		return []string{"Tab Next", "Enter Confirm", "Esc Cancel"}
	case ScreenStats:
		return []string{"r Refresh", "b Back", "q Quit"}
	}
	return nil
}

// renderFooter creates the footer with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	var styled []string
	for _, s := range a.shortcuts() {
		k, label, ok := strings.Cut(s, " ")
		if !ok {
			styled = append(styled, s)
			continue
		}
		styled = append(styled, keyStyle.Render(k)+" "+labelStyle.Render(label))
	}
	leftText := " " + strings.Join(styled, "  ") + " "

	rightText := ""
	switch {
	case a.working():
		rightText = " " + a.spinner.View() + " " + statusStyle.Render("Working") + " "
	case !a.lastUpdate.IsZero() && (a.screen == ScreenList || a.screen == ScreenStats):
		rightText = " " + statusStyle.Render("Updated "+formatTimeSince(a.now().Sub(a.lastUpdate))) + " "
	}

	// Drop hints from the right until the footer fits
	for len(styled) > 1 && lipgloss.Width(leftText)+lipgloss.Width(rightText)+4 > width {
		styled = styled[:len(styled)-1]
		leftText = " " + strings.Join(styled, "  ") + " "
	}

	fillWidth := max(0, width-4-lipgloss.Width(leftText)-lipgloss.Width(rightText))
	footer := "╰─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╯"
	return borderStyle.Render(footer)
}

// renderToasts renders the visible notifications, newest last
func (a *App) renderToasts() string {
	if len(a.toasts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(a.toasts))
	for _, t := range a.toasts {
		icon, color := icons.Info, styles.Info
		switch t.Level {
		case notify.LevelSuccess:
			icon, color = icons.CheckOK, styles.Secondary
		case notify.LevelError:
			icon, color = icons.Critical, styles.Danger
		}
		line := lipgloss.NewStyle().Foreground(color).Bold(true).Render(icon.String() + " " + t.Title)
		if t.Message != "" {
			line += " " + styles.Subtitle.Render(t.Message)
		}
		lines = append(lines, line)
	}
	return lipgloss.NewStyle().
		Width(a.frameWidth()).
		Align(lipgloss.Right).
		Render(strings.Join(lines, "\n"))
}

// formatTimeSince formats an elapsed duration in human-readable form
func formatTimeSince(d time.Duration) string {
	switch {
	case d < 5*time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh ago", int(d.Hours()))
}

// wrapWithFrame wraps content with header, toasts and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder
	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	if toasts := a.renderToasts(); toasts != "" {
		sb.WriteString(toasts)
		sb.WriteString("\n")
	}
	sb.WriteString(a.renderFooter())
	return sb.String()
}

// Run starts the TUI and blocks until it exits
func Run(ctx context.Context, deps Deps) error {
	p := tea.NewProgram(
		New(ctx, deps),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
