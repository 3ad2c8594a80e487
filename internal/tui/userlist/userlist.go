// ABOUTME: Collaborator list screen with search, filters and pagination
// ABOUTME: Uses bubbles textinput for search and paginator for page navigation

package userlist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/EdwinJoye/cda31-dev3-frontend/internal/client"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/directory"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/tui/icons"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/tui/styles"
)

// OpenMsg is sent when the user opens the highlighted collaborator
type OpenMsg struct {
	User client.User
}

// Column widths
const (
	idWidth       = 5
	nameWidth     = 24
	emailWidth    = 30
	categoryWidth = 11
)

// UserList shows one page of the filtered directory
type UserList struct {
	users    []client.User
	filtered []client.User
	filter   directory.Filter
	names    []string
	nameIdx  int
	search   textinput.Model
	pager    paginator.Model
	cursor   int
	width    int
}

// New creates an empty list with perPage rows per page
func New(perPage int) *UserList {
	if perPage <= 0 {
		perPage = directory.DefaultPerPage
	}

	search := textinput.New()
	search.Prompt = icons.Search.String() + " "
	search.Placeholder = "search name, email, city, country"
	search.CharLimit = 64

	pager := paginator.New()
	pager.Type = paginator.Dots
	pager.PerPage = perPage
	pager.ActiveDot = lipgloss.NewStyle().Foreground(styles.Primary).Render("•")
	pager.InactiveDot = lipgloss.NewStyle().Foreground(styles.Surface).Render("•")

	l := &UserList{
		search:  search,
		pager:   pager,
		nameIdx: -1,
	}
	l.refilter()
	return l
}

// SetUsers replaces the directory and keeps the current filters
func (l *UserList) SetUsers(users []client.User) {
	l.users = users
	l.names = directory.UniqueNames(users)
	if l.nameIdx >= len(l.names) {
		l.nameIdx = -1
		l.filter.Name = ""
	}
	l.refilter()
}

// SetWidth sets the rendering width
func (l *UserList) SetWidth(width int) {
	l.width = width
}

// Filter returns the active filter
func (l *UserList) Filter() directory.Filter {
	return l.filter
}

// Searching reports whether the search input has focus
func (l *UserList) Searching() bool {
	return l.search.Focused()
}

// Page returns the 1-based current page
func (l *UserList) Page() int {
	return l.pager.Page + 1
}

// Visible returns the collaborators on the current page
func (l *UserList) Visible() []client.User {
	page, _ := directory.Paginate(l.filtered, l.Page(), l.pager.PerPage)
	return page
}

// Highlighted returns the collaborator under the cursor
func (l *UserList) Highlighted() (client.User, bool) {
	visible := l.Visible()
	if l.cursor < 0 || l.cursor >= len(visible) {
		return client.User{}, false
	}
	return visible[l.cursor], true
}

// refilter re-applies the filter and clamps page and cursor
func (l *UserList) refilter() {
	l.filter.Text = l.search.Value()
	l.filtered = l.filter.Apply(l.users)
	if len(l.filtered) == 0 {
		l.pager.TotalPages = 1
	} else {
		l.pager.SetTotalPages(len(l.filtered))
	}
	if l.pager.Page >= l.pager.TotalPages {
		l.pager.Page = l.pager.TotalPages - 1
	}
	l.clampCursor()
}

func (l *UserList) clampCursor() {
	n := len(l.Visible())
	if l.cursor >= n {
		l.cursor = n - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

// cycleCategory moves to the next category, wrapping through "all"
func (l *UserList) cycleCategory() {
	switch l.filter.Category {
	case "":
		l.filter.Category = client.Categories[0]
	default:
		next := ""
		for i, c := range client.Categories {
			if c == l.filter.Category && i+1 < len(client.Categories) {
				next = string(client.Categories[i+1])
			}
		}
		l.filter.Category = client.Category(next)
	}
	l.pager.Page = 0
	l.refilter()
}

// cycleName moves to the next distinct full name, wrapping through "all"
func (l *UserList) cycleName() {
	if len(l.names) == 0 {
		return
	}
	l.nameIdx++
	if l.nameIdx >= len(l.names) {
		l.nameIdx = -1
		l.filter.Name = ""
	} else {
		l.filter.Name = l.names[l.nameIdx]
	}
	l.pager.Page = 0
	l.refilter()
}

// reset clears every filter
func (l *UserList) reset() {
	l.search.SetValue("")
	l.filter = directory.Filter{}
	l.nameIdx = -1
	l.pager.Page = 0
	l.refilter()
}

// Init implements tea.Model
func (l *UserList) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (l *UserList) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if l.search.Focused() {
			var cmd tea.Cmd
			l.search, cmd = l.search.Update(msg)
			return l, cmd
		}
		return l, nil
	}

	if l.search.Focused() {
		switch key.String() {
		case "esc", "enter":
			l.search.Blur()
			return l, nil
		}
		var cmd tea.Cmd
		l.search, cmd = l.search.Update(key)
		l.pager.Page = 0
		l.refilter()
		return l, cmd
	}

	switch key.String() {
	case "up", "k":
		if l.cursor > 0 {
			l.cursor--
		}
	case "down", "j":
		if l.cursor < len(l.Visible())-1 {
			l.cursor++
		}
	case "left", "h":
		l.pager.PrevPage()
		l.clampCursor()
	case "right", "l":
		l.pager.NextPage()
		l.clampCursor()
	case "/":
		return l, l.search.Focus()
	case "c":
		l.cycleCategory()
	case "f":
		l.cycleName()
	case "esc":
		l.reset()
	case "enter":
		if u, ok := l.Highlighted(); ok {
			return l, func() tea.Msg { return OpenMsg{User: u} }
		}
	}
	return l, nil
}

// View implements tea.Model
func (l *UserList) View() string {
	var sb strings.Builder

	sb.WriteString(l.search.View())
	sb.WriteString("\n")
	sb.WriteString(l.filterLine())
	sb.WriteString("\n\n")

	if len(l.filtered) == 0 {
		sb.WriteString(styles.Subtitle.Render("No collaborators match."))
		return sb.String()
	}

	header := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	sb.WriteString(header.Render(row("", "ID", "NAME", "EMAIL", "CATEGORY", "LOCATION")))
	sb.WriteString("\n")

	for i, u := range l.Visible() {
		marker := "  "
		style := lipgloss.NewStyle()
		if i == l.cursor {
			marker = "▸ "
			style = styles.SelectedRow
		}
		name := u.FullName()
		if u.IsAdmin {
			name += " " + icons.Admin.String()
		}
		line := row(marker, fmt.Sprint(u.ID), name, u.Email, string(u.Category), location(u))
		sb.WriteString(style.Render(line))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(l.pager.View())
	sb.WriteString(styles.Subtitle.Render(fmt.Sprintf("  page %d/%d, %d collaborators", l.Page(), l.pager.TotalPages, len(l.filtered))))
	return sb.String()
}

// filterLine summarizes the active category and name filters
func (l *UserList) filterLine() string {
	category := "all"
	if l.filter.Category != "" {
		category = string(l.filter.Category)
	}
	name := "all"
	if l.filter.Name != "" {
		name = l.filter.Name
	}
	return fmt.Sprintf("%s %s  %s %s",
		styles.KeyStyle.Render("category:"), category,
		styles.KeyStyle.Render("name:"), name)
}

func row(marker, id, name, email, category, place string) string {
	return marker +
		pad(id, idWidth) + " " +
		pad(name, nameWidth) + " " +
		pad(email, emailWidth) + " " +
		pad(category, categoryWidth) + " " +
		place
}

// pad fits s into exactly n cells
func pad(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s + strings.Repeat(" ", max(0, n-lipgloss.Width(s)))
}

func location(u client.User) string {
	switch {
	case u.City == "":
		return u.Country
	case u.Country == "":
		return u.City
	}
	return u.City + ", " + u.Country
}
