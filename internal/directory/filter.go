// ABOUTME: Filtering and pagination over the loaded directory
// ABOUTME: Matches by name, category and free text; pages are 1-based

package directory

import (
	"slices"
	"sort"
	"strings"

	"github.com/EdwinJoye/cda31-dev3-frontend/internal/client"
)

// DefaultPerPage is the list page size
const DefaultPerPage = 8

// Filter narrows the collection. Zero-valued fields match everything.
type Filter struct {
	Name     string          // substring of "first last"
	Category client.Category // exact match
	Text     string          // substring of full name, email, city or country
}

// IsZero reports whether no criterion is set
func (f Filter) IsZero() bool {
	return f.Name == "" && f.Category == "" && f.Text == ""
}

// Match reports whether u satisfies every criterion, ignoring case
func (f Filter) Match(u client.User) bool {
	fullName := strings.ToLower(u.FullName())

	if f.Name != "" && !strings.Contains(fullName, strings.ToLower(f.Name)) {
		return false
	}
	if f.Category != "" && u.Category != f.Category {
		return false
	}
	if f.Text != "" {
		text := strings.ToLower(f.Text)
		if !strings.Contains(fullName, text) &&
			!strings.Contains(strings.ToLower(u.Email), text) &&
			!strings.Contains(strings.ToLower(u.City), text) &&
			!strings.Contains(strings.ToLower(u.Country), text) {
			return false
		}
	}
	return true
}

// Apply returns the users matching f, keeping their order
func (f Filter) Apply(users []client.User) []client.User {
	out := make([]client.User, 0, len(users))
	for _, u := range users {
		if f.Match(u) {
			out = append(out, u)
		}
	}
	return out
}

// Paginate returns the given 1-based page and the total number of pages.
// perPage <= 0 uses DefaultPerPage. Pages outside the range are empty.
// The returned page is a copy and never aliases users.
func Paginate(users []client.User, page, perPage int) ([]client.User, int) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	totalPages := (len(users) + perPage - 1) / perPage
	if page < 1 || page > totalPages {
		return []client.User{}, totalPages
	}

	start := (page - 1) * perPage
	end := min(start+perPage, len(users))
	return slices.Clone(users[start:end]), totalPages
}

// UniqueNames returns the distinct full names, sorted
func UniqueNames(users []client.User) []string {
	seen := make(map[string]bool, len(users))
	names := make([]string, 0, len(users))
	for _, u := range users {
		name := u.FullName()
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
