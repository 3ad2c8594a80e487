// ABOUTME: Human and JSON renderers for collaborator output
// ABOUTME: Shared by the users and stats commands

package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/EdwinJoye/cda31-dev3-frontend/internal/client"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/stats"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/tui/styles"
)

// userPage is the JSON shape of users list
type userPage struct {
	Page       int           `json:"page"`
	TotalPages int           `json:"totalPages"`
	Total      int           `json:"total"`
	Users      []client.User `json:"users"`
}

// formatUserListJSON formats one page of collaborators as JSON
func formatUserListJSON(users []client.User, page, totalPages, total int) string {
	if users == nil {
		users = []client.User{}
	}
	data, _ := json.MarshalIndent(userPage{
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
		Users:      users,
	}, "", "  ")
	return string(data)
}

// formatUserListHuman formats one page of collaborators as a table
func formatUserListHuman(users []client.User, page, totalPages, total int) string {
	if total == 0 {
		return "No collaborators found."
	}
	if len(users) == 0 {
		return fmt.Sprintf("Page %d is empty (%d pages).", page, totalPages)
	}

	headerStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		admin := ""
		if u.IsAdmin {
			admin = "yes"
		}
		rows = append(rows, []string{
			strconv.Itoa(u.ID),
			u.FullName(),
			u.Email,
			string(u.Category),
			place(u),
			admin,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Muted)).
		Headers("ID", "NAME", "EMAIL", "CATEGORY", "LOCATION", "ADMIN").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	return fmt.Sprintf("%s\nPage %d/%d, %d collaborators", t.String(), page, totalPages, total)
}

// formatUserJSON formats one collaborator as JSON
func formatUserJSON(u *client.User) string {
	data, _ := json.MarshalIndent(u, "", "  ")
	return string(data)
}

// formatUserHuman formats one collaborator as a labelled card
func formatUserHuman(u *client.User) string {
	var sb strings.Builder
	name := u.FullName()
	if u.IsAdmin {
		name += " (administrator)"
	}
	fmt.Fprintf(&sb, "%s\n", name)
	fmt.Fprintf(&sb, "  ID:        %d\n", u.ID)
	fmt.Fprintf(&sb, "  Email:     %s\n", u.Email)
	fmt.Fprintf(&sb, "  Gender:    %s\n", orDash(string(u.Gender)))
	fmt.Fprintf(&sb, "  Category:  %s\n", orDash(string(u.Category)))
	fmt.Fprintf(&sb, "  Phone:     %s\n", orDash(u.Phone))
	birth := orDash(u.Birthdate)
	if age, ok := stats.Age(u.Birthdate, time.Now()); ok {
		birth = fmt.Sprintf("%s (%d years)", u.Birthdate, age)
	}
	fmt.Fprintf(&sb, "  Birthdate: %s\n", birth)
	fmt.Fprintf(&sb, "  Location:  %s", orDash(place(*u)))
	if u.Photo != "" {
		fmt.Fprintf(&sb, "\n  Photo:     %s", u.Photo)
	}
	return sb.String()
}

// place joins city and country, skipping empty parts
func place(u client.User) string {
	switch {
	case u.City == "":
		return u.Country
	case u.Country == "":
		return u.City
	}
	return u.City + ", " + u.Country
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
