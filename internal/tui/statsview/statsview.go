// ABOUTME: Statistics screen for the collaborator directory
// ABOUTME: Shows headline metrics and category, gender, city and age breakdowns

package statsview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/EdwinJoye/cda31-dev3-frontend/internal/stats"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/tui/styles"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/tui/widgets"
)

const (
	labelWidth = 14
	barWidth   = 20
	// twoColumnWidth is the minimum width for side-by-side sections
	twoColumnWidth = 100
)

// StatsView renders a stats.Summary
type StatsView struct {
	summary stats.Summary
	width   int
}

// New creates a view for summary
func New(summary stats.Summary, width int) *StatsView {
	return &StatsView{summary: summary, width: width}
}

// SetWidth updates the rendering width
func (v *StatsView) SetWidth(width int) {
	v.width = width
}

// Summary returns the rendered summary
func (v *StatsView) Summary() stats.Summary {
	return v.summary
}

// View renders the screen
func (v *StatsView) View() string {
	s := v.summary
	if s.Total == 0 {
		return styles.Panel.Render("No collaborators yet.")
	}

	avg := "-"
	if s.WithAge > 0 {
		avg = fmt.Sprint(s.AverageAge)
	}
	metrics := lipgloss.JoinHorizontal(lipgloss.Top,
		widgets.MetricBlock(fmt.Sprint(s.Total), "collaborators", styles.Primary, 16),
		widgets.MetricBlock(fmt.Sprint(s.Admins), "administrators", styles.Warning, 16),
		widgets.MetricBlock(fmt.Sprintf("%d%%", s.AdminPercent), "admin share", styles.Info, 16),
		widgets.MetricBlock(avg, "average age", styles.Secondary, 16),
	)

	categories := section("By category", s.Categories, s.Total, styles.Primary)
	genders := section("By gender", s.Genders, s.Total, styles.Info)
	cities := section("Top cities", s.Cities, s.Total, styles.Secondary)
	ages := section("By age", s.AgeGroups, s.WithAge, styles.Warning)

	var body string
	if v.width >= twoColumnWidth {
		left := lipgloss.JoinVertical(lipgloss.Left, categories, "", genders)
		right := lipgloss.JoinVertical(lipgloss.Left, cities, "", ages)
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, "    ", right)
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left, categories, "", genders, "", cities, "", ages)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		styles.Title.Render("Directory statistics"),
		metrics,
		"",
		body,
	)
}

// section renders a titled list of count rows against total
func section(title string, counts []stats.Count, total int, color lipgloss.Color) string {
	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Foreground(color).Bold(true).Render(title))
	for _, c := range counts {
		sb.WriteString("\n")
		sb.WriteString(widgets.CountRow(c.Label, c.Count, total, labelWidth, barWidth, color))
	}
	return sb.String()
}
