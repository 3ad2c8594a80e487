// ABOUTME: Horizontal bar widgets for the statistics screen
// ABOUTME: Renders share-of-total bars and labelled count rows

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// EmptyColor fills the unfilled part of a bar
var EmptyColor = lipgloss.Color("#374151")

// Bar renders a share bar of the given width, percent in [0,100]
func Bar(percent float64, width int, color lipgloss.Color) string {
	if width <= 0 {
		width = 20
	}
	percent = max(0, min(percent, 100))

	filled := int(percent / 100.0 * float64(width))
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(EmptyColor).Render(strings.Repeat("░", width-filled))
}

// CountRow renders "label  [bar] count (pct%)" against total
func CountRow(label string, count, total, labelWidth, barWidth int, color lipgloss.Color) string {
	pct := 0.0
	if total > 0 {
		pct = float64(count) / float64(total) * 100
	}
	name := lipgloss.NewStyle().Width(labelWidth).Render(truncate(label, labelWidth-1))
	return fmt.Sprintf("%s %s %3d (%3.0f%%)", name, Bar(pct, barWidth, color), count, pct)
}

// truncate shortens s to n runes with an ellipsis
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
