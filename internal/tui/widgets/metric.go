// ABOUTME: Metric block widget showing a headline number with a caption
// ABOUTME: Used for the summary row of the statistics screen

package widgets

import (
	"github.com/charmbracelet/lipgloss"
)

// MetricBlock renders a bordered value with a label underneath
func MetricBlock(value, label string, color lipgloss.Color, width int) string {
	valueStyle := lipgloss.NewStyle().
		Foreground(color).
		Bold(true).
		Width(width).
		Align(lipgloss.Center)
	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#9CA3AF")).
		Width(width).
		Align(lipgloss.Center)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#374151")).
		Render(lipgloss.JoinVertical(lipgloss.Center, valueStyle.Render(value), labelStyle.Render(label)))
}

// Badge renders text on a colored background
func Badge(text string, fg, bg lipgloss.Color) string {
	return lipgloss.NewStyle().
		Foreground(fg).
		Background(bg).
		Padding(0, 1).
		Bold(true).
		Render(text)
}
