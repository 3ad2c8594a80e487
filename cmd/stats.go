// ABOUTME: Stats command for the intranet CLI
// ABOUTME: Summarizes the directory by category, gender, city and age

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/EdwinJoye/cda31-dev3-frontend/internal/stats"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/tui/styles"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/tui/widgets"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show directory statistics",
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, e *env) int {
			return runStats(ctx, e, os.Stdout, time.Now())
		})
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

// runStats fetches the directory, summarizes it and returns exit code
func runStats(ctx context.Context, e *env, w io.Writer, now time.Time) int {
	if code := e.requireSession(w); code != exitOK {
		return code
	}

	users, ok := e.directory.FetchAll(ctx)
	if !ok {
		return exitFailure
	}
	summary := stats.Compute(users, now)

	if IsJSONOutput() {
		fmt.Fprintln(w, formatStatsJSON(summary))
	} else {
		fmt.Fprintln(w, formatStatsHuman(summary))
	}
	return exitOK
}

// formatStatsJSON formats the summary as JSON
func formatStatsJSON(s stats.Summary) string {
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}

// formatStatsHuman formats the summary with share bars
func formatStatsHuman(s stats.Summary) string {
	if s.Total == 0 {
		return "No collaborators."
	}

	heading := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Collaborators: %d\n", s.Total)
	fmt.Fprintf(&sb, "Administrators: %d (%d%%)\n", s.Admins, s.AdminPercent)
	if s.WithAge > 0 {
		fmt.Fprintf(&sb, "Average age: %d (%d with a birthdate)\n", s.AverageAge, s.WithAge)
	} else {
		sb.WriteString("Average age: -\n")
	}

	sections := []struct {
		title  string
		counts []stats.Count
		color  lipgloss.Color
	}{
		{"By category", s.Categories, styles.Primary},
		{"By gender", s.Genders, styles.Info},
		{"Top cities", s.Cities, styles.Secondary},
		{"By age", s.AgeGroups, styles.Warning},
	}
	for _, sec := range sections {
		fmt.Fprintf(&sb, "\n%s\n", heading.Render(sec.title))
		for _, c := range sec.counts {
			fmt.Fprintf(&sb, "  %s\n", widgets.CountRow(c.Label, c.Count, s.Total, 14, 20, sec.color))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
