// Package render formats blame results and session listings for the terminal.
package render

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/aiblame/aiblame/pkg/models"
)

var (
	hashStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	subjectStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	authorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	addStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	delStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	fileStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	titleStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// Header renders the compact one-line commit header.
func Header(commit models.Commit) string {
	return fmt.Sprintf("%s %s %s %s %s",
		hashStyle.Render(commit.ShortHash()),
		subjectStyle.Render(commit.Subject),
		dimStyle.Render("•"),
		authorStyle.Render(commit.Author),
		dimStyle.Render("("+commit.When.Format("2006-01-02")+")"))
}

// MatchInfo renders the session/strategy line under the header.
func MatchInfo(sessionID, strategy string) string {
	return dimStyle.Render(fmt.Sprintf("Session: %s (matched by %s)", sessionID, strategy))
}

// DiffStat renders "+N -M" with the usual coloring.
func DiffStat(change models.FileChange) string {
	return addStyle.Render(fmt.Sprintf("+%d", change.Added)) + " " +
		delStyle.Render(fmt.Sprintf("-%d", change.Deleted))
}

// StatsTable renders the per-file change table with a totals row.
func StatsTable(stats map[string]models.FileChange) string {
	if len(stats) == 0 {
		return ""
	}

	names := make([]string, 0, len(stats))
	width := 0
	for name := range stats {
		names = append(names, name)
		if len(name) > width {
			width = len(name)
		}
	}
	sort.Strings(names)

	var b strings.Builder
	var totalAdd, totalDel int
	for _, name := range names {
		change := stats[name]
		b.WriteString(fmt.Sprintf("%-*s  %s\n", width, name, DiffStat(change)))
		totalAdd += change.Added
		totalDel += change.Deleted
	}
	b.WriteString(dimStyle.Render("Total: "))
	b.WriteString(DiffStat(models.FileChange{Added: totalAdd, Deleted: totalDel}))
	b.WriteString("\n")
	return b.String()
}

// PromptsTitle renders the section heading above the prompt list.
func PromptsTitle() string {
	return titleStyle.Render("Prompts")
}

// Prompt renders one numbered prompt: header line, the prompt text, and the
// edited files that also appear in the commit's stats.
func Prompt(num int, when time.Time, content string, files []string, stats map[string]models.FileChange) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render(fmt.Sprintf("#%d", num)))
	b.WriteString(" ")
	b.WriteString(dimStyle.Render(when.Format("15:04")))
	b.WriteString("\n")
	b.WriteString(content)
	b.WriteString("\n")

	for _, f := range files {
		change, ok := stats[f]
		if !ok {
			continue
		}
		b.WriteString(dimStyle.Render("→ "))
		b.WriteString(fileStyle.Render(f))
		b.WriteString(" ")
		b.WriteString(DiffStat(change))
		b.WriteString("\n")
	}
	return b.String()
}

// Response renders an assistant response under its prompt.
func Response(when time.Time, content string) string {
	return dimStyle.Render(fmt.Sprintf("↳ AI %s", when.Format("15:04"))) + "\n" +
		dimStyle.Render(content) + "\n"
}

// Footnote renders the trailing source line.
func Footnote(text string) string {
	return dimStyle.Render(text)
}

// NoContext renders the message shown when nothing could be attributed.
func NoContext(commit models.Commit) string {
	return warnStyle.Render(fmt.Sprintf("No AI context found for commit %s", commit.ShortHash())) + "\n" +
		dimStyle.Render("No session files available or commit not in session logs.")
}

// SessionsTable renders the recent-sessions listing.
func SessionsTable(list []models.Session) string {
	if len(list) == 0 {
		return dimStyle.Render("No sessions found.")
	}

	header := fmt.Sprintf("%-38s %-17s %9s %9s", "Session", "Modified", "Messages", "Size")
	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n")
	for _, s := range list {
		messages := "-"
		if s.MessageCount > 0 {
			messages = fmt.Sprintf("%d", s.MessageCount)
		}
		b.WriteString(fmt.Sprintf("%-38s %-17s %9s %8dK\n",
			s.SessionID,
			s.LastActivity.Format("2006-01-02 15:04"),
			messages,
			s.SizeBytes/1024))
	}
	return b.String()
}
