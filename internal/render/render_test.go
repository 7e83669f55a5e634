package render

import (
	"strings"
	"testing"
	"time"

	"github.com/aiblame/aiblame/pkg/models"
)

func TestHeader(t *testing.T) {
	commit := models.Commit{
		Hash:    "abc1234def5678abc1234def5678abc1234def56",
		Subject: "add caching layer",
		Author:  "Ada",
		When:    time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	out := Header(commit)
	for _, want := range []string{"abc1234d", "add caching layer", "Ada", "2024-06-01"} {
		if !strings.Contains(out, want) {
			t.Errorf("header missing %q: %s", want, out)
		}
	}
}

func TestMatchInfo(t *testing.T) {
	out := MatchInfo("abc-123", "window")
	if !strings.Contains(out, "Session: abc-123 (matched by window)") {
		t.Errorf("unexpected match info: %s", out)
	}
}

func TestStatsTable(t *testing.T) {
	stats := map[string]models.FileChange{
		"zeta.go":  {Added: 1, Deleted: 2},
		"alpha.go": {Added: 10, Deleted: 0},
	}
	out := StatsTable(stats)

	alphaAt := strings.Index(out, "alpha.go")
	zetaAt := strings.Index(out, "zeta.go")
	if alphaAt < 0 || zetaAt < 0 || alphaAt > zetaAt {
		t.Errorf("files should be listed in sorted order:\n%s", out)
	}
	if !strings.Contains(out, "Total:") {
		t.Errorf("totals row missing:\n%s", out)
	}
	if !strings.Contains(out, "+11") || !strings.Contains(out, "-2") {
		t.Errorf("totals not summed:\n%s", out)
	}

	if StatsTable(nil) != "" {
		t.Error("empty stats should render nothing")
	}
}

func TestPromptShowsOnlyCommittedFiles(t *testing.T) {
	stats := map[string]models.FileChange{
		"kept.go": {Added: 3, Deleted: 1},
	}
	out := Prompt(1, time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC),
		"please refactor", []string{"kept.go", "uncommitted.go"}, stats)

	if !strings.Contains(out, "#1") || !strings.Contains(out, "09:30") {
		t.Errorf("prompt header missing:\n%s", out)
	}
	if !strings.Contains(out, "please refactor") {
		t.Errorf("prompt text missing:\n%s", out)
	}
	if !strings.Contains(out, "kept.go") {
		t.Errorf("committed file missing:\n%s", out)
	}
	if strings.Contains(out, "uncommitted.go") {
		t.Errorf("files outside the commit must be hidden:\n%s", out)
	}
}

func TestNoContext(t *testing.T) {
	out := NoContext(models.Commit{Hash: "abc1234def5678abc1234def5678abc1234def56"})
	if !strings.Contains(out, "No AI context found for commit abc1234d") {
		t.Errorf("unexpected no-context message:\n%s", out)
	}
}

func TestSessionsTable(t *testing.T) {
	list := []models.Session{
		{
			SessionID:    "0a1b2c3d-4e5f-6071-8293-a4b5c6d7e8f9",
			LastActivity: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
			MessageCount: 42,
			SizeBytes:    4096,
		},
		{
			SessionID:    "no-stats-session",
			LastActivity: time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC),
			SizeBytes:    1024,
		},
	}
	out := SessionsTable(list)
	if !strings.Contains(out, "0a1b2c3d-4e5f-6071-8293-a4b5c6d7e8f9") {
		t.Errorf("session id missing:\n%s", out)
	}
	if !strings.Contains(out, "42") {
		t.Errorf("message count missing:\n%s", out)
	}
	if !strings.Contains(out, "4K") {
		t.Errorf("size missing:\n%s", out)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if !strings.Contains(lines[2], " - ") {
		t.Errorf("unknown message count should render as a dash: %q", lines[2])
	}

	if !strings.Contains(SessionsTable(nil), "No sessions found.") {
		t.Error("empty listing should say so")
	}
}
