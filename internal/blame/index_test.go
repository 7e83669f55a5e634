package blame

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSession(t *testing.T, dir, sessionID string, lines ...string) SessionFile {
	t.Helper()
	path := filepath.Join(dir, sessionID+".jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("failed to write session fixture: %v", err)
	}
	return SessionFile{Path: path, SessionID: sessionID}
}

func promptLine(ts, text string) string {
	return `{"type":"user","userType":"external","timestamp":"` + ts + `","message":{"content":"` + text + `"}}`
}

func editLine(ts, path string) string {
	return `{"type":"assistant","timestamp":"` + ts + `","message":{"content":[{"type":"tool_use","name":"Edit","input":{"file_path":"` + path + `"}}]}}`
}

func commitResultLine(ts, branch, hash string) string {
	return `{"type":"user","timestamp":"` + ts + `","toolUseResult":{"stdout":"[` + branch + ` ` + hash + `] commit subject"}}`
}

func TestBuildIndexNoFiles(t *testing.T) {
	_, err := BuildIndex(nil)
	if !errors.Is(err, ErrNoSessions) {
		t.Errorf("expected ErrNoSessions, got %v", err)
	}
}

func TestBuildIndexSingleSession(t *testing.T) {
	dir := t.TempDir()
	sf := writeSession(t, dir, "session-a",
		promptLine("2024-01-01T10:00:00Z", "add a login page"),
		editLine("2024-01-01T10:00:10Z", "/repo/login.go"),
		editLine("2024-01-01T10:00:20Z", "/repo/login.go"),
		editLine("2024-01-01T10:00:25Z", "/repo/routes.go"),
		commitResultLine("2024-01-01T10:01:00Z", "main", "abc1234"),
	)

	idx, err := BuildIndex([]SessionFile{sf})
	if err != nil {
		t.Fatalf("BuildIndex failed: %v", err)
	}

	if len(idx.Timeline) != 1 {
		t.Fatalf("expected 1 timeline entry, got %d", len(idx.Timeline))
	}
	interaction := idx.Timeline[0].Interaction
	if interaction.Prompt != "add a login page" {
		t.Errorf("unexpected prompt: %q", interaction.Prompt)
	}
	if interaction.SessionID != "session-a" {
		t.Errorf("unexpected session id: %q", interaction.SessionID)
	}
	if len(interaction.FilesEdited) != 2 {
		t.Errorf("files edited should be a set of 2, got %v", interaction.FilesEdited)
	}
	if _, ok := interaction.FilesEdited["/repo/login.go"]; !ok {
		t.Error("login.go should be recorded")
	}
	if len(interaction.ExplicitHashes) != 1 || interaction.ExplicitHashes[0] != "abc1234" {
		t.Errorf("unexpected hashes: %v", interaction.ExplicitHashes)
	}
	if idx.HashMap["abc1234"] != interaction {
		t.Error("hash map should point at the interaction")
	}
}

func TestBuildIndexTimelineSortedAcrossSessions(t *testing.T) {
	dir := t.TempDir()
	// Second file holds the earlier prompt; the sort must interleave them.
	a := writeSession(t, dir, "session-a",
		promptLine("2024-01-01T12:00:00Z", "later prompt"),
	)
	b := writeSession(t, dir, "session-b",
		promptLine("2024-01-01T09:00:00Z", "earlier prompt"),
		promptLine("2024-01-01T13:00:00Z", "latest prompt"),
	)

	idx, err := BuildIndex([]SessionFile{a, b})
	if err != nil {
		t.Fatalf("BuildIndex failed: %v", err)
	}

	if len(idx.Timeline) != 3 {
		t.Fatalf("expected 3 timeline entries, got %d", len(idx.Timeline))
	}
	for i := 1; i < len(idx.Timeline); i++ {
		if idx.Timeline[i-1].Timestamp > idx.Timeline[i].Timestamp {
			t.Errorf("timeline out of order at %d", i)
		}
	}
	if idx.Timeline[0].Interaction.Prompt != "earlier prompt" {
		t.Errorf("unexpected first prompt: %q", idx.Timeline[0].Interaction.Prompt)
	}
	if len(idx.Keys) != 3 {
		t.Fatalf("keys must parallel the timeline, got %d", len(idx.Keys))
	}
	for i, entry := range idx.Timeline {
		if idx.Keys[i] != entry.Timestamp {
			t.Errorf("keys[%d] does not match timeline", i)
		}
	}
}

func TestBuildIndexDuplicateHashLastWriteWins(t *testing.T) {
	dir := t.TempDir()
	a := writeSession(t, dir, "session-a",
		promptLine("2024-01-01T09:00:00Z", "first owner"),
		commitResultLine("2024-01-01T09:01:00Z", "main", "abc1234"),
	)
	b := writeSession(t, dir, "session-b",
		promptLine("2024-01-01T10:00:00Z", "second owner"),
		commitResultLine("2024-01-01T10:01:00Z", "main", "abc1234"),
	)

	idx, err := BuildIndex([]SessionFile{a, b})
	if err != nil {
		t.Fatalf("BuildIndex failed: %v", err)
	}

	owner, ok := idx.HashMap["abc1234"]
	if !ok {
		t.Fatal("hash should be mapped")
	}
	if owner.Prompt != "second owner" {
		t.Errorf("later write should win, got %q", owner.Prompt)
	}
}

func TestBuildIndexSkipsGarbage(t *testing.T) {
	dir := t.TempDir()
	sf := writeSession(t, dir, "session-a",
		`not json at all`,
		`{"type":"user","userType":"external","timestamp":"bogus","message":{"content":"skipped for timestamp"}}`,
		promptLine("2024-01-01T10:00:00Z", "the real prompt"),
		`{"truncated`,
	)
	missing := SessionFile{Path: filepath.Join(dir, "does-not-exist.jsonl"), SessionID: "ghost"}

	idx, err := BuildIndex([]SessionFile{missing, sf})
	if err != nil {
		t.Fatalf("bad lines and missing files must not fail the build: %v", err)
	}
	if len(idx.Timeline) != 1 {
		t.Fatalf("expected 1 interaction, got %d", len(idx.Timeline))
	}
	if idx.Timeline[0].Interaction.Prompt != "the real prompt" {
		t.Errorf("unexpected prompt: %q", idx.Timeline[0].Interaction.Prompt)
	}
}

func TestBuildIndexDropsOutputBeforeFirstPrompt(t *testing.T) {
	dir := t.TempDir()
	sf := writeSession(t, dir, "session-a",
		editLine("2024-01-01T09:59:00Z", "/repo/orphan.go"),
		commitResultLine("2024-01-01T09:59:30Z", "main", "fffffff"),
		promptLine("2024-01-01T10:00:00Z", "hello"),
	)

	idx, err := BuildIndex([]SessionFile{sf})
	if err != nil {
		t.Fatalf("BuildIndex failed: %v", err)
	}
	if _, ok := idx.HashMap["fffffff"]; ok {
		t.Error("hash seen before any prompt must be dropped")
	}
	if len(idx.Timeline[0].Interaction.FilesEdited) != 0 {
		t.Error("edits before any prompt must be dropped")
	}
}

func TestBuildIndexAllPromptsNonEmpty(t *testing.T) {
	dir := t.TempDir()
	sf := writeSession(t, dir, "session-a",
		promptLine("2024-01-01T10:00:00Z", "   "),
		promptLine("2024-01-01T10:01:00Z", "real"),
		`{"type":"user","userType":"external","timestamp":"2024-01-01T10:02:00Z","message":{"content":""}}`,
	)

	idx, err := BuildIndex([]SessionFile{sf})
	if err != nil {
		t.Fatalf("BuildIndex failed: %v", err)
	}
	for _, entry := range idx.Timeline {
		if strings.TrimSpace(entry.Interaction.Prompt) == "" {
			t.Error("empty prompts must not produce interactions")
		}
	}
	if len(idx.Timeline) != 1 {
		t.Errorf("expected only the real prompt, got %d entries", len(idx.Timeline))
	}
}

func TestBuildIndexCurrentInteractionCarriesAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeSession(t, dir, "session-a",
		promptLine("2024-01-01T10:00:00Z", "make a commit"),
	)
	b := writeSession(t, dir, "session-b",
		commitResultLine("2024-01-01T10:00:30Z", "main", "abc1234"),
	)

	idx, err := BuildIndex([]SessionFile{a, b})
	if err != nil {
		t.Fatalf("BuildIndex failed: %v", err)
	}
	owner, ok := idx.HashMap["abc1234"]
	if !ok || owner.Prompt != "make a commit" {
		t.Errorf("hash at a file boundary should attach to the open interaction, got %v", owner)
	}
}
