package sessions

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEncodeProjectPath(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/home/user/my-project", "-home-user-my-project"},
		{"/home/user/my_project", "-home-user-my-project"},
		{"/srv/a_b/c_d", "-srv-a-b-c-d"},
		{"already-encoded-name", "already-encoded-name"},
	}
	for _, tc := range cases {
		if got := EncodeProjectPath(tc.path); got != tc.want {
			t.Errorf("EncodeProjectPath(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func touchSession(t *testing.T, dir, name string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("failed to set mtime on %s: %v", name, err)
	}
	return path
}

func TestListSessionFilesOrderAndFiltering(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	touchSession(t, dir, "newer.jsonl", base.Add(2*time.Hour))
	touchSession(t, dir, "older.jsonl", base)
	touchSession(t, dir, "agent-subtask.jsonl", base.Add(time.Hour))
	touchSession(t, dir, "notes.txt", base)
	if err := os.Mkdir(filepath.Join(dir, "subdir.jsonl"), 0o755); err != nil {
		t.Fatal(err)
	}

	found := ListSessionFiles(dir)
	if len(found) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(found))
	}
	if found[0].SessionID != "older" || found[1].SessionID != "newer" {
		t.Errorf("expected oldest-first order, got %q then %q", found[0].SessionID, found[1].SessionID)
	}
	if found[0].FilePath != filepath.Join(dir, "older.jsonl") {
		t.Errorf("unexpected file path %q", found[0].FilePath)
	}
}

func TestListSessionFilesMissingDir(t *testing.T) {
	found := ListSessionFiles(filepath.Join(t.TempDir(), "does-not-exist"))
	if len(found) != 0 {
		t.Errorf("missing directory should yield no sessions, got %d", len(found))
	}
}

func TestFindSessionFileInProjectDir(t *testing.T) {
	dir := t.TempDir()
	want := touchSession(t, dir, "abc-123.jsonl", time.Now())

	got, ok := FindSessionFile(dir, "abc-123")
	if !ok || got != want {
		t.Errorf("FindSessionFile = %q, %v; want %q, true", got, ok, want)
	}

	if _, ok := FindSessionFile(dir, "no-such-session"); ok {
		t.Error("unknown session id should not be found")
	}
}

func TestLatestSession(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	touchSession(t, dir, "first.jsonl", base)
	touchSession(t, dir, "second.jsonl", base.Add(time.Minute))

	latest, ok := LatestSession(dir)
	if !ok || latest.SessionID != "second" {
		t.Errorf("expected the newest session, got %+v (ok=%v)", latest, ok)
	}

	if _, ok := LatestSession(t.TempDir()); ok {
		t.Error("empty directory should report no session")
	}
}
