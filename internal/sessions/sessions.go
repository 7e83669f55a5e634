// Package sessions locates and reads Claude Code session logs, the
// newline-delimited JSON files under ~/.claude/projects.
package sessions

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aiblame/aiblame/internal/logger"
	"github.com/aiblame/aiblame/pkg/models"
)

// ProjectsRoot returns the directory Claude stores per-project session logs in.
func ProjectsRoot() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".claude", "projects"), nil
}

// EncodeProjectPath converts a filesystem path into the directory name Claude
// uses under the projects root: "/" and "_" both become "-".
func EncodeProjectPath(path string) string {
	encoded := strings.ReplaceAll(path, "/", "-")
	return strings.ReplaceAll(encoded, "_", "-")
}

// ProjectDir resolves the session log directory for a project path. An
// already-encoded name (no separators left to encode) is passed through, so
// the --project override can name a directory directly.
func ProjectDir(projectPath string) (string, error) {
	root, err := ProjectsRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, EncodeProjectPath(projectPath)), nil
}

// ListSessionFiles returns the session logs in projectDir ordered by
// modification time, oldest first. Sub-agent logs ("agent-*.jsonl") are not
// conversations and are skipped. A missing directory yields an empty list.
func ListSessionFiles(projectDir string) []models.Session {
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		logger.Debugf("no session directory at %s: %v", projectDir, err)
		return nil
	}

	var found []models.Session
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		if strings.HasPrefix(name, "agent-") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		found = append(found, models.Session{
			SessionID:    strings.TrimSuffix(name, ".jsonl"),
			FilePath:     filepath.Join(projectDir, name),
			LastActivity: info.ModTime(),
			SizeBytes:    info.Size(),
		})
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].LastActivity.Before(found[j].LastActivity)
	})
	return found
}

// FindSessionFile locates a session log by id. It checks the given project
// directory first, then falls back to scanning every project directory under
// the root, so renamed or moved checkouts still resolve.
func FindSessionFile(projectDir, sessionID string) (string, bool) {
	name := sessionID + ".jsonl"

	candidate := filepath.Join(projectDir, name)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, true
	}

	root, err := ProjectsRoot()
	if err != nil {
		return "", false
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate := filepath.Join(root, entry.Name(), name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}

	return "", false
}

// LatestSession returns the most recently modified session in projectDir.
func LatestSession(projectDir string) (models.Session, bool) {
	found := ListSessionFiles(projectDir)
	if len(found) == 0 {
		return models.Session{}, false
	}
	return found[len(found)-1], true
}
