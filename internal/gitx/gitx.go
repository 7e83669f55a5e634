// Package gitx answers the version-control questions ai-blame asks: commit
// metadata, diff stats and the session trailer, all via go-git.
package gitx

import (
	"fmt"
	"regexp"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/aiblame/aiblame/pkg/models"
)

// sessionTrailerPattern matches the AI-Session-ID trailer some workflows
// embed in commit messages.
var sessionTrailerPattern = regexp.MustCompile(`AI-Session-ID:\s*([a-f0-9-]+)`)

// Repo wraps an opened git repository.
type Repo struct {
	repo *git.Repository
}

// Open finds the repository containing path, walking up to the .git dir the
// same way the git CLI does.
func Open(path string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", path, err)
	}
	return &Repo{repo: repo}, nil
}

// TopLevel returns the root of the working tree.
func (r *Repo) TopLevel() (string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}
	return wt.Filesystem.Root(), nil
}

// ResolveCommit resolves a revision ("HEAD", a ref name, or a hash prefix)
// to commit metadata.
func (r *Repo) ResolveCommit(rev string) (models.Commit, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return models.Commit{}, fmt.Errorf("commit not found: %s: %w", rev, err)
	}
	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return models.Commit{}, fmt.Errorf("failed to read commit %s: %w", hash, err)
	}
	return toModel(commit), nil
}

// PreviousCommit returns the first parent, or false for a root commit.
func (r *Repo) PreviousCommit(hash string) (models.Commit, bool) {
	commit, err := r.repo.CommitObject(plumbing.NewHash(hash))
	if err != nil || commit.NumParents() == 0 {
		return models.Commit{}, false
	}
	parent, err := commit.Parent(0)
	if err != nil {
		return models.Commit{}, false
	}
	return toModel(parent), true
}

// CommitStats returns per-file added/deleted line counts for a commit,
// diffed against its first parent (or the empty tree for a root commit).
func (r *Repo) CommitStats(hash string) (map[string]models.FileChange, error) {
	commit, err := r.repo.CommitObject(plumbing.NewHash(hash))
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s: %w", hash, err)
	}
	fileStats, err := commit.Stats()
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats for %s: %w", hash, err)
	}

	stats := make(map[string]models.FileChange, len(fileStats))
	for _, fs := range fileStats {
		stats[fs.Name] = models.FileChange{Added: fs.Addition, Deleted: fs.Deletion}
	}
	return stats, nil
}

// RecentCommits lists up to limit commits reachable from HEAD, newest first.
func (r *Repo) RecentCommits(limit int) ([]models.Commit, error) {
	iter, err := r.repo.Log(&git.LogOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	defer iter.Close()

	var commits []models.Commit
	err = iter.ForEach(func(commit *object.Commit) error {
		commits = append(commits, toModel(commit))
		if len(commits) >= limit {
			return storerStop
		}
		return nil
	})
	if err != nil && err != storerStop {
		return nil, fmt.Errorf("failed to walk log: %w", err)
	}
	return commits, nil
}

// SessionID extracts the AI-Session-ID trailer from a commit message.
func (r *Repo) SessionID(hash string) (string, bool) {
	commit, err := r.repo.CommitObject(plumbing.NewHash(hash))
	if err != nil {
		return "", false
	}
	return SessionIDFromMessage(commit.Message)
}

// SessionIDFromMessage extracts the AI-Session-ID trailer from message text.
func SessionIDFromMessage(message string) (string, bool) {
	match := sessionTrailerPattern.FindStringSubmatch(message)
	if match == nil {
		return "", false
	}
	return match[1], true
}

var storerStop = fmt.Errorf("stop iteration")

func toModel(commit *object.Commit) models.Commit {
	subject := commit.Message
	if idx := strings.IndexByte(subject, '\n'); idx >= 0 {
		subject = subject[:idx]
	}
	return models.Commit{
		Hash:    commit.Hash.String(),
		Subject: strings.TrimSpace(subject),
		Author:  commit.Author.Name,
		When:    commit.Author.When,
	}
}
