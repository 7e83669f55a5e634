package commands

import (
	"context"

	"github.com/aiblame/aiblame/internal/blame"
	"github.com/aiblame/aiblame/internal/gitx"
	"github.com/aiblame/aiblame/internal/sessions"
	"github.com/aiblame/aiblame/internal/tui"
	"github.com/aiblame/aiblame/pkg/models"
)

// blameBackend wires the repository and the session logs together for both
// the TUI and the non-interactive commands.
type blameBackend struct {
	repo       *gitx.Repo
	projectDir string
}

func newBackend(projectOverride string) (*blameBackend, error) {
	repo, err := gitx.Open(".")
	if err != nil {
		return nil, err
	}

	projectDir, err := resolveProjectDir(repo, projectOverride)
	if err != nil {
		return nil, err
	}

	return &blameBackend{repo: repo, projectDir: projectDir}, nil
}

// resolveProjectDir maps the repository (or an explicit override) to its
// session log directory under ~/.claude/projects.
func resolveProjectDir(repo *gitx.Repo, override string) (string, error) {
	if override != "" {
		return sessions.ProjectDir(override)
	}
	topLevel, err := repo.TopLevel()
	if err != nil {
		return "", err
	}
	return sessions.ProjectDir(topLevel)
}

// sessionSources converts the discovered session files into index input,
// preserving modification-time order.
func (b *blameBackend) sessionSources() []blame.SessionFile {
	var sources []blame.SessionFile
	for _, s := range sessions.ListSessionFiles(b.projectDir) {
		sources = append(sources, blame.SessionFile{Path: s.FilePath, SessionID: s.SessionID})
	}
	return sources
}

// buildIndex builds a fresh index for one resolution request.
func (b *blameBackend) buildIndex() (*blame.Index, error) {
	return blame.BuildIndex(b.sessionSources())
}

// RecentCommits implements tui.Backend.
func (b *blameBackend) RecentCommits(ctx context.Context, limit int) ([]models.Commit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.repo.RecentCommits(limit)
}

// ResolveBlame implements tui.Backend. The index is rebuilt per request so
// a long-lived TUI always sees the session logs as they are on disk.
func (b *blameBackend) ResolveBlame(ctx context.Context, commit models.Commit) (tui.BlameContext, error) {
	if err := ctx.Err(); err != nil {
		return tui.BlameContext{}, err
	}

	result := tui.BlameContext{Strategy: blame.StrategyNone}

	if stats, err := b.repo.CommitStats(commit.Hash); err == nil {
		result.Stats = stats
	}

	index, err := b.buildIndex()
	if err != nil {
		// No sessions at all still renders as "no context" in the TUI.
		return result, nil
	}

	resolver := blame.NewResolver(index)
	ts := float64(commit.When.UnixNano()) / 1e9
	result.Interaction, result.Strategy = resolver.Resolve(commit.Hash, ts)
	return result, nil
}
