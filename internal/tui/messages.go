package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/aiblame/aiblame/pkg/models"
)

// BlameContext is the resolved context for one commit, ready to display.
type BlameContext struct {
	Interaction *models.Interaction
	Strategy    string
	Stats       map[string]models.FileChange
}

// Backend supplies the data the TUI browses. Implementations compose the
// git repository and the blame index.
type Backend interface {
	RecentCommits(ctx context.Context, limit int) ([]models.Commit, error)
	ResolveBlame(ctx context.Context, commit models.Commit) (BlameContext, error)
}

// Message types for async operations
type (
	// CommitsLoadedMsg carries the commit list for the left pane
	CommitsLoadedMsg struct {
		Commits []models.Commit
		Error   error
	}

	// BlameResolvedMsg carries one commit's resolved context
	BlameResolvedMsg struct {
		RequestID  string
		CommitHash string
		Context    BlameContext
		Error      error
	}

	// TickMsg drives the spinner animation
	TickMsg time.Time
)

// loadCommitsCmd loads the commit list asynchronously
func loadCommitsCmd(ctx context.Context, backend Backend, limit int) tea.Cmd {
	return func() tea.Msg {
		commits, err := backend.RecentCommits(ctx, limit)
		return CommitsLoadedMsg{Commits: commits, Error: err}
	}
}

// resolveBlameCmd resolves one commit asynchronously. The request id lets
// the model drop results that arrive after cancellation.
func resolveBlameCmd(ctx context.Context, backend Backend, commit models.Commit) (tea.Cmd, string) {
	requestID := uuid.New().String()
	cmd := func() tea.Msg {
		blameCtx, err := backend.ResolveBlame(ctx, commit)
		return BlameResolvedMsg{
			RequestID:  requestID,
			CommitHash: commit.Hash,
			Context:    blameCtx,
			Error:      err,
		}
	}
	return cmd, requestID
}

// tickCmd creates a ticker for spinner animation
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
