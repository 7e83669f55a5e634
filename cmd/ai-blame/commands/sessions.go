package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aiblame/aiblame/internal/render"
	"github.com/aiblame/aiblame/internal/sessions"
	"github.com/aiblame/aiblame/pkg/models"
)

var sessionLimit int

// NewSessionsCommand creates the sessions command
func NewSessionsCommand() *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recent AI sessions for the current project",
		RunE:  runSessions,
	}

	sessionsCmd.Flags().IntVarP(&sessionLimit, "limit", "n", 10, "Max sessions to show")

	return sessionsCmd
}

func runSessions(cmd *cobra.Command, args []string) error {
	backend, err := newBackend(projectDir)
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}

	list := sessions.ListSessionFiles(backend.projectDir)
	if len(list) == 0 {
		fmt.Println(render.SessionsTable(nil))
		return nil
	}

	// Enrich with DuckDB aggregates where the logs are well-formed enough.
	stats := sessions.FetchSessionStats(backend.projectDir)
	for i := range list {
		if s, ok := stats[list[i].SessionID]; ok {
			list[i].MessageCount = s.MessageCount
			if !s.LastActivity.IsZero() {
				list[i].LastActivity = s.LastActivity
			}
		}
	}

	// Newest first, capped at the limit.
	newest := make([]models.Session, 0, sessionLimit)
	for i := len(list) - 1; i >= 0 && len(newest) < sessionLimit; i-- {
		newest = append(newest, list[i])
	}

	fmt.Println(render.SessionsTable(newest))
	return nil
}
