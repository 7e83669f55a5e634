package commands

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aiblame/aiblame/internal/sessions"
)

// NewSessionInfoCommand creates the session-info command
func NewSessionInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "session-info",
		Short: "Output current session ID and agent version for commit trailers",
		Long: `Prints the most recent session for the current project in a form suitable
for embedding in a commit message, so later blame runs can match by trailer.`,
		RunE: runSessionInfo,
	}
}

func runSessionInfo(cmd *cobra.Command, args []string) error {
	backend, err := newBackend(projectDir)
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}

	model := "unknown"
	session, found := sessions.LatestSession(backend.projectDir)
	if found {
		model = sessions.FetchSessionModel(backend.projectDir, session.SessionID)
		fmt.Printf("AI-Session-ID: %s\n", session.SessionID)
	}

	fmt.Printf("AI Agent: Claude Code %s <noreply@anthropic.com>\n", claudeVersion())
	fmt.Printf("Model: %s\n", model)
	return nil
}

// claudeVersion shells out to the claude binary; "unknown" when missing.
func claudeVersion() string {
	out, err := exec.Command("claude", "--version").Output()
	if err != nil {
		return "unknown"
	}
	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return "unknown"
	}
	return fields[0]
}
