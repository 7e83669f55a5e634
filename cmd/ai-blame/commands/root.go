package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aiblame/aiblame/internal/logger"
	"github.com/aiblame/aiblame/internal/tui"
)

var (
	verboseMode bool
	debugMode   bool
	projectDir  string
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ai-blame",
		Short: "Show AI conversation context for git commits",
		Long: `ai-blame correlates git commits with Claude Code session logs to answer
"what prompt led to this commit". The root command opens a TUI browser over
recent commits; use the blame subcommand for a one-shot report.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetVerbose(verboseMode)
		},
		RunE: runBrowser,
	}

	rootCmd.PersistentFlags().BoolVarP(&verboseMode, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project", "p", "", "Override project directory (path or encoded name)")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "List commits with their resolution without the TUI")

	rootCmd.AddCommand(NewBlameCommand())
	rootCmd.AddCommand(NewSessionsCommand())
	rootCmd.AddCommand(NewSessionInfoCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runBrowser(cmd *cobra.Command, args []string) error {
	backend, err := newBackend(projectDir)
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}

	if debugMode {
		return runDebugMode(backend)
	}

	selected, err := tui.ShowTUI(backend)
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	if selected == nil {
		return nil
	}

	// Full report for the commit picked in the browser.
	return printBlame(backend, selected.Hash, false, false)
}

func runDebugMode(backend *blameBackend) error {
	commits, err := backend.repo.RecentCommits(20)
	if err != nil {
		return fmt.Errorf("failed to list commits: %w", err)
	}

	fmt.Println("=== Debug Mode: Commits and Resolution ===")
	for i, commit := range commits {
		fmt.Printf("\n%d. %s %s\n", i+1, commit.ShortHash(), commit.Subject)
		fmt.Printf("   Author: %s (%s)\n", commit.Author, commit.When.Format("2006-01-02 15:04"))

		blameCtx, err := backend.ResolveBlame(context.Background(), commit)
		if err != nil {
			fmt.Printf("   Resolution error: %v\n", err)
			continue
		}
		if blameCtx.Interaction == nil {
			fmt.Printf("   No AI context (strategy: %s)\n", blameCtx.Strategy)
			continue
		}
		fmt.Printf("   Session: %s (matched by %s)\n", blameCtx.Interaction.SessionID, blameCtx.Strategy)
	}
	return nil
}
