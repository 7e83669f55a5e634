package commands

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aiblame/aiblame/internal/blame"
	"github.com/aiblame/aiblame/internal/render"
	"github.com/aiblame/aiblame/internal/sessions"
	"github.com/aiblame/aiblame/pkg/models"
)

var (
	includeResponses bool
	allPrompts       bool
)

// NewBlameCommand creates the blame command
func NewBlameCommand() *cobra.Command {
	blameCmd := &cobra.Command{
		Use:   "blame [commit]",
		Short: "Show AI conversation context for a git commit",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBlame,
	}

	blameCmd.Flags().BoolVarP(&includeResponses, "responses", "r", false, "Include AI responses")
	blameCmd.Flags().BoolVarP(&allPrompts, "all", "a", false, "Show all prompts from the session, not just time-windowed")

	return blameCmd
}

func runBlame(cmd *cobra.Command, args []string) error {
	rev := "HEAD"
	if len(args) == 1 {
		rev = args[0]
	}

	backend, err := newBackend(projectDir)
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}

	return printBlame(backend, rev, includeResponses, allPrompts)
}

// printBlame renders the full report for one commit: header, diff stats and
// the prompts attributed to it. Strategy resolution runs first; the
// AI-Session-ID commit trailer is the fallback when it finds nothing.
func printBlame(backend *blameBackend, rev string, responses, all bool) error {
	commit, err := backend.repo.ResolveCommit(rev)
	if err != nil {
		return err
	}

	stats, err := backend.repo.CommitStats(commit.Hash)
	if err != nil {
		stats = nil
	}

	var interaction *models.Interaction
	strategy := blame.StrategyNone
	if index, err := backend.buildIndex(); err == nil {
		resolver := blame.NewResolver(index)
		ts := float64(commit.When.UnixNano()) / 1e9
		interaction, strategy = resolver.Resolve(commit.Hash, ts)
	}

	// Fallback: explicit session trailer in the commit message.
	var sessionID, sessionFile string
	var transcript []sessions.TranscriptMessage
	if id, ok := backend.repo.SessionID(commit.Hash); ok {
		sessionID = id
		if path, found := sessions.FindSessionFile(backend.projectDir, id); found {
			sessionFile = path
			transcript, _ = sessions.ParseTranscript(path, responses)
		}
	}

	if interaction == nil && sessionFile == "" {
		fmt.Println(render.NoContext(commit))
		return nil
	}

	fmt.Println(render.Header(commit))
	if interaction != nil {
		fmt.Println(render.MatchInfo(interaction.SessionID, strategy))
	} else {
		fmt.Println(render.MatchInfo(sessionID, "trailer"))
	}
	fmt.Println()

	if len(stats) > 0 {
		fmt.Println(render.StatsTable(stats))
	}

	fmt.Println(render.PromptsTitle())
	fmt.Println()

	switch {
	case interaction != nil:
		printInteraction(backend, interaction, stats)
		fmt.Println(render.Footnote(fmt.Sprintf("1 prompt • %s", interaction.SessionID)))
	case len(transcript) > 0:
		count := printTranscript(backend, commit, transcript, stats, responses, all)
		fmt.Println(render.Footnote(fmt.Sprintf("%d prompts • %s", count, sessionFile)))
	default:
		fmt.Println(render.Footnote("No prompts found"))
	}

	return nil
}

func printInteraction(backend *blameBackend, interaction *models.Interaction, stats map[string]models.FileChange) {
	when := epochToTime(interaction.Timestamp)

	files := make([]string, 0, len(interaction.FilesEdited))
	topLevel, _ := backend.repo.TopLevel()
	for path := range interaction.FilesEdited {
		files = append(files, relativeTo(topLevel, path))
	}
	sort.Strings(files)

	fmt.Println(render.Prompt(1, when, interaction.Prompt, files, stats))
}

func epochToTime(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

func relativeTo(root, path string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// printTranscript shows the session's prompts, time-windowed between the
// previous commit and this one unless --all was given.
func printTranscript(backend *blameBackend, commit models.Commit, transcript []sessions.TranscriptMessage, stats map[string]models.FileChange, responses, all bool) int {
	var prevWhen *models.Commit
	if prev, ok := backend.repo.PreviousCommit(commit.Hash); ok {
		prevWhen = &prev
	}

	count := 0
	for _, msg := range transcript {
		switch msg.Role {
		case "prompt":
			if !all && !msg.Timestamp.IsZero() {
				if msg.Timestamp.After(commit.When) {
					continue
				}
				if prevWhen != nil && !msg.Timestamp.After(prevWhen.When) {
					continue
				}
			}
			count++
			fmt.Println(render.Prompt(count, msg.Timestamp, msg.Content, msg.FilesChanged, stats))

		case "response":
			if responses {
				fmt.Println(render.Response(msg.Timestamp, msg.Content))
			}
		}
	}
	return count
}
