package models

import "time"

// Interaction is one user prompt together with everything the assistant did
// for it before the next prompt arrived.
type Interaction struct {
	Timestamp      float64 // Unix epoch, fractional seconds
	SessionID      string
	Prompt         string              // trimmed, never empty
	ExplicitHashes []string            // commit hashes seen in tool output
	FilesEdited    map[string]struct{} // paths touched by Edit/Write calls
}

// Session represents a Claude Code session log file
type Session struct {
	SessionID    string
	ProjectPath  string
	FilePath     string
	LastActivity time.Time
	SizeBytes    int64
	MessageCount int
}

// Commit holds the metadata ai-blame needs about a git commit
type Commit struct {
	Hash    string
	Subject string
	Author  string
	When    time.Time
}

// ShortHash returns the abbreviated commit hash
func (c Commit) ShortHash() string {
	if len(c.Hash) > 8 {
		return c.Hash[:8]
	}
	return c.Hash
}

// FileChange is the diff stat for one file in a commit
type FileChange struct {
	Added   int
	Deleted int
}
