package blame

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"
)

// commitHashPattern matches the "[branch hash]" line git prints after a
// commit, e.g. "[main abc1234] fix bug". The hash is 7+ lowercase hex chars.
var commitHashPattern = regexp.MustCompile(`\[[\w\-/]+ ([0-9a-f]{7,})\]`)

// EntryKind classifies a session log line
type EntryKind int

const (
	KindOther EntryKind = iota
	KindUserPrompt
	KindAssistant
)

// LogEntry is the normalized form of one session log line. It lives only
// long enough to be folded into the index.
type LogEntry struct {
	Kind        EntryKind
	Timestamp   float64 // Unix epoch, fractional seconds
	Prompt      string  // empty unless Kind == KindUserPrompt
	FilesEdited []string
	Hashes      []string // commit hashes found in embedded tool output
}

type contentBlock struct {
	Type    string          `json:"type"`
	Text    string          `json:"text"`
	Name    string          `json:"name"`
	Input   json.RawMessage `json:"input"`
	Content json.RawMessage `json:"content"`
}

type rawEntry struct {
	Type          string          `json:"type"`
	UserType      string          `json:"userType"`
	Timestamp     string          `json:"timestamp"`
	ToolUseResult json.RawMessage `json:"toolUseResult"`
	Message       struct {
		Content json.RawMessage `json:"content"`
	} `json:"message"`
}

type toolInput struct {
	FilePath string `json:"file_path"`
}

// ParseEntry decodes one session log line. The second return value is false
// when the line contributes nothing to the index: malformed JSON, or a
// timestamp that cannot be parsed. A skipped line never aborts the build.
func ParseEntry(line []byte) (LogEntry, bool) {
	var raw rawEntry
	if err := json.Unmarshal(line, &raw); err != nil {
		return LogEntry{}, false
	}

	ts, err := parseTimestamp(raw.Timestamp)
	if err != nil {
		return LogEntry{}, false
	}

	entry := LogEntry{Kind: KindOther, Timestamp: ts}

	switch {
	case raw.Type == "user" && raw.UserType == "external":
		if prompt := extractPromptText(raw.Message.Content); prompt != "" {
			entry.Kind = KindUserPrompt
			entry.Prompt = prompt
		}
	case raw.Type == "assistant":
		entry.Kind = KindAssistant
		entry.FilesEdited = extractEditedFiles(raw.Message.Content)
	}

	// Commit hashes can ride along on any entry kind, not just assistant
	// turns: tool results are attached wherever the harness put them.
	entry.Hashes = extractHashes(raw)

	return entry, true
}

// parseTimestamp accepts ISO-8601 with an optional trailing "Z" (UTC).
// Anything else is an error and the entry is skipped, never defaulted.
func parseTimestamp(value string) (float64, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		t, err = time.Parse(time.RFC3339, value)
		if err != nil {
			return 0, err
		}
	}
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9, nil
}

// extractPromptText pulls genuine user input out of a message content field,
// which is either a plain string or a list of typed blocks. System-injected
// markers (command metadata, "#"/"<" prefixed blocks) yield nothing.
func extractPromptText(content json.RawMessage) string {
	if len(content) == 0 {
		return ""
	}

	var asString string
	if err := json.Unmarshal(content, &asString); err == nil {
		if strings.HasPrefix(asString, "<command-message>") {
			return ""
		}
		return strings.TrimSpace(asString)
	}

	var blocks []contentBlock
	if err := json.Unmarshal(content, &blocks); err != nil {
		return ""
	}

	var texts []string
	for _, block := range blocks {
		if block.Type != "text" {
			continue
		}
		if strings.HasPrefix(block.Text, "#") || strings.HasPrefix(block.Text, "<") {
			continue
		}
		texts = append(texts, block.Text)
	}
	return strings.TrimSpace(strings.Join(texts, "\n"))
}

// extractEditedFiles returns the file_path arguments of Edit/Write tool calls.
func extractEditedFiles(content json.RawMessage) []string {
	var blocks []contentBlock
	if err := json.Unmarshal(content, &blocks); err != nil {
		return nil
	}

	var files []string
	for _, block := range blocks {
		if block.Type != "tool_use" {
			continue
		}
		if block.Name != "Edit" && block.Name != "Write" {
			continue
		}
		var input toolInput
		if err := json.Unmarshal(block.Input, &input); err != nil {
			continue
		}
		if input.FilePath != "" {
			files = append(files, input.FilePath)
		}
	}
	return files
}

// extractHashes scans the two places commit output can appear: the
// toolUseResult field (plain string or an object with stdout) and any
// tool_result blocks in the message content. Hashes keep encounter order and
// are not deduplicated here; map insertion downstream absorbs duplicates.
func extractHashes(raw rawEntry) []string {
	var hashes []string

	if len(raw.ToolUseResult) > 0 {
		var asString string
		if err := json.Unmarshal(raw.ToolUseResult, &asString); err == nil {
			hashes = appendHashes(hashes, asString)
		} else {
			var result struct {
				Stdout string `json:"stdout"`
			}
			if err := json.Unmarshal(raw.ToolUseResult, &result); err == nil {
				hashes = appendHashes(hashes, result.Stdout)
			}
		}
	}

	var blocks []contentBlock
	if err := json.Unmarshal(raw.Message.Content, &blocks); err == nil {
		for _, block := range blocks {
			if block.Type != "tool_result" {
				continue
			}
			var text string
			if err := json.Unmarshal(block.Content, &text); err == nil {
				hashes = appendHashes(hashes, text)
			}
		}
	}

	return hashes
}

func appendHashes(hashes []string, text string) []string {
	if text == "" {
		return hashes
	}
	for _, match := range commitHashPattern.FindAllStringSubmatch(text, -1) {
		hashes = append(hashes, match[1])
	}
	return hashes
}
