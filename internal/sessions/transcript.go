package sessions

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TranscriptMessage is one conversation turn extracted from a session log.
type TranscriptMessage struct {
	Role         string // "prompt" or "response"
	Content      string
	Timestamp    time.Time
	FilesChanged []string // paths edited while this prompt was current
}

type transcriptLine struct {
	Type      string `json:"type"`
	UserType  string `json:"userType"`
	IsMeta    bool   `json:"isMeta"`
	Timestamp string `json:"timestamp"`
	Message   struct {
		Content json.RawMessage `json:"content"`
	} `json:"message"`
}

type transcriptBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// ParseTranscript reads a session log into an ordered conversation: user
// prompts, the files the assistant edited under each one, and optionally the
// assistant's text responses. Malformed lines are skipped.
func ParseTranscript(path string, includeResponses bool) ([]TranscriptMessage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 256*1024), 10*1024*1024)

	var messages []TranscriptMessage
	for scanner.Scan() {
		var line transcriptLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			continue
		}

		ts, _ := time.Parse(time.RFC3339Nano, line.Timestamp)

		switch {
		case line.Type == "user" && line.UserType == "external" && !line.IsMeta:
			content := userText(line.Message.Content)
			if content == "" {
				continue
			}
			messages = append(messages, TranscriptMessage{
				Role:      "prompt",
				Content:   content,
				Timestamp: ts,
			})

		case line.Type == "assistant":
			var blocks []transcriptBlock
			if err := json.Unmarshal(line.Message.Content, &blocks); err != nil {
				continue
			}

			var texts []string
			for _, block := range blocks {
				switch block.Type {
				case "text":
					if strings.TrimSpace(block.Text) != "" {
						texts = append(texts, block.Text)
					}
				case "tool_use":
					if block.Name != "Edit" && block.Name != "Write" {
						continue
					}
					var input struct {
						FilePath string `json:"file_path"`
					}
					if err := json.Unmarshal(block.Input, &input); err != nil || input.FilePath == "" {
						continue
					}
					attachEditedFile(messages, relPath(input.FilePath))
				}
			}

			if includeResponses && len(texts) > 0 {
				messages = append(messages, TranscriptMessage{
					Role:      "response",
					Content:   strings.Join(texts, "\n"),
					Timestamp: ts,
				})
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return messages, err
	}
	return messages, nil
}

// userText mirrors the prompt filtering used for the blame index: command
// metadata and system markers are not user input.
func userText(content json.RawMessage) string {
	var asString string
	if err := json.Unmarshal(content, &asString); err == nil {
		if strings.HasPrefix(asString, "<command-message>") {
			return ""
		}
		return strings.TrimSpace(asString)
	}

	var blocks []transcriptBlock
	if err := json.Unmarshal(content, &blocks); err != nil {
		return ""
	}

	var texts []string
	for _, block := range blocks {
		if block.Type != "text" || strings.HasPrefix(block.Text, "#") {
			continue
		}
		texts = append(texts, block.Text)
	}
	return strings.TrimSpace(strings.Join(texts, "\n"))
}

// attachEditedFile records a file edit against the most recent prompt.
// Edits that arrive before any prompt have no owner and are dropped.
func attachEditedFile(messages []TranscriptMessage, path string) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != "prompt" {
			continue
		}
		for _, existing := range messages[i].FilesChanged {
			if existing == path {
				return
			}
		}
		messages[i].FilesChanged = append(messages[i].FilesChanged, path)
		return
	}
}

func relPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
