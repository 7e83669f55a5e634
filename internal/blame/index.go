package blame

import (
	"bufio"
	"errors"
	"os"
	"sort"

	"github.com/aiblame/aiblame/internal/logger"
	"github.com/aiblame/aiblame/pkg/models"
)

// ErrNoSessions reports that no session log could be read at all. Callers
// must distinguish this from an index that was built but produced no match.
var ErrNoSessions = errors.New("no session logs available")

// SessionFile names one session log on disk. Files are expected in
// modification-time order; entries within a file are in appearance order.
type SessionFile struct {
	Path      string
	SessionID string
}

// TimelineEntry pairs an interaction with its prompt timestamp.
type TimelineEntry struct {
	Timestamp   float64
	Interaction *models.Interaction
}

// Index holds the lookup structures for one blame request. It is built
// fresh per request and never mutated afterwards.
type Index struct {
	HashMap  map[string]*models.Interaction
	Timeline []TimelineEntry
	Keys     []float64 // Timeline timestamps, for binary search
}

// BuildIndex folds all session files into an Index. Unreadable files,
// malformed lines and unparsable timestamps are skipped silently; only a
// total absence of session files surfaces as ErrNoSessions.
func BuildIndex(files []SessionFile) (*Index, error) {
	if len(files) == 0 {
		return nil, ErrNoSessions
	}

	idx := &Index{HashMap: make(map[string]*models.Interaction)}

	var current *models.Interaction
	for _, sf := range files {
		current = idx.foldFile(sf, current)
	}

	sort.SliceStable(idx.Timeline, func(i, j int) bool {
		return idx.Timeline[i].Timestamp < idx.Timeline[j].Timestamp
	})

	idx.Keys = make([]float64, len(idx.Timeline))
	for i, entry := range idx.Timeline {
		idx.Keys[i] = entry.Timestamp
	}

	return idx, nil
}

// foldFile feeds one session file through the builder. The current
// interaction carries across files so tool output that lands at a file
// boundary is still attributed.
func (idx *Index) foldFile(sf SessionFile, current *models.Interaction) *models.Interaction {
	file, err := os.Open(sf.Path)
	if err != nil {
		logger.Debugf("skipping unreadable session file %s: %v", sf.Path, err)
		return current
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	// Tool results can be large; a single line may hold a whole diff.
	scanner.Buffer(make([]byte, 0, 256*1024), 10*1024*1024)

	for scanner.Scan() {
		entry, ok := ParseEntry(scanner.Bytes())
		if !ok {
			continue
		}

		switch entry.Kind {
		case KindUserPrompt:
			current = &models.Interaction{
				Timestamp:   entry.Timestamp,
				SessionID:   sf.SessionID,
				Prompt:      entry.Prompt,
				FilesEdited: make(map[string]struct{}),
			}
			idx.Timeline = append(idx.Timeline, TimelineEntry{
				Timestamp:   entry.Timestamp,
				Interaction: current,
			})
		case KindAssistant:
			if current != nil {
				for _, path := range entry.FilesEdited {
					current.FilesEdited[path] = struct{}{}
				}
			}
		}

		// Hash attribution runs for every entry kind. Output seen before
		// the first prompt has no owner and is dropped.
		if current != nil {
			for _, h := range entry.Hashes {
				current.ExplicitHashes = append(current.ExplicitHashes, h)
				idx.HashMap[h] = current
			}
		}
	}

	if err := scanner.Err(); err != nil {
		logger.Debugf("scan aborted for session file %s: %v", sf.Path, err)
	}

	return current
}
