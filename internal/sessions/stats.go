package sessions

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aiblame/aiblame/internal/db"
	"github.com/aiblame/aiblame/internal/logger"
)

// SessionStats carries the aggregate numbers DuckDB can pull out of a
// session log faster than a line-by-line scan.
type SessionStats struct {
	MessageCount int
	LastActivity time.Time
}

// FetchSessionStats aggregates message counts and last activity per session
// across all logs in projectDir. Failures are non-fatal; the sessions
// listing falls back to file metadata alone.
func FetchSessionStats(projectDir string) map[string]SessionStats {
	stats := make(map[string]SessionStats)

	database, err := db.GetDB()
	if err != nil {
		logger.Debugf("duckdb unavailable: %v", err)
		return stats
	}

	globPattern := filepath.Join(projectDir, "*.jsonl")
	query := fmt.Sprintf(`
		SELECT
			CAST(sessionId AS VARCHAR) as session_id,
			COUNT(*) as message_count,
			MAX(timestamp) as last_activity
		FROM read_json('%s',
			format = 'newline_delimited',
			union_by_name = true,
			filename = true
		)
		WHERE sessionId IS NOT NULL
		GROUP BY sessionId
	`, globPattern)

	rows, err := database.Query(query)
	if err != nil {
		logger.Debugf("session stats query failed: %v", err)
		return stats
	}
	defer rows.Close()

	for rows.Next() {
		var sessionID string
		var count int
		var lastActivity sql.NullString

		if err := rows.Scan(&sessionID, &count, &lastActivity); err != nil {
			continue
		}

		s := SessionStats{MessageCount: count}
		if lastActivity.Valid {
			if t, err := time.Parse(time.RFC3339, lastActivity.String); err == nil {
				s.LastActivity = t.Local()
			}
		}
		stats[sessionID] = s
	}

	return stats
}

// FetchSessionModel returns the model recorded in a session log, or "unknown".
func FetchSessionModel(projectDir, sessionID string) string {
	database, err := db.GetDB()
	if err != nil {
		logger.Debugf("duckdb unavailable: %v", err)
		return "unknown"
	}

	globPattern := filepath.Join(projectDir, "*.jsonl")
	query := fmt.Sprintf(`
		SELECT CAST(message.model AS VARCHAR) as model
		FROM read_json('%s',
			format = 'newline_delimited',
			union_by_name = true,
			filename = true
		)
		WHERE CAST(sessionId AS VARCHAR) = ?
		AND message.model IS NOT NULL
		ORDER BY timestamp DESC
		LIMIT 1
	`, globPattern)

	var model sql.NullString
	if err := database.QueryRow(query, sessionID).Scan(&model); err != nil || !model.Valid {
		return "unknown"
	}
	return model.String
}
