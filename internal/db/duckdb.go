package db

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
)

var (
	dbInstance *sql.DB
	dbOnce     sync.Once
	dbErr      error
)

// GetDB returns the shared in-memory DuckDB connection used for aggregate
// queries over session logs. The connection lives for the whole process.
func GetDB() (*sql.DB, error) {
	dbOnce.Do(func() {
		dbInstance, dbErr = open()
	})
	return dbInstance, dbErr
}

func open() (*sql.DB, error) {
	database, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB: %w", err)
	}

	// DuckDB works best with a single connection
	database.SetMaxOpenConns(1)
	database.SetMaxIdleConns(1)

	// The JSON extension backs every read_json query we run
	for _, stmt := range []string{"INSTALL json", "LOAD json"} {
		if _, err := database.Exec(stmt); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to run %q: %w", stmt, err)
		}
	}

	return database, nil
}
