// Package history records every transaction the tool displays or submits in a local sqlite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ConnectDB connects to the sqlite database at databaseFile and pings it once.
// Creates the parent directory via MkdirAll.
// Pass :memory: as databaseFile for an in-memory database.
func ConnectDB(ctx context.Context, databaseFile string) (*sql.DB, error) {
	if databaseFile != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(databaseFile), 0o700); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", databaseFile)
	if err != nil {
		return nil, fmt.Errorf("open db %s: %w", databaseFile, err)
	}
	// A single writer per invocation; also keeps :memory: databases on one connection.
	db.SetMaxOpenConns(1)
	err = db.PingContext(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db %s: %w", databaseFile, err)
	}
	return db, err
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func timeToLocal(timeStr string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, timeStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("time.Parse RFC3339: %w", err)
	}
	return t.In(time.Local), nil
}
