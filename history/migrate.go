package history

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate migrates db in an idempotent manner.
// If an error is returned, it's acceptable to delete the database and start over.
// version records the build of the tool that produced the schema.
func Migrate(ctx context.Context, db *sql.DB, version string) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version(
    id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
    created_at TEXT NOT NULL CHECK (length(created_at) > 0),
    version TEXT NOT NULL CHECK (length(version) > 0),
    UNIQUE(version)
)`)
	if err != nil {
		return fmt.Errorf("create table schema_version: %w", err)
	}

	_, err = db.ExecContext(ctx, `INSERT INTO schema_version(created_at, version) VALUES (?, ?)
ON CONFLICT(version) DO UPDATE SET version=version`, nowRFC3339(), version)
	if err != nil {
		return fmt.Errorf("upsert schema_version with version %s: %w", version, err)
	}

	_, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS tx (
    id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
    created_at TEXT NOT NULL CHECK (length(created_at) > 0),
    network TEXT NOT NULL,
    signer_id TEXT NOT NULL CHECK (length(signer_id) > 0),
    receiver_id TEXT NOT NULL CHECK (length(receiver_id) > 0),
    hash TEXT NOT NULL CHECK (length(hash) > 0),
    mode TEXT NOT NULL CHECK (mode IN ('send', 'display')),
    status TEXT NOT NULL,
    actions TEXT NOT NULL,
    signed_tx TEXT NOT NULL CHECK (length(signed_tx) > 0)
)`)
	if err != nil {
		return fmt.Errorf("create table tx: %w", err)
	}

	_, err = db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS tx_signer_idx ON tx(network, signer_id)`)
	if err != nil {
		return fmt.Errorf("create index tx_signer_idx: %w", err)
	}

	return nil
}
