package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Entry is one displayed or submitted transaction.
type Entry struct {
	ID         int64
	CreatedAt  time.Time // Always set to the user's local time zone when read back.
	Network    string    // Empty for offline transactions.
	SignerID   string
	ReceiverID string
	Hash       string
	Mode       string // "send" or "display"
	Status     string
	Actions    []string
	SignedTx   string // base64
}

// Store writes and reads entries.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record inserts e and returns its id.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	if e.Actions == nil {
		e.Actions = []string{}
	}
	actions, err := json.Marshal(e.Actions)
	if err != nil {
		return 0, fmt.Errorf("encode actions of tx %s: %w", e.Hash, err)
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO tx(created_at, network, signer_id, receiver_id, hash, mode, status, actions, signed_tx)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nowRFC3339(), e.Network, e.SignerID, e.ReceiverID, e.Hash, e.Mode, e.Status, string(actions), e.SignedTx)
	if err != nil {
		return 0, fmt.Errorf("insert tx %s: %w", e.Hash, err)
	}
	return res.LastInsertId()
}

// Filter narrows Recent. Zero values match everything.
type Filter struct {
	Network  string
	SignerID string
	Limit    int
}

// Recent returns entries newest first.
func (s *Store) Recent(ctx context.Context, f Filter) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	if f.Network != "" {
		where = append(where, "network = ?")
		args = append(args, f.Network)
	}
	if f.SignerID != "" {
		where = append(where, "signer_id = ?")
		args = append(args, f.SignerID)
	}
	query := `SELECT id, created_at, network, signer_id, receiver_id, hash, mode, status, actions, signed_tx FROM tx`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                  Entry
			createdAt, actions string
		)
		if err := rows.Scan(&e.ID, &createdAt, &e.Network, &e.SignerID, &e.ReceiverID, &e.Hash, &e.Mode, &e.Status, &actions, &e.SignedTx); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = timeToLocal(createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		if err := json.Unmarshal([]byte(actions), &e.Actions); err != nil {
			return nil, fmt.Errorf("decode actions of tx %s: %w", e.Hash, err)
		}
		if len(e.Actions) == 0 {
			e.Actions = nil
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SchemaVersion returns the newest tool version that migrated the database.
func (s *Store) SchemaVersion(ctx context.Context) (string, time.Time, error) {
	row := s.db.QueryRowContext(ctx, `SELECT version, created_at FROM schema_version ORDER BY id DESC LIMIT 1`)
	var version, createdAt string
	if err := row.Scan(&version, &createdAt); err != nil {
		return "", time.Time{}, err
	}
	t, err := timeToLocal(createdAt)
	return version, t, err
}
