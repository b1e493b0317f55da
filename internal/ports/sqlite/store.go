// Package sqlite persists match snapshots in a SQLite database for hosts
// running outside Nakama.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"cardduel/internal/domain"
	"cardduel/internal/ports"
)

const schema = `
	CREATE TABLE IF NOT EXISTS match_snapshots (
		owner TEXT PRIMARY KEY,
		match_id TEXT NOT NULL,
		turn INTEGER NOT NULL,
		payload TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_match_snapshots_match_id ON match_snapshots(match_id);
`

// Summary describes a stored match without decoding its payload.
type Summary struct {
	Owner     string    `json:"owner"`
	MatchID   string    `json:"match_id"`
	Turn      int       `json:"turn"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SnapshotStore implements ports.SnapshotStore on a match_snapshots table.
type SnapshotStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the database at dsn and creates the schema. ":memory:"
// gives a private in-process database.
func Open(dsn string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serializes writers; a single connection also keeps an
	// in-memory database alive across calls.
	db.SetMaxOpenConns(1)
	store, err := New(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an open database and creates the schema.
func New(db *sql.DB) (*SnapshotStore, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SnapshotStore{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

func (s *SnapshotStore) Save(ctx context.Context, owner string, snap domain.Snapshot) error {
	payload, err := domain.MarshalSnapshot(snap)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO match_snapshots (owner, match_id, turn, payload, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(owner) DO UPDATE SET
			match_id = excluded.match_id,
			turn = excluded.turn,
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, owner, snap.Match.ID, snap.Match.Turn, string(payload), s.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save snapshot for %s: %w", owner, err)
	}
	return nil
}

func (s *SnapshotStore) Load(ctx context.Context, owner string) (domain.Snapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM match_snapshots WHERE owner = ?`, owner).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Snapshot{}, ports.ErrNotFound
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to load snapshot for %s: %w", owner, err)
	}
	return domain.UnmarshalSnapshot([]byte(payload))
}

func (s *SnapshotStore) Delete(ctx context.Context, owner string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM match_snapshots WHERE owner = ?`, owner); err != nil {
		return fmt.Errorf("failed to delete snapshot for %s: %w", owner, err)
	}
	return nil
}

// List returns every stored match, most recently updated first.
func (s *SnapshotStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT owner, match_id, turn, updated_at
		FROM match_snapshots
		ORDER BY updated_at DESC, owner
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.Owner, &sum.MatchID, &sum.Turn, &sum.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

var _ ports.SnapshotStore = (*SnapshotStore)(nil)
