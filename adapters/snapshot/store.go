// Package snapshot persists dataset configuration captures through sqlx.
// SQLite is the embedded default; the same store runs against Postgres for
// shared lab deployments.
package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/tidwall/gjson"

	"phenolab/domain/core"
	"phenolab/ports"
)

// SchemaVersion is written into every payload. Load refuses payloads from
// a newer schema instead of silently misreading them.
const SchemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	dataset_id TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	payload    BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_dataset ON snapshots (dataset_id, created_at);
`

// Store implements ports.SnapshotStore on a relational database
type Store struct {
	db *sqlx.DB
}

// Open connects and ensures the schema exists. driver is "sqlite3" or
// "postgres".
func Open(driver, dsn string) (*Store, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("snapshot store: connect %s: %w", driver, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("snapshot store: ensure schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Save inserts a snapshot. Payloads must carry the current schema_version.
func (s *Store) Save(ctx context.Context, snap ports.Snapshot) error {
	version := gjson.GetBytes(snap.Payload, "schema_version")
	if !version.Exists() || version.Int() != SchemaVersion {
		return fmt.Errorf("snapshot store: payload schema_version %q, want %d",
			version.Raw, SchemaVersion)
	}

	query := s.db.Rebind(`INSERT INTO snapshots (id, dataset_id, created_at, payload) VALUES (?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query,
		string(snap.ID), string(snap.DatasetID), time.Time(snap.CreatedAt), snap.Payload)
	if err != nil {
		return fmt.Errorf("snapshot store: save %s: %w", snap.ID, err)
	}
	return nil
}

// Load retrieves one snapshot by id
func (s *Store) Load(ctx context.Context, id core.SnapshotID) (ports.Snapshot, error) {
	query := s.db.Rebind(`SELECT id, dataset_id, created_at, payload FROM snapshots WHERE id = ?`)
	return s.scanOne(ctx, query, string(id))
}

// Latest retrieves the most recent snapshot for a dataset
func (s *Store) Latest(ctx context.Context, datasetID core.DatasetID) (ports.Snapshot, error) {
	query := s.db.Rebind(`SELECT id, dataset_id, created_at, payload FROM snapshots
		WHERE dataset_id = ? ORDER BY created_at DESC LIMIT 1`)
	return s.scanOne(ctx, query, string(datasetID))
}

func (s *Store) scanOne(ctx context.Context, query string, arg string) (ports.Snapshot, error) {
	var (
		snap      ports.Snapshot
		id, dsID  string
		createdAt time.Time
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&id, &dsID, &createdAt, &snap.Payload)
	if err == sql.ErrNoRows {
		return ports.Snapshot{}, fmt.Errorf("%w: snapshot for %q", core.ErrNotFound, arg)
	}
	if err != nil {
		return ports.Snapshot{}, fmt.Errorf("snapshot store: load %q: %w", arg, err)
	}

	if v := gjson.GetBytes(snap.Payload, "schema_version").Int(); v > SchemaVersion {
		return ports.Snapshot{}, fmt.Errorf("snapshot store: %q was written by a newer version (schema %d)", id, v)
	}

	snap.ID = core.SnapshotID(id)
	snap.DatasetID = core.DatasetID(dsID)
	snap.CreatedAt = core.Timestamp(createdAt)
	return snap, nil
}

func (s *Store) Close() error { return s.db.Close() }
