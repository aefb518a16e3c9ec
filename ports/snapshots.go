package ports

import (
	"context"

	"phenolab/domain/core"
)

// Snapshot is a persisted capture of a dataset's configuration: settings,
// animal registry, and factor assignments. Measurement tables are not
// snapshotted; they are re-imported from source files.
type Snapshot struct {
	ID        core.SnapshotID
	DatasetID core.DatasetID
	CreatedAt core.Timestamp
	Payload   []byte // versioned JSON document
}

// SnapshotStore persists and restores dataset snapshots
type SnapshotStore interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context, id core.SnapshotID) (Snapshot, error)
	Latest(ctx context.Context, datasetID core.DatasetID) (Snapshot, error)
	Close() error
}
