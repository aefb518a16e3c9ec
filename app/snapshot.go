package app

import (
	"encoding/json"
	"fmt"
	"sort"

	"phenolab/domain/binning"
	"phenolab/domain/colony"
	"phenolab/domain/core"
	"phenolab/ports"
)

// snapshotDocument is the persisted capture of a dataset's configuration.
// Measurement tables are not captured; they re-import from source files.
type snapshotDocument struct {
	SchemaVersion int                       `json:"schema_version"`
	Name          string                    `json:"name"`
	Binning       binning.Settings          `json:"binning"`
	Outliers      binning.OutliersSettings  `json:"outliers"`
	Animals       []*colony.Animal          `json:"animals"`
	Factors       map[string]*colony.Factor `json:"factors"`
}

// TakeSnapshot captures a dataset's current configuration
func TakeSnapshot(ds *Dataset) (ports.Snapshot, error) {
	animals := make([]*colony.Animal, 0, len(ds.Animals))
	for _, a := range ds.Animals {
		animals = append(animals, a)
	}
	sort.Slice(animals, func(i, j int) bool { return animals[i].ID < animals[j].ID })

	doc := snapshotDocument{
		SchemaVersion: 1,
		Name:          ds.Name,
		Binning:       ds.Binning,
		Outliers:      ds.Outliers,
		Animals:       animals,
		Factors:       ds.Factors,
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return ports.Snapshot{}, fmt.Errorf("snapshot %s: %w", ds.Name, err)
	}
	return ports.Snapshot{
		ID:        core.SnapshotID(core.NewID()),
		DatasetID: ds.ID,
		CreatedAt: core.Now(),
		Payload:   payload,
	}, nil
}

// RestoreSnapshot applies a captured configuration back onto a dataset.
// Animals referenced by the capture but absent from the dataset are
// skipped; the tables were re-imported and are authoritative on identity.
func RestoreSnapshot(ds *Dataset, snap ports.Snapshot) error {
	var doc snapshotDocument
	if err := json.Unmarshal(snap.Payload, &doc); err != nil {
		return fmt.Errorf("restore snapshot %s: %w", snap.ID, err)
	}

	ds.Name = doc.Name
	ds.Binning = doc.Binning
	ds.Outliers = doc.Outliers
	for _, captured := range doc.Animals {
		if current, ok := ds.Animals[captured.ID]; ok {
			current.Enabled = captured.Enabled
			current.Color = captured.Color
		}
	}
	if doc.Factors != nil {
		if err := ds.SetFactors(doc.Factors); err != nil {
			return fmt.Errorf("restore snapshot %s: %w", snap.ID, err)
		}
	}
	return nil
}
