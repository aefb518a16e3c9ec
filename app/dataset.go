package app

import (
	"fmt"

	"phenolab/domain/binning"
	"phenolab/domain/colony"
	"phenolab/domain/core"
)

// Dataset owns the datatables of one imported recording session together
// with the animal registry, factor registry, and the active binning and
// outlier configuration. Registry mutations fan out to every owned table.
type Dataset struct {
	ID        core.DatasetID
	Name      string
	Animals   map[string]*colony.Animal
	Factors   map[string]*colony.Factor
	Binning   binning.Settings
	Outliers  binning.OutliersSettings
	CreatedAt core.Timestamp

	tables []*Datatable
}

// NewDataset creates a dataset around an animal registry
func NewDataset(name string, animals map[string]*colony.Animal) *Dataset {
	if animals == nil {
		animals = make(map[string]*colony.Animal)
	}
	return &Dataset{
		ID:        core.DatasetID(core.NewID()),
		Name:      name,
		Animals:   animals,
		Factors:   make(map[string]*colony.Factor),
		Binning:   binning.DefaultSettings(),
		Outliers:  binning.DefaultOutliersSettings(),
		CreatedAt: core.Now(),
	}
}

// AddTable registers a datatable; the first one added is the main table
func (d *Dataset) AddTable(t *Datatable) {
	d.tables = append(d.tables, t)
}

// Tables returns the owned datatables in registration order
func (d *Dataset) Tables() []*Datatable { return d.tables }

// MainTable returns the first registered datatable
func (d *Dataset) MainTable() (*Datatable, error) {
	if len(d.tables) == 0 {
		return nil, core.ErrDatatableNotFound
	}
	return d.tables[0], nil
}

// Table returns a datatable by name
func (d *Dataset) Table(name string) (*Datatable, error) {
	if name == "" {
		return d.MainTable()
	}
	for _, t := range d.tables {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", core.ErrDatatableNotFound, name)
}

// RenameAnimal changes an animal's identifier in the registry, in every
// factor assignment, and in every table. A no-op when oldID is unknown;
// fails with ErrDuplicateAnimal when newID is already registered.
func (d *Dataset) RenameAnimal(oldID, newID string) error {
	animal, ok := d.Animals[oldID]
	if !ok || oldID == newID {
		return nil
	}
	// renaming onto a live id would merge two animals' rows silently
	if _, taken := d.Animals[newID]; taken {
		return fmt.Errorf("%w: %q", core.ErrDuplicateAnimal, newID)
	}
	delete(d.Animals, oldID)
	animal.ID = newID
	d.Animals[newID] = animal

	for _, factor := range d.Factors {
		for li := range factor.Levels {
			for ai, id := range factor.Levels[li].AnimalIDs {
				if id == oldID {
					factor.Levels[li].AnimalIDs[ai] = newID
				}
			}
		}
	}

	for _, t := range d.tables {
		t.RenameAnimal(oldID, newID)
	}
	return nil
}

// ExcludeAnimals removes animals and all their rows from every table
// atomically. Unknown ids are ignored.
func (d *Dataset) ExcludeAnimals(ids map[string]struct{}) {
	for id := range ids {
		delete(d.Animals, id)
	}
	for _, factor := range d.Factors {
		for li := range factor.Levels {
			kept := factor.Levels[li].AnimalIDs[:0]
			for _, id := range factor.Levels[li].AnimalIDs {
				if _, excluded := ids[id]; !excluded {
					kept = append(kept, id)
				}
			}
			factor.Levels[li].AnimalIDs = kept
		}
	}
	for _, t := range d.tables {
		t.ExcludeAnimals(ids)
	}
}

// SetAnimalEnabled toggles an animal's participation in aggregation
func (d *Dataset) SetAnimalEnabled(id string, enabled bool) error {
	animal, ok := d.Animals[id]
	if !ok {
		return core.NewNotFoundError("animal", id)
	}
	animal.Enabled = enabled
	return nil
}

// SetFactors replaces the factor registry and re-joins factor columns in
// every table
func (d *Dataset) SetFactors(factors map[string]*colony.Factor) error {
	for _, factor := range factors {
		if err := factor.Validate(); err != nil {
			return err
		}
	}
	d.Factors = factors
	for _, t := range d.tables {
		if err := t.SetFactors(factors); err != nil {
			return err
		}
	}
	return nil
}
