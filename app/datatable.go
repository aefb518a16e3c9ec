package app

import (
	"sort"
	"time"

	"phenolab/adapters/pipeline"
	"phenolab/domain/colony"
	"phenolab/domain/core"
	"phenolab/domain/frame"
)

// Datatable bundles one raw measurement table with its variable metadata.
//
// Two frames are held: the original imported rows, mutated only by the
// explicit exclusion/rename/deletion operations below, and the active
// frame derived from the original by joining the current factor
// assignments. The active frame is always recomputable from the original
// plus the stored factors and is never independently mutated.
type Datatable struct {
	ID               core.DatatableID
	Name             string
	Variables        map[string]*colony.Variable
	SamplingInterval time.Duration

	original *frame.Frame
	active   *frame.Frame
	factors  map[string]*colony.Factor
}

// NewDatatable wraps a raw imported frame. The frame must carry the
// Animal, DateTime and Timedelta columns.
func NewDatatable(name string, raw *frame.Frame, variables map[string]*colony.Variable, sampling time.Duration) (*Datatable, error) {
	for _, col := range []string{colony.ColAnimal, colony.ColDateTime, colony.ColTimedelta} {
		if !raw.Has(col) {
			return nil, core.NewMissingColumnError("datatable "+name, col)
		}
	}
	return &Datatable{
		ID:               core.DatatableID(core.NewID()),
		Name:             name,
		Variables:        variables,
		SamplingInterval: sampling,
		original:         raw,
		active:           raw.Clone(),
		factors:          make(map[string]*colony.Factor),
	}, nil
}

// OriginalFrame returns the raw imported rows
func (t *Datatable) OriginalFrame() *frame.Frame { return t.original }

// ActiveFrame returns the factor-joined working table
func (t *Datatable) ActiveFrame() *frame.Frame { return t.active }

// RenameAnimal rewrites the animal's categorical value in both frames.
// A no-op when oldID is not a known category.
func (t *Datatable) RenameAnimal(oldID, newID string) {
	for _, f := range []*frame.Frame{t.original, t.active} {
		if col, err := f.Categorical(colony.ColAnimal); err == nil {
			col.RenameLevel(oldID, newID)
		}
	}
	t.renameInFactors(oldID, newID)
}

func (t *Datatable) renameInFactors(oldID, newID string) {
	for _, factor := range t.factors {
		for li := range factor.Levels {
			for ai, id := range factor.Levels[li].AnimalIDs {
				if id == oldID {
					factor.Levels[li].AnimalIDs[ai] = newID
				}
			}
		}
	}
}

// ExcludeAnimals drops the rows of the given animals from both frames and
// removes their categories. Unknown ids are ignored; the operation is
// idempotent.
func (t *Datatable) ExcludeAnimals(ids map[string]struct{}) {
	t.original = dropAnimals(t.original, ids)
	t.rebuildActive()
}

func dropAnimals(f *frame.Frame, ids map[string]struct{}) *frame.Frame {
	col, err := f.Categorical(colony.ColAnimal)
	if err != nil {
		return f
	}
	out := f.Filter(func(i int) bool {
		id, ok := col.Value(i)
		if !ok {
			return false
		}
		_, excluded := ids[id]
		return !excluded
	})
	if kept, err := out.Categorical(colony.ColAnimal); err == nil {
		kept.RemoveUnusedLevels()
	}
	return out
}

// ExcludeTime keeps only the rows outside [start, end]
func (t *Datatable) ExcludeTime(start, end time.Time) error {
	return t.filterTime(func(ts time.Time) bool {
		return ts.Before(start) || ts.After(end)
	})
}

// TrimTime keeps only the rows inside [start, end]
func (t *Datatable) TrimTime(start, end time.Time) error {
	return t.filterTime(func(ts time.Time) bool {
		return !ts.Before(start) && !ts.After(end)
	})
}

func (t *Datatable) filterTime(keep func(ts time.Time) bool) error {
	dtCol, err := t.original.Time(colony.ColDateTime)
	if err != nil {
		return err
	}
	t.original = t.original.Filter(func(i int) bool { return keep(dtCol.Values[i]) })
	t.rebuildActive()
	return nil
}

// SetFactors recomputes the active frame from the original by joining one
// categorical column per factor. Animals without a level assignment get a
// null cell in that factor's column.
func (t *Datatable) SetFactors(factors map[string]*colony.Factor) error {
	t.factors = make(map[string]*colony.Factor, len(factors))
	for name, factor := range factors {
		if err := factor.Validate(); err != nil {
			return err
		}
		t.factors[name] = factor.Clone()
	}
	t.rebuildActive()
	return nil
}

// rebuildActive derives the active frame: original rows plus one
// categorical column per factor
func (t *Datatable) rebuildActive() {
	active := t.original.Clone()
	animalCol, err := active.Categorical(colony.ColAnimal)
	if err != nil {
		t.active = active
		return
	}

	names := make([]string, 0, len(t.factors))
	for name := range t.factors {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		factor := t.factors[name]
		values := make([]string, active.NumRows())
		for i := range values {
			if id, ok := animalCol.Value(i); ok {
				if level, ok := factor.LevelOf(id); ok {
					values[i] = level
				}
			}
		}
		col := frame.NewCategoricalWithLevels(name, values, factor.LevelNames())
		if active.Has(name) {
			_ = active.ReplaceColumn(col)
		} else {
			_ = active.AddColumn(col)
		}
	}
	t.active = active
}

// DeleteVariables removes variables and their columns in lockstep.
// Deleting an absent name is a no-op.
func (t *Datatable) DeleteVariables(names []string) {
	for _, name := range names {
		delete(t.Variables, name)
		t.original.DropColumn(name)
		t.active.DropColumn(name)
	}
}

// RenameVariables renames variables and their columns in lockstep
func (t *Datatable) RenameVariables(nameMap map[string]string) error {
	for old, new := range nameMap {
		v, ok := t.Variables[old]
		if !ok {
			continue
		}
		if err := t.original.RenameColumn(old, new); err != nil {
			return err
		}
		if err := t.active.RenameColumn(old, new); err != nil {
			return err
		}
		delete(t.Variables, old)
		v.Name = new
		t.Variables[new] = v
	}
	return nil
}

// FilteredFrame projects the active frame to the requested columns (nil
// means all) and re-applies the animal-enabled filter
func (t *Datatable) FilteredFrame(columns []string, animals map[string]*colony.Animal) (*frame.Frame, error) {
	f := t.active
	if len(columns) > 0 {
		selected, err := f.Select(columns...)
		if err != nil {
			return nil, err
		}
		f = selected
	}
	return pipeline.FilterAnimals(f, animals)
}

// Clone returns a deep copy with independent storage. Mutating the clone
// never affects the original.
func (t *Datatable) Clone() *Datatable {
	factors := make(map[string]*colony.Factor, len(t.factors))
	for name, f := range t.factors {
		factors[name] = f.Clone()
	}
	return &Datatable{
		ID:               t.ID,
		Name:             t.Name,
		Variables:        colony.CloneVariables(t.Variables),
		SamplingInterval: t.SamplingInterval,
		original:         t.original.Clone(),
		active:           t.active.Clone(),
		factors:          factors,
	}
}
