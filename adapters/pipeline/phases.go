package pipeline

import (
	"fmt"
	"sort"

	"phenolab/domain/binning"
	"phenolab/domain/colony"
	"phenolab/domain/frame"
)

// BinByPhases assigns every row to the last user-named phase whose start
// offset is at or before the row's elapsed time, then aggregates per
// (Animal, Bin) pair. The configured phase list is sorted on a copy; the
// caller's settings are never reordered.
//
// Rows before the first phase boundary carry a null bin and survive
// aggregation as their own null-keyed group. The Bin category set is fixed
// to the full ordered phase-name list, so phases with zero matching rows
// remain valid categories downstream. DateTime is dropped.
func BinByPhases(f *frame.Frame, settings binning.PhasesSettings, variables map[string]*colony.Variable) (*frame.Frame, error) {
	phases := settings.Sorted()
	if len(phases) == 0 {
		return nil, fmt.Errorf("phase binning requires at least one time phase")
	}
	if _, err := f.Categorical(colony.ColAnimal); err != nil {
		return nil, err
	}
	tdCol, err := f.Duration(colony.ColTimedelta)
	if err != nil {
		return nil, err
	}

	levels := make([]string, len(phases))
	for i, p := range phases {
		levels[i] = p.Name
	}

	codes := make([]int, f.NumRows())
	for i, td := range tdCol.Values {
		// Index of the last phase starting at or before td
		n := sort.Search(len(phases), func(j int) bool { return phases[j].Start > td })
		codes[i] = n - 1 // -1 == NullCode when td precedes every phase
	}
	binCol := frame.NewCategoricalFromCodes(colony.ColBin, codes, levels)

	classified := frame.Empty()
	for _, col := range f.Columns() {
		if col.Name() == colony.ColDateTime {
			continue
		}
		if err := classified.AddColumn(col); err != nil {
			return nil, err
		}
	}
	if err := classified.AddColumn(binCol); err != nil {
		return nil, err
	}

	return aggregatePerAnimalBin(classified, variables)
}
