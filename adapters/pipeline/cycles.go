package pipeline

import (
	"phenolab/domain/binning"
	"phenolab/domain/colony"
	"phenolab/domain/frame"
)

// BinByCycles classifies every row as "Light" or "Dark" by wall-clock time
// of day and aggregates per (Animal, Bin) pair. The classification is the
// single test lightStart <= t < darkStart; a dark window that wraps past
// midnight gets no special case (see CyclesSettings).
//
// DateTime is dropped after classification: cycle bins discard absolute
// time. The Bin category set is always exactly {Light, Dark} regardless of
// how many rows fall in each. When the table carries no variable column to
// aggregate, an EntriesInBin count column is produced instead.
func BinByCycles(f *frame.Frame, settings binning.CyclesSettings, variables map[string]*colony.Variable) (*frame.Frame, error) {
	dtCol, err := f.Time(colony.ColDateTime)
	if err != nil {
		return nil, err
	}
	if _, err := f.Categorical(colony.ColAnimal); err != nil {
		return nil, err
	}

	codes := make([]int, f.NumRows())
	for i, t := range dtCol.Values {
		tod := binning.OfTime(t)
		if settings.LightStart <= tod && tod < settings.DarkStart {
			codes[i] = 0
		} else {
			codes[i] = 1
		}
	}
	binCol := frame.NewCategoricalFromCodes(colony.ColBin, codes,
		[]string{colony.CycleLight, colony.CycleDark})

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

// aggregatePerAnimalBin collapses a classified table to one row per
// (Animal, Bin) pair, sorted by animal and bin with null bins last
func aggregatePerAnimalBin(f *frame.Frame, variables map[string]*colony.Variable) (*frame.Frame, error) {
	groups, err := f.GroupBy(colony.ColAnimal, colony.ColBin)
	if err != nil {
		return nil, err
	}

	out, err := collapseGroups(f, groups, func(name string) colony.Aggregation {
		return policyFor(variables, name)
	})
	if err != nil {
		return nil, err
	}

	if !hasFloatColumn(f) {
		if err := out.AddColumn(frame.NewInt(colony.ColEntries, groupSizes(groups))); err != nil {
			return nil, err
		}
	}

	animalCol, err := out.Categorical(colony.ColAnimal)
	if err != nil {
		return nil, err
	}
	binCol, err := out.Categorical(colony.ColBin)
	if err != nil {
		return nil, err
	}
	nullRank := len(binCol.Levels())
	rank := func(i int) int {
		if binCol.Codes[i] == frame.NullCode {
			return nullRank
		}
		return binCol.Codes[i]
	}
	return out.SortBy(func(i, j int) bool {
		if animalCol.Codes[i] != animalCol.Codes[j] {
			return animalCol.Codes[i] < animalCol.Codes[j]
		}
		return rank(i) < rank(j)
	}), nil
}
