package pipeline

import (
	"phenolab/domain/colony"
	"phenolab/domain/core"
	"phenolab/domain/frame"
)

// SplitByGroups re-aggregates an already-binned table across animals.
//
//   - SplitByAnimal is the identity: the input is returned unchanged.
//   - SplitByFactor groups by (Bin, factor column); the selection must name
//     an existing categorical column or the call fails with
//     ErrInvalidFactorSelection.
//   - SplitByRun groups by (Bin, Run).
//   - SplitTotal groups by Bin alone, aggregating across all animals.
//
// For the non-identity modes, DateTime and Timedelta take the first value
// of each group and every numeric column aggregates by arithmetic mean,
// overriding per-variable policies. That override reproduces the behavior
// every multi-animal report has been built on; switching to per-variable
// policies here would silently change their numbers.
//
// Per-animal categorical columns (Animal, Box, non-selected factors) are
// dropped: they are meaningless once values are pooled across animals.
func SplitByGroups(f *frame.Frame, variables map[string]*colony.Variable, mode colony.SplitMode, factorName string) (*frame.Frame, error) {
	if mode == colony.SplitByAnimal {
		return f, nil
	}

	if !f.Has(colony.ColBin) {
		return nil, core.NewMissingColumnError("group splitting", colony.ColBin)
	}

	var keys []string
	switch mode {
	case colony.SplitByFactor:
		if factorName == "" {
			return nil, core.NewInvalidFactorError("")
		}
		if _, err := f.Categorical(factorName); err != nil {
			return nil, core.NewInvalidFactorError(factorName)
		}
		keys = []string{colony.ColBin, factorName}
	case colony.SplitByRun:
		if !f.Has(colony.ColRun) {
			return nil, core.NewMissingColumnError("run splitting", colony.ColRun)
		}
		keys = []string{colony.ColBin, colony.ColRun}
	case colony.SplitTotal:
		keys = []string{colony.ColBin}
	default:
		return nil, core.ErrUnknownSplitMode
	}

	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}

	// Project away per-animal categoricals before grouping
	kept := frame.Empty()
	for _, col := range f.Columns() {
		if col.Kind() == frame.KindCategorical && !isKey[col.Name()] {
			continue
		}
		if err := kept.AddColumn(col); err != nil {
			return nil, err
		}
	}

	groups, err := kept.GroupBy(keys...)
	if err != nil {
		return nil, err
	}

	out, err := collapseGroups(kept, groups, func(string) colony.Aggregation {
		return colony.AggMean
	})
	if err != nil {
		return nil, err
	}

	return sortByBin(out, keys)
}

// sortByBin orders a split table by its bin and secondary key, null bins last
func sortByBin(f *frame.Frame, keys []string) (*frame.Frame, error) {
	primary, err := rankFunc(f, keys[0])
	if err != nil {
		return nil, err
	}
	secondary := func(int) int { return 0 }
	if len(keys) > 1 {
		secondary, err = rankFunc(f, keys[1])
		if err != nil {
			return nil, err
		}
	}
	return f.SortBy(func(i, j int) bool {
		if primary(i) != primary(j) {
			return primary(i) < primary(j)
		}
		return secondary(i) < secondary(j)
	}), nil
}

// rankFunc builds an ordering key over a bin or group column
func rankFunc(f *frame.Frame, name string) (func(i int) int, error) {
	col, ok := f.Column(name)
	if !ok {
		return nil, core.NewMissingColumnError("sort", name)
	}
	switch s := col.(type) {
	case *frame.IntSeries:
		return func(i int) int { return s.Values[i] }, nil
	case *frame.CategoricalSeries:
		nullRank := len(s.Levels())
		return func(i int) int {
			if s.Codes[i] == frame.NullCode {
				return nullRank
			}
			return s.Codes[i]
		}, nil
	default:
		return nil, core.NewColumnTypeError(name, "ordinal or categorical")
	}
}
