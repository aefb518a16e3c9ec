// Package pipeline implements the operators between raw per-animal
// measurement tables and every downstream consumer: animal filtering,
// IQR outlier removal, the three binning strategies, and group splitting.
//
// Operators are copy-on-write: the input frame is never mutated, and a
// returned frame shares no mutable storage with its input unless the
// operator is documented as an identity (returning the input unchanged).
package pipeline

import (
	"phenolab/domain/colony"
	"phenolab/domain/frame"
)

// policyFor resolves the aggregation policy for a variable column,
// defaulting to mean for unknown or invalid policies.
func policyFor(variables map[string]*colony.Variable, name string) colony.Aggregation {
	if v, ok := variables[name]; ok && v.Aggregation.Valid() {
		return v.Aggregation
	}
	return colony.AggMean
}

// collapseGroups builds one output row per group. Float columns are reduced
// under the policy returned by reduce; every other column takes the first
// value of the group.
func collapseGroups(f *frame.Frame, groups []frame.Group, reduce func(name string) colony.Aggregation) (*frame.Frame, error) {
	firsts := make([]int, len(groups))
	for i, g := range groups {
		firsts[i] = g.First
	}

	out := frame.Empty()
	for _, col := range f.Columns() {
		fs, isFloat := col.(*frame.FloatSeries)
		if !isFloat {
			if err := out.AddColumn(col.Take(firsts)); err != nil {
				return nil, err
			}
			continue
		}
		values := make([]float64, len(groups))
		valid := make([]bool, len(groups))
		agg := reduce(col.Name())
		for i, g := range groups {
			values[i], valid[i] = frame.ReduceRows(fs, g.Rows, agg)
		}
		if err := out.AddColumn(frame.NewFloatWithValid(col.Name(), values, valid)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// hasFloatColumn reports whether the frame carries any numeric column
func hasFloatColumn(f *frame.Frame) bool {
	for _, col := range f.Columns() {
		if col.Kind() == frame.KindFloat {
			return true
		}
	}
	return false
}

// groupSizes returns the row count of each group
func groupSizes(groups []frame.Group) []int {
	sizes := make([]int, len(groups))
	for i, g := range groups {
		sizes[i] = len(g.Rows)
	}
	return sizes
}
