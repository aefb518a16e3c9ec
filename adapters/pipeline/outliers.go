package pipeline

import (
	"math"
	"sort"

	"phenolab/domain/binning"
	"phenolab/domain/colony"
	"phenolab/domain/frame"
)

// ProcessOutliers drops rows whose value falls outside the IQR fence
// [Q1 - k*IQR, Q3 + k*IQR] of any variable flagged for outlier removal.
// Quartiles are computed over the column's full ungrouped value range.
//
// The operator is an identity when the mode is not Remove or when no
// variable is flagged. A degenerate fence (IQR = 0) marks no outliers.
func ProcessOutliers(f *frame.Frame, settings binning.OutliersSettings, variables map[string]*colony.Variable) (*frame.Frame, error) {
	if settings.Mode != binning.OutliersRemove {
		return f, nil
	}

	var flagged []*frame.FloatSeries
	for name, v := range variables {
		if v == nil || !v.RemoveOutliers || !f.Has(name) {
			continue
		}
		col, err := f.Float(name)
		if err != nil {
			return nil, err
		}
		flagged = append(flagged, col)
	}
	if len(flagged) == 0 {
		return f, nil
	}

	k := settings.Coefficient
	if k <= 0 {
		k = binning.DefaultCoefficient
	}

	outlier := make([]bool, f.NumRows())
	for _, col := range flagged {
		values := col.ValidValues()
		if len(values) == 0 {
			continue
		}
		q1 := quantile(values, 0.25)
		q3 := quantile(values, 0.75)
		iqr := q3 - q1
		if iqr == 0 {
			continue
		}
		lo := q1 - k*iqr
		hi := q3 + k*iqr
		for i, v := range col.Values {
			if col.Valid[i] && (v < lo || v > hi) {
				outlier[i] = true
			}
		}
	}

	return f.Filter(func(i int) bool { return !outlier[i] }), nil
}

// quantile interpolates linearly between the two closest order statistics,
// the same rule dataframe libraries use for .quantile. Nearest-rank
// percentiles would move the fences at quantile boundaries and change
// which rows get removed.
func quantile(values []float64, q float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
