package pipeline

import (
	"math"
	"sort"
	"time"

	"phenolab/domain/binning"
	"phenolab/domain/colony"
	"phenolab/domain/frame"
)

// BinByIntervals resamples each animal's series onto a fixed-width elapsed
// time grid. One output row is produced per populated bucket; buckets with
// no samples are not synthesized. Per column, variables aggregate under
// their own policy, DateTime and non-variable columns take the first value
// in the bucket.
//
// The output carries an integer Bin column equal to round(Timedelta /
// interval) after Timedelta is rounded to the interval resolution, and rows
// are sorted ascending by Bin. This is the only binning mode with an
// ordinal bin.
func BinByIntervals(f *frame.Frame, settings binning.IntervalsSettings, variables map[string]*colony.Variable) (*frame.Frame, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if f.NumRows() == 0 {
		return f.Clone(), nil
	}

	if _, err := f.Categorical(colony.ColAnimal); err != nil {
		return nil, err
	}
	tdCol, err := f.Duration(colony.ColTimedelta)
	if err != nil {
		return nil, err
	}

	interval := settings.Interval()
	anchor := time.Duration(0)
	if settings.Origin != nil {
		anchor = *settings.Origin
	}

	perAnimal, err := f.GroupBy(colony.ColAnimal)
	if err != nil {
		return nil, err
	}

	// Bucket rows per animal by floor((Timedelta - anchor) / interval)
	var groups []frame.Group
	var buckets []int64
	for _, animal := range perAnimal {
		byBucket := make(map[int64][]int)
		var order []int64
		for _, i := range animal.Rows {
			k := floorDiv(int64(tdCol.Values[i]-anchor), int64(interval))
			if _, seen := byBucket[k]; !seen {
				order = append(order, k)
			}
			byBucket[k] = append(byBucket[k], i)
		}
		sort.Slice(order, func(a, b int) bool { return order[a] < order[b] })
		for _, k := range order {
			rows := byBucket[k]
			groups = append(groups, frame.Group{First: rows[0], Rows: rows})
			buckets = append(buckets, k)
		}
	}

	out, err := collapseGroups(f, groups, func(name string) colony.Aggregation {
		return policyFor(variables, name)
	})
	if err != nil {
		return nil, err
	}

	// Recompute Timedelta as the bucket label rounded to the interval
	// resolution, and derive the ordinal bin from it.
	labels := make([]time.Duration, len(groups))
	bins := make([]int, len(groups))
	for i, k := range buckets {
		label := (anchor + time.Duration(k)*interval).Round(interval)
		labels[i] = label
		bins[i] = int(math.Round(float64(label) / float64(interval)))
	}
	if err := out.ReplaceColumn(frame.NewDuration(colony.ColTimedelta, labels)); err != nil {
		return nil, err
	}
	if err := out.AddColumn(frame.NewInt(colony.ColBin, bins)); err != nil {
		return nil, err
	}

	return out.SortBy(func(i, j int) bool { return bins[i] < bins[j] }), nil
}

// floorDiv divides rounding toward negative infinity
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
