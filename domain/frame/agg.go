package frame

import (
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"phenolab/domain/colony"
)

// Reduce collapses a slice of values under an aggregation policy.
// An empty slice reduces to (0, false).
func Reduce(values []float64, agg colony.Aggregation) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	switch agg {
	case colony.AggMedian:
		m, err := stats.Median(values)
		if err != nil {
			return 0, false
		}
		return m, true
	case colony.AggSum:
		total := 0.0
		for _, v := range values {
			total += v
		}
		return total, true
	case colony.AggMin:
		m := values[0]
		for _, v := range values[1:] {
			if v < m {
				m = v
			}
		}
		return m, true
	case colony.AggMax:
		m := values[0]
		for _, v := range values[1:] {
			if v > m {
				m = v
			}
		}
		return m, true
	default: // mean
		return stat.Mean(values, nil), true
	}
}

// ReduceRows collapses the non-null cells at the given rows of a float column
func ReduceRows(s *FloatSeries, rows []int, agg colony.Aggregation) (float64, bool) {
	values := make([]float64, 0, len(rows))
	for _, i := range rows {
		if s.Valid[i] {
			values = append(values, s.Values[i])
		}
	}
	return Reduce(values, agg)
}
