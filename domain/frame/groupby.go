package frame

import (
	"fmt"
	"strconv"
	"strings"

	"phenolab/domain/core"
)

// Group is one equivalence class of rows sharing key-column values.
// First is the earliest row of the group; key columns can be re-read from it.
type Group struct {
	First int
	Rows  []int
}

// GroupBy partitions rows by the values of the key columns, preserving
// first-appearance order of the groups.
//
// Null cells participate in grouping: rows with a null key form their own
// group rather than being dropped. Binned reports rely on this so that
// samples before the first phase boundary stay visible.
func (f *Frame) GroupBy(keys ...string) ([]Group, error) {
	tokens := make([]func(i int) string, len(keys))
	for k, name := range keys {
		col, ok := f.Column(name)
		if !ok {
			return nil, core.NewMissingColumnError("group by", name)
		}
		tokens[k] = tokenFunc(col)
	}

	order := make(map[string]int)
	var groups []Group
	for i := 0; i < f.NumRows(); i++ {
		var b strings.Builder
		for k := range tokens {
			if k > 0 {
				b.WriteByte(0x1f)
			}
			b.WriteString(tokens[k](i))
		}
		key := b.String()
		gi, seen := order[key]
		if !seen {
			gi = len(groups)
			order[key] = gi
			groups = append(groups, Group{First: i})
		}
		groups[gi].Rows = append(groups[gi].Rows, i)
	}
	return groups, nil
}

// tokenFunc builds a comparable per-row key token for a column
func tokenFunc(col Series) func(i int) string {
	switch s := col.(type) {
	case *CategoricalSeries:
		return func(i int) string { return strconv.Itoa(s.Codes[i]) }
	case *IntSeries:
		return func(i int) string { return strconv.Itoa(s.Values[i]) }
	case *TimeSeries:
		return func(i int) string { return strconv.FormatInt(s.Values[i].UnixNano(), 10) }
	case *DurationSeries:
		return func(i int) string { return strconv.FormatInt(int64(s.Values[i]), 10) }
	case *FloatSeries:
		return func(i int) string {
			if !s.Valid[i] {
				return "null"
			}
			return strconv.FormatFloat(s.Values[i], 'g', -1, 64)
		}
	default:
		return func(i int) string {
			v, ok := col.At(i)
			if !ok {
				return "null"
			}
			return fmt.Sprint(v)
		}
	}
}
