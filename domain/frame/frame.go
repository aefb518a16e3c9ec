package frame

import (
	"fmt"
	"sort"

	"phenolab/domain/core"
)

// Frame is a rectangular table of typed columns. The row index is implicit
// and always dense: row i of every column belongs to the same sample.
//
// Frames follow a copy-on-write discipline in the pipeline: operators build
// new frames and never mutate their input. Mutating methods exist for owning
// entities (Datatable) that hold a frame exclusively.
type Frame struct {
	cols  []Series
	index map[string]int
}

// New builds a frame from columns, validating equal lengths and unique names
func New(cols ...Series) (*Frame, error) {
	f := &Frame{index: make(map[string]int, len(cols))}
	for _, col := range cols {
		if err := f.AddColumn(col); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Empty returns a frame with no columns and no rows
func Empty() *Frame {
	return &Frame{index: make(map[string]int)}
}

// NumRows returns the row count
func (f *Frame) NumRows() int {
	if len(f.cols) == 0 {
		return 0
	}
	return f.cols[0].Len()
}

// NumCols returns the column count
func (f *Frame) NumCols() int { return len(f.cols) }

// Names returns the column names in order
func (f *Frame) Names() []string {
	names := make([]string, len(f.cols))
	for i, col := range f.cols {
		names[i] = col.Name()
	}
	return names
}

// Columns returns the columns in order
func (f *Frame) Columns() []Series { return f.cols }

// Has reports whether a column exists
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns a column by name
func (f *Frame) Column(name string) (Series, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

// Float returns a column asserted to be numeric
func (f *Frame) Float(name string) (*FloatSeries, error) {
	col, ok := f.Column(name)
	if !ok {
		return nil, core.NewMissingColumnError("frame", name)
	}
	s, ok := col.(*FloatSeries)
	if !ok {
		return nil, core.NewColumnTypeError(name, "numeric")
	}
	return s, nil
}

// Categorical returns a column asserted to be categorical
func (f *Frame) Categorical(name string) (*CategoricalSeries, error) {
	col, ok := f.Column(name)
	if !ok {
		return nil, core.NewMissingColumnError("frame", name)
	}
	s, ok := col.(*CategoricalSeries)
	if !ok {
		return nil, core.NewColumnTypeError(name, "categorical")
	}
	return s, nil
}

// Time returns a column asserted to hold timestamps
func (f *Frame) Time(name string) (*TimeSeries, error) {
	col, ok := f.Column(name)
	if !ok {
		return nil, core.NewMissingColumnError("frame", name)
	}
	s, ok := col.(*TimeSeries)
	if !ok {
		return nil, core.NewColumnTypeError(name, "time")
	}
	return s, nil
}

// Duration returns a column asserted to hold elapsed times
func (f *Frame) Duration(name string) (*DurationSeries, error) {
	col, ok := f.Column(name)
	if !ok {
		return nil, core.NewMissingColumnError("frame", name)
	}
	s, ok := col.(*DurationSeries)
	if !ok {
		return nil, core.NewColumnTypeError(name, "duration")
	}
	return s, nil
}

// AddColumn appends a column, validating length and name uniqueness
func (f *Frame) AddColumn(col Series) error {
	if _, exists := f.index[col.Name()]; exists {
		return fmt.Errorf("duplicate column %q", col.Name())
	}
	if len(f.cols) > 0 && col.Len() != f.NumRows() {
		return fmt.Errorf("%w: column %q has %d rows, frame has %d",
			core.ErrLengthMismatch, col.Name(), col.Len(), f.NumRows())
	}
	f.index[col.Name()] = len(f.cols)
	f.cols = append(f.cols, col)
	return nil
}

// DropColumn removes a column in place; a no-op when absent
func (f *Frame) DropColumn(name string) {
	i, ok := f.index[name]
	if !ok {
		return
	}
	f.cols = append(f.cols[:i], f.cols[i+1:]...)
	delete(f.index, name)
	for j := i; j < len(f.cols); j++ {
		f.index[f.cols[j].Name()] = j
	}
}

// RenameColumn renames a column in place; a no-op when old is absent
func (f *Frame) RenameColumn(old, new string) error {
	i, ok := f.index[old]
	if !ok {
		return nil
	}
	if _, exists := f.index[new]; exists {
		return fmt.Errorf("cannot rename %q: column %q already exists", old, new)
	}
	f.cols[i] = f.cols[i].Renamed(new)
	delete(f.index, old)
	f.index[new] = i
	return nil
}

// ReplaceColumn swaps a column in place, keeping its position
func (f *Frame) ReplaceColumn(col Series) error {
	i, ok := f.index[col.Name()]
	if !ok {
		return f.AddColumn(col)
	}
	if len(f.cols) > 1 && col.Len() != f.NumRows() {
		return fmt.Errorf("%w: column %q has %d rows, frame has %d",
			core.ErrLengthMismatch, col.Name(), col.Len(), f.NumRows())
	}
	f.cols[i] = col
	return nil
}

// Select projects to the requested columns, in the requested order.
// Unknown names are a structural error. Series are shared, not copied;
// callers must treat the projection as read-only.
func (f *Frame) Select(names ...string) (*Frame, error) {
	out := Empty()
	for _, name := range names {
		col, ok := f.Column(name)
		if !ok {
			return nil, core.NewMissingColumnError("select", name)
		}
		if err := out.AddColumn(col); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Take builds a new frame containing the rows at idx, in order.
// The resulting row index is dense again.
func (f *Frame) Take(idx []int) *Frame {
	out := Empty()
	for _, col := range f.cols {
		// AddColumn cannot fail here: names stay unique, lengths stay equal
		_ = out.AddColumn(col.Take(idx))
	}
	return out
}

// Filter builds a new frame with the rows for which keep returns true
func (f *Frame) Filter(keep func(i int) bool) *Frame {
	var idx []int
	for i := 0; i < f.NumRows(); i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	return f.Take(idx)
}

// SortBy returns a new frame with rows reordered by the given comparison.
// The sort is stable.
func (f *Frame) SortBy(less func(i, j int) bool) *Frame {
	perm := make([]int, f.NumRows())
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool { return less(perm[a], perm[b]) })
	return f.Take(perm)
}

// Clone returns a deep copy with independent storage
func (f *Frame) Clone() *Frame {
	out := Empty()
	for _, col := range f.cols {
		_ = out.AddColumn(col.Clone())
	}
	return out
}

// EmptyLike returns a zero-row frame with the same column names and kinds
func (f *Frame) EmptyLike() *Frame {
	return f.Take(nil)
}
