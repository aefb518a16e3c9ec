package frame

import (
	"time"
)

// Kind identifies the storage type of a column
type Kind int

const (
	KindFloat Kind = iota
	KindInt
	KindCategorical
	KindTime
	KindDuration
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindCategorical:
		return "categorical"
	case KindTime:
		return "time"
	case KindDuration:
		return "duration"
	default:
		return "unknown"
	}
}

// Series is one typed column of a Frame
type Series interface {
	Name() string
	Len() int
	Kind() Kind

	// At returns the cell value and whether it is non-null
	At(i int) (interface{}, bool)

	// Take builds a new series containing the rows at idx, in order
	Take(idx []int) Series

	// Clone returns a deep copy with independent storage
	Clone() Series

	// Renamed returns a deep copy carrying a new column name
	Renamed(name string) Series
}

// FloatSeries is a numeric column with a validity mask
type FloatSeries struct {
	name   string
	Values []float64
	Valid  []bool
}

// NewFloat creates a float column with every cell valid
func NewFloat(name string, values []float64) *FloatSeries {
	valid := make([]bool, len(values))
	for i := range valid {
		valid[i] = true
	}
	return &FloatSeries{name: name, Values: values, Valid: valid}
}

// NewFloatWithValid creates a float column with an explicit validity mask
func NewFloatWithValid(name string, values []float64, valid []bool) *FloatSeries {
	return &FloatSeries{name: name, Values: values, Valid: valid}
}

func (s *FloatSeries) Name() string { return s.name }
func (s *FloatSeries) Len() int     { return len(s.Values) }
func (s *FloatSeries) Kind() Kind   { return KindFloat }

func (s *FloatSeries) At(i int) (interface{}, bool) {
	if !s.Valid[i] {
		return nil, false
	}
	return s.Values[i], true
}

// ValidValues returns the non-null values in row order
func (s *FloatSeries) ValidValues() []float64 {
	out := make([]float64, 0, len(s.Values))
	for i, v := range s.Values {
		if s.Valid[i] {
			out = append(out, v)
		}
	}
	return out
}

func (s *FloatSeries) Take(idx []int) Series {
	values := make([]float64, len(idx))
	valid := make([]bool, len(idx))
	for out, i := range idx {
		values[out] = s.Values[i]
		valid[out] = s.Valid[i]
	}
	return &FloatSeries{name: s.name, Values: values, Valid: valid}
}

func (s *FloatSeries) Clone() Series {
	values := make([]float64, len(s.Values))
	valid := make([]bool, len(s.Valid))
	copy(values, s.Values)
	copy(valid, s.Valid)
	return &FloatSeries{name: s.name, Values: values, Valid: valid}
}

func (s *FloatSeries) Renamed(name string) Series {
	c := s.Clone().(*FloatSeries)
	c.name = name
	return c
}

// IntSeries is an integer column (run numbers, ordinal bins)
type IntSeries struct {
	name   string
	Values []int
}

// NewInt creates an integer column
func NewInt(name string, values []int) *IntSeries {
	return &IntSeries{name: name, Values: values}
}

func (s *IntSeries) Name() string { return s.name }
func (s *IntSeries) Len() int     { return len(s.Values) }
func (s *IntSeries) Kind() Kind   { return KindInt }

func (s *IntSeries) At(i int) (interface{}, bool) { return s.Values[i], true }

func (s *IntSeries) Take(idx []int) Series {
	values := make([]int, len(idx))
	for out, i := range idx {
		values[out] = s.Values[i]
	}
	return &IntSeries{name: s.name, Values: values}
}

func (s *IntSeries) Clone() Series {
	values := make([]int, len(s.Values))
	copy(values, s.Values)
	return &IntSeries{name: s.name, Values: values}
}

func (s *IntSeries) Renamed(name string) Series {
	c := s.Clone().(*IntSeries)
	c.name = name
	return c
}

// TimeSeries is an absolute-timestamp column
type TimeSeries struct {
	name   string
	Values []time.Time
}

// NewTime creates a timestamp column
func NewTime(name string, values []time.Time) *TimeSeries {
	return &TimeSeries{name: name, Values: values}
}

func (s *TimeSeries) Name() string { return s.name }
func (s *TimeSeries) Len() int     { return len(s.Values) }
func (s *TimeSeries) Kind() Kind   { return KindTime }

func (s *TimeSeries) At(i int) (interface{}, bool) { return s.Values[i], true }

func (s *TimeSeries) Take(idx []int) Series {
	values := make([]time.Time, len(idx))
	for out, i := range idx {
		values[out] = s.Values[i]
	}
	return &TimeSeries{name: s.name, Values: values}
}

func (s *TimeSeries) Clone() Series {
	values := make([]time.Time, len(s.Values))
	copy(values, s.Values)
	return &TimeSeries{name: s.name, Values: values}
}

func (s *TimeSeries) Renamed(name string) Series {
	c := s.Clone().(*TimeSeries)
	c.name = name
	return c
}

// DurationSeries is an elapsed-time column
type DurationSeries struct {
	name   string
	Values []time.Duration
}

// NewDuration creates an elapsed-time column
func NewDuration(name string, values []time.Duration) *DurationSeries {
	return &DurationSeries{name: name, Values: values}
}

func (s *DurationSeries) Name() string { return s.name }
func (s *DurationSeries) Len() int     { return len(s.Values) }
func (s *DurationSeries) Kind() Kind   { return KindDuration }

func (s *DurationSeries) At(i int) (interface{}, bool) { return s.Values[i], true }

func (s *DurationSeries) Take(idx []int) Series {
	values := make([]time.Duration, len(idx))
	for out, i := range idx {
		values[out] = s.Values[i]
	}
	return &DurationSeries{name: s.name, Values: values}
}

func (s *DurationSeries) Clone() Series {
	values := make([]time.Duration, len(s.Values))
	copy(values, s.Values)
	return &DurationSeries{name: s.name, Values: values}
}

func (s *DurationSeries) Renamed(name string) Series {
	c := s.Clone().(*DurationSeries)
	c.name = name
	return c
}
