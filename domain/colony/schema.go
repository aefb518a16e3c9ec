package colony

// Reserved column names shared by every measurement table.
// Everything else in a raw table is either a variable column or a
// factor-derived categorical column.
const (
	ColAnimal    = "Animal"
	ColBox       = "Box"
	ColRun       = "Run"
	ColDateTime  = "DateTime"
	ColTimedelta = "Timedelta"
	ColBin       = "Bin"

	// ColEntries is the fallback count column when a grouped table carries
	// no variable column to aggregate.
	ColEntries = "EntriesInBin"
)

// Cycle bin labels
const (
	CycleLight = "Light"
	CycleDark  = "Dark"
)

// IsServiceColumn reports whether a column name is part of the fixed schema
// rather than a variable or factor column
func IsServiceColumn(name string) bool {
	switch name {
	case ColAnimal, ColBox, ColRun, ColDateTime, ColTimedelta, ColBin, ColEntries:
		return true
	}
	return false
}

// SplitMode selects the dimension along which per-bin values are aggregated
// across animals
type SplitMode string

const (
	SplitByAnimal SplitMode = "animal"
	SplitByFactor SplitMode = "factor"
	SplitByRun    SplitMode = "run"
	SplitTotal    SplitMode = "total"
)

// Valid reports whether the split mode is one of the supported modes
func (m SplitMode) Valid() bool {
	switch m {
	case SplitByAnimal, SplitByFactor, SplitByRun, SplitTotal:
		return true
	}
	return false
}
