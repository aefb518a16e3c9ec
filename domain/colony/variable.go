package colony

// Aggregation defines how samples of one variable collapse into a bin
type Aggregation string

const (
	AggMean   Aggregation = "mean"
	AggMedian Aggregation = "median"
	AggSum    Aggregation = "sum"
	AggMin    Aggregation = "min"
	AggMax    Aggregation = "max"
)

// Valid reports whether the aggregation is one of the supported policies
func (a Aggregation) Valid() bool {
	switch a {
	case AggMean, AggMedian, AggSum, AggMin, AggMax:
		return true
	}
	return false
}

// Variable describes one measured quantity (e.g. "VO2", "Activity").
// Name doubles as the column key in every table that carries the variable,
// so a rename must be mirrored into those columns.
type Variable struct {
	Name           string      `json:"name"`
	Unit           string      `json:"unit,omitempty"`
	Description    string      `json:"description,omitempty"`
	Type           string      `json:"type,omitempty"` // scalar type tag from the importer
	Aggregation    Aggregation `json:"aggregation"`
	RemoveOutliers bool        `json:"remove_outliers"`
}

// NewVariable creates a variable with the default mean aggregation
func NewVariable(name, unit string) *Variable {
	return &Variable{Name: name, Unit: unit, Aggregation: AggMean}
}

// Clone returns a copy of the variable
func (v *Variable) Clone() *Variable {
	c := *v
	return &c
}

// CloneVariables deep-copies a variable dictionary
func CloneVariables(variables map[string]*Variable) map[string]*Variable {
	out := make(map[string]*Variable, len(variables))
	for name, v := range variables {
		out[name] = v.Clone()
	}
	return out
}
