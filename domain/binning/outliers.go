package binning

// OutliersMode selects how IQR-fence outliers are treated
type OutliersMode string

const (
	OutliersOff       OutliersMode = "off"
	OutliersHighlight OutliersMode = "highlight"
	OutliersRemove    OutliersMode = "remove"
)

// DefaultCoefficient is the conventional IQR fence multiplier
const DefaultCoefficient = 1.5

// OutliersSettings configures the IQR outlier rule.
// Highlight mode is a rendering concern; only Remove changes table contents.
type OutliersSettings struct {
	Mode        OutliersMode `json:"mode"`
	Coefficient float64      `json:"coefficient"`
}

// DefaultOutliersSettings returns outlier handling disabled with the 1.5 fence
func DefaultOutliersSettings() OutliersSettings {
	return OutliersSettings{Mode: OutliersOff, Coefficient: DefaultCoefficient}
}
