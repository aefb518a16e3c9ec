package colony

import (
	"sort"
	"time"
)

// TimePhase is a named boundary in elapsed experiment time
// (e.g. "Dark start" at offset 12h)
type TimePhase struct {
	Name  string        `json:"name"`
	Start time.Duration `json:"start"`
}

// SortPhases returns a copy of phases ordered ascending by start offset.
// The caller's slice is never mutated.
func SortPhases(phases []TimePhase) []TimePhase {
	sorted := make([]TimePhase, len(phases))
	copy(sorted, phases)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})
	return sorted
}
