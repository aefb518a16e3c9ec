package colony

import (
	"fmt"

	"phenolab/domain/core"
)

// FactorLevel is one named value of a factor and owns the animals assigned to it
type FactorLevel struct {
	Name      string   `json:"name"`
	Color     string   `json:"color,omitempty"`
	AnimalIDs []string `json:"animal_ids"`
}

// Factor is a user-defined grouping dimension over animals.
// Membership is exclusive: an animal belongs to at most one level.
type Factor struct {
	Name   string        `json:"name"`
	Levels []FactorLevel `json:"levels"`
}

// Validate checks the exclusive-membership invariant
func (f *Factor) Validate() error {
	seen := make(map[string]string)
	for _, level := range f.Levels {
		for _, id := range level.AnimalIDs {
			if prev, ok := seen[id]; ok {
				return fmt.Errorf("%w: factor %q assigns %q to both %q and %q",
					core.ErrDuplicateLevel, f.Name, id, prev, level.Name)
			}
			seen[id] = level.Name
		}
	}
	return nil
}

// LevelOf returns the level an animal is assigned to, if any
func (f *Factor) LevelOf(animalID string) (string, bool) {
	for _, level := range f.Levels {
		for _, id := range level.AnimalIDs {
			if id == animalID {
				return level.Name, true
			}
		}
	}
	return "", false
}

// LevelNames returns the ordered level names
func (f *Factor) LevelNames() []string {
	names := make([]string, len(f.Levels))
	for i, level := range f.Levels {
		names[i] = level.Name
	}
	return names
}

// Clone returns a deep copy of the factor
func (f *Factor) Clone() *Factor {
	levels := make([]FactorLevel, len(f.Levels))
	for i, level := range f.Levels {
		ids := make([]string, len(level.AnimalIDs))
		copy(ids, level.AnimalIDs)
		levels[i] = FactorLevel{Name: level.Name, Color: level.Color, AnimalIDs: ids}
	}
	return &Factor{Name: f.Name, Levels: levels}
}
