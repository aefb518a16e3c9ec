package pipeline

import (
	"phenolab/domain/colony"
	"phenolab/domain/core"
	"phenolab/domain/frame"
)

// FilterAnimals removes the rows of disabled animals and drops their
// identifiers from the Animal category set, so downstream consumers never
// see a disabled animal as a valid category.
//
// When every animal in the registry is enabled the input is returned
// unchanged, without a copy. An empty enabled set yields an empty table.
func FilterAnimals(f *frame.Frame, animals map[string]*colony.Animal) (*frame.Frame, error) {
	if colony.AllEnabled(animals) {
		return f, nil
	}

	animalCol, err := f.Categorical(colony.ColAnimal)
	if err != nil {
		return nil, err
	}

	enabled := make(map[string]bool, len(animals))
	for id, a := range animals {
		if a != nil && a.Enabled {
			enabled[id] = true
		}
	}

	out := f.Filter(func(i int) bool {
		id, ok := animalCol.Value(i)
		return ok && enabled[id]
	})

	// Take gave the output its own category storage, so this cannot alias
	// the input column.
	kept, err := out.Categorical(colony.ColAnimal)
	if err != nil {
		return nil, core.NewColumnTypeError(colony.ColAnimal, "categorical")
	}
	kept.RemoveUnusedLevels()

	return out, nil
}
