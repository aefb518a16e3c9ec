package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phenolab/domain/colony"
	"phenolab/domain/frame"
)

func makeAnimals(ids ...string) map[string]*colony.Animal {
	animals := make(map[string]*colony.Animal, len(ids))
	for _, id := range ids {
		animals[id] = colony.NewAnimal(id)
	}
	return animals
}

func makeRawFrame(t *testing.T, animalIDs []string, hours int, value func(a, h int) float64) *frame.Frame {
	t.Helper()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	var ids []string
	var datetimes []time.Time
	var deltas []time.Duration
	var vo2 []float64
	for a, id := range animalIDs {
		for h := 0; h < hours; h++ {
			ids = append(ids, id)
			datetimes = append(datetimes, start.Add(time.Duration(h)*time.Hour))
			deltas = append(deltas, time.Duration(h)*time.Hour)
			vo2 = append(vo2, value(a, h))
		}
	}

	f, err := frame.New(
		frame.NewCategorical(colony.ColAnimal, ids),
		frame.NewTime(colony.ColDateTime, datetimes),
		frame.NewDuration(colony.ColTimedelta, deltas),
		frame.NewFloat("VO2", vo2),
	)
	require.NoError(t, err)
	return f
}

func makeVariables() map[string]*colony.Variable {
	return map[string]*colony.Variable{
		"VO2": {Name: "VO2", Unit: "ml/h", Aggregation: colony.AggMean, RemoveOutliers: true},
	}
}

func makeTable(t *testing.T, animalIDs []string, hours int) *Datatable {
	t.Helper()
	raw := makeRawFrame(t, animalIDs, hours, func(a, h int) float64 { return float64(a*100 + h) })
	table, err := NewDatatable("calorimetry", raw, makeVariables(), time.Hour)
	require.NoError(t, err)
	return table
}

func TestNewDatatableRequiresContractColumns(t *testing.T) {
	f, err := frame.New(frame.NewFloat("VO2", []float64{1, 2}))
	require.NoError(t, err)

	_, err = NewDatatable("broken", f, makeVariables(), time.Hour)
	assert.Error(t, err)
}

func TestExcludeAnimalsDropsRowsAndCategories(t *testing.T) {
	table := makeTable(t, []string{"A1", "A2", "A3"}, 4)

	table.ExcludeAnimals(map[string]struct{}{"A3": {}})

	assert.Equal(t, 8, table.ActiveFrame().NumRows())
	animalCol, err := table.ActiveFrame().Categorical(colony.ColAnimal)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A1", "A2"}, animalCol.Levels())

	// idempotent
	table.ExcludeAnimals(map[string]struct{}{"A3": {}})
	assert.Equal(t, 8, table.ActiveFrame().NumRows())
}

func TestRenameAnimalRewritesBothFramesAndFactors(t *testing.T) {
	table := makeTable(t, []string{"A1", "A2"}, 2)
	require.NoError(t, table.SetFactors(map[string]*colony.Factor{
		"Genotype": {Name: "Genotype", Levels: []colony.FactorLevel{
			{Name: "WT", AnimalIDs: []string{"A1"}},
			{Name: "KO", AnimalIDs: []string{"A2"}},
		}},
	}))

	table.RenameAnimal("A1", "M1")

	for _, f := range []*frame.Frame{table.OriginalFrame(), table.ActiveFrame()} {
		col, err := f.Categorical(colony.ColAnimal)
		require.NoError(t, err)
		assert.Contains(t, col.Levels(), "M1")
		assert.NotContains(t, col.Levels(), "A1")
	}
}

func TestSetFactorsJoinsLevelsAndNullsUnassigned(t *testing.T) {
	table := makeTable(t, []string{"A1", "A2", "A3"}, 2)

	require.NoError(t, table.SetFactors(map[string]*colony.Factor{
		"Genotype": {Name: "Genotype", Levels: []colony.FactorLevel{
			{Name: "WT", AnimalIDs: []string{"A1"}},
			{Name: "KO", AnimalIDs: []string{"A2"}},
		}},
	}))

	col, err := table.ActiveFrame().Categorical("Genotype")
	require.NoError(t, err)
	assert.Equal(t, []string{"WT", "KO"}, col.Levels())

	animalCol, err := table.ActiveFrame().Categorical(colony.ColAnimal)
	require.NoError(t, err)
	for i := 0; i < table.ActiveFrame().NumRows(); i++ {
		id, _ := animalCol.Value(i)
		level, ok := col.Value(i)
		switch id {
		case "A1":
			assert.True(t, ok)
			assert.Equal(t, "WT", level)
		case "A2":
			assert.True(t, ok)
			assert.Equal(t, "KO", level)
		case "A3":
			assert.False(t, ok, "unassigned animal should get a null factor cell")
		}
	}
}

func TestSetFactorsRejectsDuplicateMembership(t *testing.T) {
	table := makeTable(t, []string{"A1"}, 2)

	err := table.SetFactors(map[string]*colony.Factor{
		"Genotype": {Name: "Genotype", Levels: []colony.FactorLevel{
			{Name: "WT", AnimalIDs: []string{"A1"}},
			{Name: "KO", AnimalIDs: []string{"A1"}},
		}},
	})
	assert.Error(t, err)
}

func TestTrimTimeKeepsInclusiveWindow(t *testing.T) {
	table := makeTable(t, []string{"A1"}, 6)
	start := time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 1, 3, 0, 0, 0, time.UTC)

	require.NoError(t, table.TrimTime(start, end))
	assert.Equal(t, 3, table.ActiveFrame().NumRows())
}

func TestExcludeTimeRemovesInclusiveWindow(t *testing.T) {
	table := makeTable(t, []string{"A1"}, 6)
	start := time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 1, 3, 0, 0, 0, time.UTC)

	require.NoError(t, table.ExcludeTime(start, end))
	assert.Equal(t, 3, table.ActiveFrame().NumRows())
}

func TestDeleteVariablesKeepsFramesAndRegistryInLockstep(t *testing.T) {
	table := makeTable(t, []string{"A1"}, 2)

	table.DeleteVariables([]string{"VO2", "absent"})

	assert.NotContains(t, table.Variables, "VO2")
	assert.False(t, table.OriginalFrame().Has("VO2"))
	assert.False(t, table.ActiveFrame().Has("VO2"))
}

func TestRenameVariablesKeepsFramesAndRegistryInLockstep(t *testing.T) {
	table := makeTable(t, []string{"A1"}, 2)

	require.NoError(t, table.RenameVariables(map[string]string{"VO2": "O2 Consumption"}))

	assert.Contains(t, table.Variables, "O2 Consumption")
	assert.Equal(t, "O2 Consumption", table.Variables["O2 Consumption"].Name)
	assert.True(t, table.ActiveFrame().Has("O2 Consumption"))
	assert.False(t, table.ActiveFrame().Has("VO2"))
}

func TestCloneIsIndependent(t *testing.T) {
	table := makeTable(t, []string{"A1", "A2"}, 3)
	clone := table.Clone()

	clone.ExcludeAnimals(map[string]struct{}{"A2": {}})

	assert.Equal(t, 6, table.ActiveFrame().NumRows())
	assert.Equal(t, 3, clone.ActiveFrame().NumRows())
}
