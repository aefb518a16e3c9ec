package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phenolab/domain/binning"
	"phenolab/domain/colony"
	"phenolab/domain/core"
	"phenolab/internal"
	"phenolab/internal/events"
)

func makeHub(t *testing.T) (*DataHub, *Dataset) {
	t.Helper()
	hub := NewDataHub(internal.NewLogger(internal.LogLevelError), events.NewHub())

	ds := NewDataset("cohort-12", makeAnimals("A1", "A2", "A3"))
	ds.AddTable(makeTable(t, []string{"A1", "A2", "A3"}, 4))
	hub.AddDataset(ds)
	return hub, ds
}

func TestAddDatasetSelectsFirst(t *testing.T) {
	hub, ds := makeHub(t)

	got, err := hub.Dataset("")
	require.NoError(t, err)
	assert.Equal(t, ds.ID, got.ID)
}

func TestDatasetNotFound(t *testing.T) {
	hub, _ := makeHub(t)

	_, err := hub.Dataset(core.DatasetID("missing"))
	assert.ErrorIs(t, err, core.ErrDatasetNotFound)
}

func TestRemoveDatasetAdvancesSelection(t *testing.T) {
	hub, first := makeHub(t)
	second := NewDataset("cohort-13", makeAnimals("B1"))
	second.AddTable(makeTable(t, []string{"B1"}, 2))
	hub.AddDataset(second)

	hub.RemoveDataset(first.ID)

	got, err := hub.Dataset("")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
}

func TestGetCurrentFrameUnbinnedPassthrough(t *testing.T) {
	hub, ds := makeHub(t)

	f, err := hub.GetCurrentFrame(AnalysisQuery{DatasetID: ds.ID})
	require.NoError(t, err)
	assert.Equal(t, 12, f.NumRows())
	assert.False(t, f.Has(colony.ColBin))
}

func TestGetCurrentFrameRespectsDisabledAnimals(t *testing.T) {
	hub, ds := makeHub(t)
	require.NoError(t, hub.SetAnimalEnabled(ds.ID, "A3", false))

	f, err := hub.GetCurrentFrame(AnalysisQuery{DatasetID: ds.ID})
	require.NoError(t, err)
	assert.Equal(t, 8, f.NumRows())

	animalCol, err := f.Categorical(colony.ColAnimal)
	require.NoError(t, err)
	assert.NotContains(t, animalCol.Levels(), "A3")
}

func TestGetCurrentFrameIntervalBinning(t *testing.T) {
	hub, ds := makeHub(t)
	require.NoError(t, hub.ApplyBinning(ds.ID, binning.Settings{
		Apply:     true,
		Mode:      binning.ModeIntervals,
		Intervals: binning.IntervalsSettings{Unit: binning.UnitHour, Delta: 2},
	}))

	f, err := hub.GetCurrentFrame(AnalysisQuery{DatasetID: ds.ID})
	require.NoError(t, err)

	// 3 animals x 4 hourly samples into 2h buckets: 2 bins per animal
	assert.Equal(t, 6, f.NumRows())
	assert.True(t, f.Has(colony.ColBin))
}

func TestGetAnovaFrameForcesDailyBinning(t *testing.T) {
	hub, ds := makeHub(t)
	// user settings say cycles; the anova accessor must ignore them
	require.NoError(t, hub.ApplyBinning(ds.ID, binning.Settings{
		Apply:  true,
		Mode:   binning.ModeCycles,
		Cycles: binning.CyclesSettings{LightStart: binning.ClockTime(7 * time.Hour), DarkStart: binning.ClockTime(19 * time.Hour)},
	}))

	f, err := hub.GetAnovaFrame(AnalysisQuery{DatasetID: ds.ID, Variable: "VO2"})
	require.NoError(t, err)

	// all 4 samples per animal fall inside one day: one row per animal
	assert.Equal(t, 3, f.NumRows())
	assert.True(t, f.Has(colony.ColBin))
}

func TestGetAnovaFrameRequiresVariable(t *testing.T) {
	hub, ds := makeHub(t)

	_, err := hub.GetAnovaFrame(AnalysisQuery{DatasetID: ds.ID})
	assert.ErrorIs(t, err, core.ErrVariableNotFound)
}

func TestGetTimelinePlotFrameNeverBins(t *testing.T) {
	hub, ds := makeHub(t)
	require.NoError(t, hub.ApplyBinning(ds.ID, binning.Settings{
		Apply:     true,
		Mode:      binning.ModeIntervals,
		Intervals: binning.IntervalsSettings{Unit: binning.UnitHour, Delta: 2},
	}))

	f, err := hub.GetTimelinePlotFrame(AnalysisQuery{DatasetID: ds.ID, Variable: "VO2"})
	require.NoError(t, err)
	assert.Equal(t, 12, f.NumRows())
	assert.False(t, f.Has(colony.ColBin))
	assert.True(t, f.Has(colony.ColDateTime))
}

func TestGetTimeseriesFrameFiltersToOneAnimal(t *testing.T) {
	hub, ds := makeHub(t)

	f, err := hub.GetTimeseriesFrame(AnalysisQuery{DatasetID: ds.ID, Variable: "VO2", AnimalID: "A2"})
	require.NoError(t, err)
	assert.Equal(t, 4, f.NumRows())

	animalCol, err := f.Categorical(colony.ColAnimal)
	require.NoError(t, err)
	for i := 0; i < f.NumRows(); i++ {
		id, ok := animalCol.Value(i)
		assert.True(t, ok)
		assert.Equal(t, "A2", id)
	}
}

func TestMutatorsPublishEvents(t *testing.T) {
	hub, ds := makeHub(t)
	ch, cancel := hub.Events().Subscribe(8)
	defer cancel()

	require.NoError(t, hub.ApplyBinning(ds.ID, binning.DefaultSettings()))
	require.NoError(t, hub.RenameAnimal(ds.ID, "A1", "M1"))

	kinds := []events.Kind{(<-ch).Kind, (<-ch).Kind}
	assert.Equal(t, []events.Kind{events.BinningChanged, events.DataChanged}, kinds)
}

func TestRenameAnimalFansOutToTables(t *testing.T) {
	hub, ds := makeHub(t)

	require.NoError(t, hub.RenameAnimal(ds.ID, "A1", "M1"))

	assert.Contains(t, ds.Animals, "M1")
	assert.NotContains(t, ds.Animals, "A1")
	table, err := ds.MainTable()
	require.NoError(t, err)
	col, err := table.ActiveFrame().Categorical(colony.ColAnimal)
	require.NoError(t, err)
	assert.Contains(t, col.Levels(), "M1")
}

func TestRenameAnimalRejectsCollision(t *testing.T) {
	hub, ds := makeHub(t)

	err := hub.RenameAnimal(ds.ID, "A1", "A2")
	assert.ErrorIs(t, err, core.ErrDuplicateAnimal)

	// registry and tables untouched
	assert.Contains(t, ds.Animals, "A1")
	assert.Contains(t, ds.Animals, "A2")
	table, terr := ds.MainTable()
	require.NoError(t, terr)
	col, cerr := table.ActiveFrame().Categorical(colony.ColAnimal)
	require.NoError(t, cerr)
	assert.ElementsMatch(t, []string{"A1", "A2", "A3"}, col.Levels())
}

func TestExcludeAnimalsFansOutToTables(t *testing.T) {
	hub, ds := makeHub(t)

	require.NoError(t, hub.ExcludeAnimals(ds.ID, map[string]struct{}{"A2": {}}))

	assert.NotContains(t, ds.Animals, "A2")
	table, err := ds.MainTable()
	require.NoError(t, err)
	assert.Equal(t, 8, table.ActiveFrame().NumRows())
}

func TestSplitByFactorThroughHub(t *testing.T) {
	hub, ds := makeHub(t)
	require.NoError(t, hub.SetFactors(ds.ID, map[string]*colony.Factor{
		"Genotype": {Name: "Genotype", Levels: []colony.FactorLevel{
			{Name: "WT", AnimalIDs: []string{"A1", "A2"}},
			{Name: "KO", AnimalIDs: []string{"A3"}},
		}},
	}))
	require.NoError(t, hub.ApplyBinning(ds.ID, binning.Settings{
		Apply:     true,
		Mode:      binning.ModeIntervals,
		Intervals: binning.IntervalsSettings{Unit: binning.UnitHour, Delta: 4},
	}))

	f, err := hub.GetCurrentFrame(AnalysisQuery{
		DatasetID: ds.ID,
		SplitMode: colony.SplitByFactor,
		Factor:    "Genotype",
	})
	require.NoError(t, err)

	// one 4h bin, two factor levels
	assert.Equal(t, 2, f.NumRows())
	assert.True(t, f.Has("Genotype"))
	assert.False(t, f.Has(colony.ColAnimal))
}

func TestGetBarPlotFrameFactorSplitKeepsFactorColumn(t *testing.T) {
	hub, ds := makeHub(t)
	require.NoError(t, hub.SetFactors(ds.ID, map[string]*colony.Factor{
		"Genotype": {Name: "Genotype", Levels: []colony.FactorLevel{
			{Name: "WT", AnimalIDs: []string{"A1", "A2"}},
			{Name: "KO", AnimalIDs: []string{"A3"}},
		}},
	}))
	require.NoError(t, hub.ApplyBinning(ds.ID, binning.Settings{
		Apply:  true,
		Mode:   binning.ModeCycles,
		Cycles: binning.CyclesSettings{LightStart: binning.ClockTime(7 * time.Hour), DarkStart: binning.ClockTime(19 * time.Hour)},
	}))

	f, err := hub.GetBarPlotFrame(AnalysisQuery{
		DatasetID: ds.ID,
		Variable:  "VO2",
		SplitMode: colony.SplitByFactor,
		Factor:    "Genotype",
	})
	require.NoError(t, err)

	// fixture samples all fall in the dark window: one bin, two levels
	assert.Equal(t, 2, f.NumRows())
	assert.True(t, f.Has("Genotype"))
	assert.True(t, f.Has("VO2"))
}

func TestGetBarPlotFrameUnknownFactorStillInvalidSelection(t *testing.T) {
	hub, ds := makeHub(t)
	require.NoError(t, hub.ApplyBinning(ds.ID, binning.Settings{
		Apply:     true,
		Mode:      binning.ModeIntervals,
		Intervals: binning.IntervalsSettings{Unit: binning.UnitHour, Delta: 1},
	}))

	_, err := hub.GetBarPlotFrame(AnalysisQuery{
		DatasetID: ds.ID,
		Variable:  "VO2",
		SplitMode: colony.SplitByFactor,
		Factor:    "Missing",
	})
	assert.ErrorIs(t, err, core.ErrInvalidFactorSelection)
}

func TestApplyBinningValidation(t *testing.T) {
	hub, ds := makeHub(t)
	require.NoError(t, hub.ApplyBinning(ds.ID, binning.Settings{
		Apply:     true,
		Mode:      binning.ModeIntervals,
		Intervals: binning.IntervalsSettings{Unit: binning.UnitHour, Delta: 0},
	}))

	_, err := hub.GetCurrentFrame(AnalysisQuery{DatasetID: ds.ID})
	assert.ErrorIs(t, err, core.ErrInvalidInterval)
}
