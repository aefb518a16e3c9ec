package app

import (
	"fmt"
	"sync"

	"phenolab/adapters/pipeline"
	"phenolab/domain/binning"
	"phenolab/domain/colony"
	"phenolab/domain/core"
	"phenolab/domain/frame"
	"phenolab/internal"
	"phenolab/internal/events"
)

// AnalysisQuery carries the full context of one accessor call. There is no
// ambient "current selection" singleton: every consumer states explicitly
// which dataset, table, columns and split it wants.
type AnalysisQuery struct {
	DatasetID core.DatasetID
	Table     string   // empty selects the main table
	Columns   []string // empty selects all columns
	SplitMode colony.SplitMode
	Factor    string // selected factor column for SplitByFactor
	Variable  string // variable of interest for plot accessors
	AnimalID  string // subject for the single-animal accessor
}

// DataHub orchestrates the operator pipeline for every consumer use case
// and owns the dataset registry. Configuration changes mutate stored
// settings and emit a change notification; recomputation happens lazily on
// the next accessor call.
//
// The pipeline itself is synchronous and lock-free; the hub's mutex only
// guards the dataset registry against concurrent accessor calls from the
// HTTP surface.
type DataHub struct {
	mu     sync.RWMutex
	log    *internal.Logger
	events *events.Hub

	datasets map[core.DatasetID]*Dataset
	order    []core.DatasetID
	selected core.DatasetID
}

// NewDataHub creates an empty hub
func NewDataHub(log *internal.Logger, hub *events.Hub) *DataHub {
	if log == nil {
		log = internal.NewDefaultLogger()
	}
	if hub == nil {
		hub = events.NewHub()
	}
	return &DataHub{
		log:      log.WithPrefix("datahub"),
		events:   hub,
		datasets: make(map[core.DatasetID]*Dataset),
	}
}

// Events exposes the hub's notification channel registry
func (h *DataHub) Events() *events.Hub { return h.events }

// AddDataset registers a dataset; the first one becomes the selection
func (h *DataHub) AddDataset(ds *Dataset) {
	h.mu.Lock()
	h.datasets[ds.ID] = ds
	h.order = append(h.order, ds.ID)
	if h.selected == "" {
		h.selected = ds.ID
	}
	h.mu.Unlock()

	h.log.Info("dataset %s registered (%d animals, %d tables)",
		ds.Name, len(ds.Animals), len(ds.Tables()))
	h.events.Publish(events.DatasetChanged, ds.ID)
}

// RemoveDataset drops a dataset from the hub
func (h *DataHub) RemoveDataset(id core.DatasetID) {
	h.mu.Lock()
	delete(h.datasets, id)
	for i, d := range h.order {
		if d == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	if h.selected == id {
		h.selected = ""
		if len(h.order) > 0 {
			h.selected = h.order[0]
		}
	}
	h.mu.Unlock()

	h.events.Publish(events.DatasetChanged, id)
}

// Dataset returns a dataset by id
func (h *DataHub) Dataset(id core.DatasetID) (*Dataset, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.datasetLocked(id)
}

func (h *DataHub) datasetLocked(id core.DatasetID) (*Dataset, error) {
	if id == "" {
		id = h.selected
	}
	ds, ok := h.datasets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrDatasetNotFound, id)
	}
	return ds, nil
}

// Datasets returns the registered datasets in registration order
func (h *DataHub) Datasets() []*Dataset {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Dataset, 0, len(h.order))
	for _, id := range h.order {
		out = append(out, h.datasets[id])
	}
	return out
}

// SetSelectedDataset changes the default dataset for queries that leave
// DatasetID empty
func (h *DataHub) SetSelectedDataset(id core.DatasetID) error {
	h.mu.Lock()
	if _, ok := h.datasets[id]; !ok {
		h.mu.Unlock()
		return fmt.Errorf("%w: %s", core.ErrDatasetNotFound, id)
	}
	h.selected = id
	h.mu.Unlock()

	h.events.Publish(events.DatasetChanged, id)
	return nil
}

// ApplyBinning replaces a dataset's binning settings
func (h *DataHub) ApplyBinning(id core.DatasetID, settings binning.Settings) error {
	h.mu.Lock()
	ds, err := h.datasetLocked(id)
	if err != nil {
		h.mu.Unlock()
		return err
	}
	ds.Binning = settings
	h.mu.Unlock()

	h.events.Publish(events.BinningChanged, ds.ID)
	return nil
}

// ApplyOutliers replaces a dataset's outlier settings
func (h *DataHub) ApplyOutliers(id core.DatasetID, settings binning.OutliersSettings) error {
	h.mu.Lock()
	ds, err := h.datasetLocked(id)
	if err != nil {
		h.mu.Unlock()
		return err
	}
	ds.Outliers = settings
	h.mu.Unlock()

	h.events.Publish(events.DataChanged, ds.ID)
	return nil
}

// RenameAnimal renames an animal across the dataset
func (h *DataHub) RenameAnimal(id core.DatasetID, oldID, newID string) error {
	h.mu.Lock()
	ds, err := h.datasetLocked(id)
	if err != nil {
		h.mu.Unlock()
		return err
	}
	if err := ds.RenameAnimal(oldID, newID); err != nil {
		h.mu.Unlock()
		return err
	}
	h.mu.Unlock()

	h.events.Publish(events.DataChanged, ds.ID)
	return nil
}

// ExcludeAnimals removes animals and their rows across the dataset
func (h *DataHub) ExcludeAnimals(id core.DatasetID, ids map[string]struct{}) error {
	h.mu.Lock()
	ds, err := h.datasetLocked(id)
	if err != nil {
		h.mu.Unlock()
		return err
	}
	ds.ExcludeAnimals(ids)
	h.mu.Unlock()

	h.events.Publish(events.DataChanged, ds.ID)
	return nil
}

// SetAnimalEnabled toggles an animal's inclusion in pipeline output
func (h *DataHub) SetAnimalEnabled(id core.DatasetID, animalID string, enabled bool) error {
	h.mu.Lock()
	ds, err := h.datasetLocked(id)
	if err != nil {
		h.mu.Unlock()
		return err
	}
	if err := ds.SetAnimalEnabled(animalID, enabled); err != nil {
		h.mu.Unlock()
		return err
	}
	h.mu.Unlock()

	h.events.Publish(events.DataChanged, ds.ID)
	return nil
}

// SetFactors replaces a dataset's factor registry
func (h *DataHub) SetFactors(id core.DatasetID, factors map[string]*colony.Factor) error {
	h.mu.Lock()
	ds, err := h.datasetLocked(id)
	if err != nil {
		h.mu.Unlock()
		return err
	}
	if err := ds.SetFactors(factors); err != nil {
		h.mu.Unlock()
		return err
	}
	h.mu.Unlock()

	h.events.Publish(events.DataChanged, ds.ID)
	return nil
}

// ----------------------------------------------------------------------------
// Accessors
// ----------------------------------------------------------------------------

// GetCurrentFrame runs the full configured pipeline: projection, animal
// filter, outlier removal, the active binning operator, then splitting.
// With binning disabled the table is unbinned and the split mode is
// ignored (splitting operates on binned tables only).
func (h *DataHub) GetCurrentFrame(q AnalysisQuery) (*frame.Frame, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ds, err := h.datasetLocked(q.DatasetID)
	if err != nil {
		return nil, err
	}
	return h.runPipeline("current", ds, q, q.Columns, ds.Binning)
}

// GetDataTableFrame is the table-view accessor: every column of the
// selected datatable through the configured pipeline
func (h *DataHub) GetDataTableFrame(q AnalysisQuery) (*frame.Frame, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ds, err := h.datasetLocked(q.DatasetID)
	if err != nil {
		return nil, err
	}
	return h.runPipeline("data table", ds, q, nil, ds.Binning)
}

// GetTimelinePlotFrame serves the raw-series plot: one variable over
// absolute time, animal-filtered and outlier-filtered but never binned
func (h *DataHub) GetTimelinePlotFrame(q AnalysisQuery) (*frame.Frame, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ds, err := h.datasetLocked(q.DatasetID)
	if err != nil {
		return nil, err
	}
	if q.Variable == "" {
		return nil, fmt.Errorf("timeline accessor: %w", core.ErrVariableNotFound)
	}
	columns := []string{colony.ColAnimal, colony.ColDateTime, colony.ColTimedelta, q.Variable}

	disabled := ds.Binning
	disabled.Apply = false
	q.SplitMode = colony.SplitByAnimal
	return h.runPipeline("timeline plot", ds, q, columns, disabled)
}

// GetBarPlotFrame serves categorical-bin bar charts through the configured
// pipeline and splitting
func (h *DataHub) GetBarPlotFrame(q AnalysisQuery) (*frame.Frame, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ds, err := h.datasetLocked(q.DatasetID)
	if err != nil {
		return nil, err
	}
	var columns []string
	if q.Variable != "" {
		columns = []string{colony.ColAnimal, colony.ColDateTime, colony.ColTimedelta, q.Variable}
	}
	return h.runPipeline("bar plot", ds, q, columns, ds.Binning)
}

// GetAnovaFrame produces statistical-test input: one row per animal-day,
// binned daily over the whole recording regardless of the user's binning
// settings, never split across animals
func (h *DataHub) GetAnovaFrame(q AnalysisQuery) (*frame.Frame, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ds, err := h.datasetLocked(q.DatasetID)
	if err != nil {
		return nil, err
	}
	if q.Variable == "" {
		return nil, fmt.Errorf("anova accessor: %w", core.ErrVariableNotFound)
	}
	columns := []string{colony.ColAnimal, colony.ColDateTime, colony.ColTimedelta, q.Variable}

	forced := ds.Binning
	forced.Apply = true
	forced.Mode = binning.ModeIntervals
	forced.Intervals = binning.IntervalsSettings{Unit: binning.UnitDay, Delta: 1}
	q.SplitMode = colony.SplitByAnimal
	return h.runPipeline("anova", ds, q, columns, forced)
}

// GetTimeseriesFrame serves a single animal's raw series for one variable
func (h *DataHub) GetTimeseriesFrame(q AnalysisQuery) (*frame.Frame, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ds, err := h.datasetLocked(q.DatasetID)
	if err != nil {
		return nil, err
	}
	if q.Variable == "" {
		return nil, fmt.Errorf("timeseries accessor: %w", core.ErrVariableNotFound)
	}
	if q.AnimalID == "" {
		return nil, core.NewNotFoundError("animal", "(none selected)")
	}

	columns := []string{colony.ColAnimal, colony.ColDateTime, colony.ColTimedelta, q.Variable}
	disabled := ds.Binning
	disabled.Apply = false
	q.SplitMode = colony.SplitByAnimal
	f, err := h.runPipeline("timeseries", ds, q, columns, disabled)
	if err != nil {
		return nil, err
	}

	animalCol, err := f.Categorical(colony.ColAnimal)
	if err != nil {
		return nil, err
	}
	return f.Filter(func(i int) bool {
		id, ok := animalCol.Value(i)
		return ok && id == q.AnimalID
	}), nil
}

// withSplitKeys widens a column projection so the requested split mode's
// key columns survive it. Absent columns are left out: the splitting
// operator owns the error for a bad selection.
func withSplitKeys(columns []string, q AnalysisQuery, table *Datatable) []string {
	if len(columns) == 0 {
		return columns
	}
	var keys []string
	switch q.SplitMode {
	case colony.SplitByFactor:
		if q.Factor != "" {
			keys = append(keys, q.Factor)
		}
	case colony.SplitByRun:
		keys = append(keys, colony.ColRun)
	}
	for _, key := range keys {
		if !table.ActiveFrame().Has(key) {
			continue
		}
		present := false
		for _, c := range columns {
			if c == key {
				present = true
				break
			}
		}
		if !present {
			columns = append(columns, key)
		}
	}
	return columns
}

// runPipeline composes the operators in their fixed order. Errors are
// wrapped with the accessor and stage so the UI can present an actionable
// message.
func (h *DataHub) runPipeline(accessor string, ds *Dataset, q AnalysisQuery, columns []string, cfg binning.Settings) (*frame.Frame, error) {
	table, err := ds.Table(q.Table)
	if err != nil {
		return nil, fmt.Errorf("%s accessor: %w", accessor, err)
	}

	columns = withSplitKeys(columns, q, table)
	f, err := table.FilteredFrame(columns, ds.Animals)
	if err != nil {
		return nil, fmt.Errorf("%s accessor, animal filter: %w", accessor, err)
	}

	f, err = pipeline.ProcessOutliers(f, ds.Outliers, table.Variables)
	if err != nil {
		return nil, fmt.Errorf("%s accessor, outlier removal: %w", accessor, err)
	}

	if !cfg.Apply {
		return f, nil
	}

	switch cfg.Mode {
	case binning.ModeIntervals:
		f, err = pipeline.BinByIntervals(f, cfg.Intervals, table.Variables)
	case binning.ModeCycles:
		f, err = pipeline.BinByCycles(f, cfg.Cycles, table.Variables)
	case binning.ModePhases:
		f, err = pipeline.BinByPhases(f, cfg.Phases, table.Variables)
	default:
		err = core.ErrUnknownBinningMode
	}
	if err != nil {
		return nil, fmt.Errorf("%s accessor, %s binning: %w", accessor, cfg.Mode, err)
	}

	mode := q.SplitMode
	if mode == "" {
		mode = colony.SplitByAnimal
	}
	f, err = pipeline.SplitByGroups(f, table.Variables, mode, q.Factor)
	if err != nil {
		return nil, fmt.Errorf("%s accessor, splitting: %w", accessor, err)
	}
	return f, nil
}
