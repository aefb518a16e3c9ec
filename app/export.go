package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"phenolab/domain/core"
	"phenolab/internal"
	"phenolab/ports"
)

// ExportService writes the pipeline output of every table in a dataset
// through a FrameWriter. Tables export concurrently with a bounded worker
// count because workbook writers buffer whole sheets in memory.
type ExportService struct {
	hub      *DataHub
	log      *internal.Logger
	parallel int64
}

func NewExportService(hub *DataHub, log *internal.Logger, parallel int) *ExportService {
	if parallel < 1 {
		parallel = 1
	}
	return &ExportService{
		hub:      hub,
		log:      log.WithPrefix("export"),
		parallel: int64(parallel),
	}
}

// ExportDataset runs the configured pipeline over every table of the
// dataset and hands each result to the writer under the table's name.
// The first failure cancels the remaining exports.
func (s *ExportService) ExportDataset(ctx context.Context, id core.DatasetID, q AnalysisQuery, w ports.FrameWriter) error {
	ds, err := s.hub.Dataset(id)
	if err != nil {
		return err
	}

	sem := semaphore.NewWeighted(s.parallel)
	g, ctx := errgroup.WithContext(ctx)

	for _, table := range ds.Tables() {
		table := table
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			tq := q
			tq.DatasetID = ds.ID
			tq.Table = table.Name
			f, err := s.hub.GetDataTableFrame(tq)
			if err != nil {
				return fmt.Errorf("export %q: %w", table.Name, err)
			}
			if err := w.WriteFrame(table.Name, f); err != nil {
				return fmt.Errorf("export %q: %w", table.Name, err)
			}
			s.log.Debug("exported table %q (%d rows)", table.Name, f.NumRows())
			return nil
		})
	}
	return g.Wait()
}
