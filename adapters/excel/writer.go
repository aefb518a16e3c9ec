// Package excel writes pipeline output as an .xlsx workbook, one worksheet
// per exported table.
package excel

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"phenolab/domain/frame"
)

// WorkbookWriter implements ports.FrameWriter. WriteFrame calls may arrive
// concurrently from the export worker pool; excelize files are not safe
// for concurrent mutation so a mutex serializes sheet writes.
type WorkbookWriter struct {
	mu         sync.Mutex
	file       *excelize.File
	TimeLayout string
	sheets     int
}

func NewWorkbookWriter() *WorkbookWriter {
	return &WorkbookWriter{
		file:       excelize.NewFile(),
		TimeLayout: "2006-01-02 15:04:05",
	}
}

// WriteFrame adds one worksheet named after the table
func (w *WorkbookWriter) WriteFrame(name string, f *frame.Frame) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if name == "" {
		name = fmt.Sprintf("Table%d", w.sheets+1)
	}
	// Sheet names cap at 31 chars in the xlsx format
	if len(name) > 31 {
		name = name[:31]
	}

	var err error
	if w.sheets == 0 {
		err = w.file.SetSheetName(w.file.GetSheetName(0), name)
	} else {
		_, err = w.file.NewSheet(name)
	}
	if err != nil {
		return fmt.Errorf("excel export: sheet %q: %w", name, err)
	}
	w.sheets++

	header := make([]interface{}, 0, f.NumCols())
	for _, n := range f.Names() {
		header = append(header, n)
	}
	if err := w.setRow(name, 1, header); err != nil {
		return err
	}

	cols := f.Columns()
	for i := 0; i < f.NumRows(); i++ {
		row := make([]interface{}, len(cols))
		for j, col := range cols {
			row[j] = w.cell(col, i)
		}
		if err := w.setRow(name, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (w *WorkbookWriter) setRow(sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("excel export: %w", err)
	}
	if err := w.file.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("excel export: sheet %q row %d: %w", sheet, row, err)
	}
	return nil
}

func (w *WorkbookWriter) cell(col frame.Series, i int) interface{} {
	v, ok := col.At(i)
	if !ok {
		return nil
	}
	switch val := v.(type) {
	case time.Time:
		return val.Format(w.TimeLayout)
	case time.Duration:
		return val.String()
	default:
		return val
	}
}

// Save writes the workbook to w
func (w *WorkbookWriter) Save(out io.Writer) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.file.Write(out); err != nil {
		return fmt.Errorf("excel export: write workbook: %w", err)
	}
	return w.file.Close()
}
