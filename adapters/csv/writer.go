package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"phenolab/domain/frame"
)

// Writer streams frames as delimiter-separated text. It satisfies
// ports.FrameWriter; with more than one table the name is prefixed to each
// row so a single stream stays unambiguous.
type Writer struct {
	w          io.Writer
	Delimiter  rune
	TimeLayout string
	withName   bool
	tables     int
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, Delimiter: ',', TimeLayout: "2006-01-02 15:04:05"}
}

// WriteFrame appends one table to the stream
func (wr *Writer) WriteFrame(name string, f *frame.Frame) error {
	cw := csv.NewWriter(wr.w)
	cw.Comma = wr.Delimiter

	wr.tables++
	wr.withName = wr.tables > 1 || name != ""

	header := f.Names()
	if wr.withName {
		header = append([]string{"Table"}, header...)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("csv export %q: %w", name, err)
	}

	cols := f.Columns()
	record := make([]string, 0, len(header))
	for i := 0; i < f.NumRows(); i++ {
		record = record[:0]
		if wr.withName {
			record = append(record, name)
		}
		for _, col := range cols {
			record = append(record, wr.cell(col, i))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("csv export %q: %w", name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (wr *Writer) cell(col frame.Series, i int) string {
	v, ok := col.At(i)
	if !ok {
		return ""
	}
	switch val := v.(type) {
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case int:
		return strconv.Itoa(val)
	case string:
		return val
	case time.Time:
		return val.Format(wr.TimeLayout)
	case time.Duration:
		return val.String()
	default:
		return fmt.Sprint(v)
	}
}
