package api

import (
	"time"

	"phenolab/domain/frame"
)

// FramePayload is the column-oriented wire form of a frame
type FramePayload struct {
	Columns []ColumnPayload `json:"columns"`
	Rows    int             `json:"rows"`
}

type ColumnPayload struct {
	Name   string        `json:"name"`
	Kind   string        `json:"kind"`
	Values []interface{} `json:"values"`
	Levels []string      `json:"levels,omitempty"`
}

// encodeFrame renders a frame column-major. Null cells encode as JSON
// null; times as RFC 3339, durations as seconds.
func encodeFrame(f *frame.Frame) FramePayload {
	payload := FramePayload{Rows: f.NumRows()}
	for _, col := range f.Columns() {
		cp := ColumnPayload{
			Name:   col.Name(),
			Kind:   col.Kind().String(),
			Values: make([]interface{}, col.Len()),
		}
		if cat, ok := col.(*frame.CategoricalSeries); ok {
			cp.Levels = cat.Levels()
		}
		for i := 0; i < col.Len(); i++ {
			v, ok := col.At(i)
			if !ok {
				continue
			}
			switch val := v.(type) {
			case time.Time:
				cp.Values[i] = val.Format(time.RFC3339)
			case time.Duration:
				cp.Values[i] = val.Seconds()
			default:
				cp.Values[i] = val
			}
		}
		payload.Columns = append(payload.Columns, cp)
	}
	return payload
}
