// Package csv imports raw calorimetry exports. The expected layout is one
// sample per row: an Animal column, an absolute DateTime column, and one
// numeric column per measured variable. Timedelta is derived per animal
// from the first sample.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"phenolab/domain/colony"
	"phenolab/domain/core"
	"phenolab/domain/frame"
	"phenolab/ports"
)

// Reader implements ports.TableReader for delimiter-separated text
type Reader struct {
	Delimiter  rune
	TimeLayout string
}

// NewReader uses comma and RFC3339-like "2006-01-02 15:04:05" defaults
func NewReader() *Reader {
	return &Reader{Delimiter: ',', TimeLayout: "2006-01-02 15:04:05"}
}

// Read parses the full input into an ImportResult
func (rd *Reader) Read(r io.Reader) (*ports.ImportResult, error) {
	cr := csv.NewReader(r)
	cr.Comma = rd.Delimiter
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("csv import: read header: %w", err)
	}

	animalIdx, dtIdx, boxIdx := -1, -1, -1
	var varNames []string
	varIdx := make(map[string]int)
	for i, name := range header {
		name = strings.TrimSpace(name)
		header[i] = name
		switch name {
		case colony.ColAnimal:
			animalIdx = i
		case colony.ColDateTime:
			dtIdx = i
		case colony.ColBox:
			boxIdx = i
		case colony.ColTimedelta, colony.ColBin:
			// derived columns in re-exported files are recomputed, not trusted
		default:
			varNames = append(varNames, name)
			varIdx[name] = i
		}
	}
	if animalIdx < 0 {
		return nil, core.NewMissingColumnError("csv import", colony.ColAnimal)
	}
	if dtIdx < 0 {
		return nil, core.NewMissingColumnError("csv import", colony.ColDateTime)
	}

	var (
		animalIDs []string
		boxes     []string
		datetimes []time.Time
		values    = make(map[string][]float64, len(varNames))
		valid     = make(map[string][]bool, len(varNames))
	)
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv import: line %d: %w", line+1, err)
		}
		line++

		ts, err := time.Parse(rd.TimeLayout, strings.TrimSpace(record[dtIdx]))
		if err != nil {
			return nil, fmt.Errorf("csv import: line %d: %s: %w", line, colony.ColDateTime, err)
		}
		animalIDs = append(animalIDs, strings.TrimSpace(record[animalIdx]))
		datetimes = append(datetimes, ts)
		if boxIdx >= 0 {
			boxes = append(boxes, strings.TrimSpace(record[boxIdx]))
		}

		for _, name := range varNames {
			cell := strings.TrimSpace(record[varIdx[name]])
			if cell == "" {
				values[name] = append(values[name], 0)
				valid[name] = append(valid[name], false)
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("csv import: line %d: %s: %w", line, name, err)
			}
			values[name] = append(values[name], v)
			valid[name] = append(valid[name], true)
		}
	}
	if len(animalIDs) == 0 {
		return nil, fmt.Errorf("csv import: no data rows")
	}

	deltas := timedeltas(animalIDs, datetimes)

	cols := []frame.Series{
		frame.NewCategorical(colony.ColAnimal, animalIDs),
		frame.NewTime(colony.ColDateTime, datetimes),
		frame.NewDuration(colony.ColTimedelta, deltas),
	}
	if boxIdx >= 0 {
		cols = append(cols, frame.NewCategorical(colony.ColBox, boxes))
	}
	for _, name := range varNames {
		cols = append(cols, frame.NewFloatWithValid(name, values[name], valid[name]))
	}
	table, err := frame.New(cols...)
	if err != nil {
		return nil, fmt.Errorf("csv import: %w", err)
	}

	animals := make(map[string]*colony.Animal)
	for _, id := range animalIDs {
		if _, ok := animals[id]; !ok {
			animals[id] = colony.NewAnimal(id)
		}
	}
	variables := make(map[string]*colony.Variable, len(varNames))
	for _, name := range varNames {
		variables[name] = &colony.Variable{Name: name, Aggregation: colony.AggMean}
	}

	return &ports.ImportResult{
		Table:            table,
		Animals:          animals,
		Variables:        variables,
		SamplingInterval: samplingInterval(animalIDs, datetimes),
	}, nil
}

// timedeltas measures each sample against its animal's first sample
func timedeltas(animalIDs []string, datetimes []time.Time) []time.Duration {
	first := make(map[string]time.Time)
	deltas := make([]time.Duration, len(animalIDs))
	for i, id := range animalIDs {
		start, ok := first[id]
		if !ok {
			start = datetimes[i]
			first[id] = start
		}
		deltas[i] = datetimes[i].Sub(start)
	}
	return deltas
}

// samplingInterval reports the most common gap between consecutive samples
// of the same animal
func samplingInterval(animalIDs []string, datetimes []time.Time) time.Duration {
	last := make(map[string]time.Time)
	counts := make(map[time.Duration]int)
	for i, id := range animalIDs {
		if prev, ok := last[id]; ok {
			counts[datetimes[i].Sub(prev)]++
		}
		last[id] = datetimes[i]
	}
	// ties break toward the smaller gap so the result does not depend on
	// map iteration order
	var best time.Duration
	for gap, n := range counts {
		if gap <= 0 {
			continue
		}
		switch {
		case best == 0, n > counts[best]:
			best = gap
		case n == counts[best] && gap < best:
			best = gap
		}
	}
	return best
}
