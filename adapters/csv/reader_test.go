package csv

import (
	"strings"
	"testing"
	"time"

	"phenolab/domain/colony"
	"phenolab/domain/core"
)

const sample = `Animal,DateTime,VO2,RER
A1,2024-03-01 00:00:00,310.5,0.82
A1,2024-03-01 00:30:00,295.0,0.80
A2,2024-03-01 00:10:00,410.2,
A2,2024-03-01 00:40:00,402.9,0.91
`

func TestReadBuildsTableAndRegistries(t *testing.T) {
	result, err := NewReader().Read(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if result.Table.NumRows() != 4 {
		t.Errorf("Expected 4 rows, got %d", result.Table.NumRows())
	}
	for _, col := range []string{colony.ColAnimal, colony.ColDateTime, colony.ColTimedelta, "VO2", "RER"} {
		if !result.Table.Has(col) {
			t.Errorf("Expected column %q", col)
		}
	}
	if len(result.Animals) != 2 {
		t.Errorf("Expected 2 animals, got %d", len(result.Animals))
	}
	if len(result.Variables) != 2 {
		t.Errorf("Expected 2 variables, got %d", len(result.Variables))
	}
	if result.SamplingInterval != 30*time.Minute {
		t.Errorf("Expected 30m sampling interval, got %s", result.SamplingInterval)
	}
}

func TestReadComputesPerAnimalTimedelta(t *testing.T) {
	result, err := NewReader().Read(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	deltas, err := result.Table.Duration(colony.ColTimedelta)
	if err != nil {
		t.Fatalf("Timedelta column: %v", err)
	}
	// each animal starts at zero regardless of its absolute start time
	want := []time.Duration{0, 30 * time.Minute, 0, 30 * time.Minute}
	for i, w := range want {
		if deltas.Values[i] != w {
			t.Errorf("Row %d: expected Timedelta %s, got %s", i, w, deltas.Values[i])
		}
	}
}

func TestReadMarksEmptyCellsNull(t *testing.T) {
	result, err := NewReader().Read(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	rer, err := result.Table.Float("RER")
	if err != nil {
		t.Fatalf("RER column: %v", err)
	}
	if rer.Valid[2] {
		t.Error("Expected empty RER cell to be null")
	}
	if !rer.Valid[0] || !rer.Valid[3] {
		t.Error("Expected populated RER cells to be valid")
	}
}

func TestReadRejectsMissingContract(t *testing.T) {
	input := "Animal,VO2\nA1,300\n"

	_, err := NewReader().Read(strings.NewReader(input))
	if !core.IsStructuralError(err) {
		t.Errorf("Expected structural error for missing DateTime, got %v", err)
	}
}

func TestReadSemicolonDelimiter(t *testing.T) {
	input := "Animal;DateTime;VO2\nA1;2024-03-01 00:00:00;300\n"
	rd := NewReader()
	rd.Delimiter = ';'

	result, err := rd.Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if result.Table.NumRows() != 1 {
		t.Errorf("Expected 1 row, got %d", result.Table.NumRows())
	}
}

func TestReadRecomputesDerivedColumns(t *testing.T) {
	input := "Animal,DateTime,Timedelta,Bin,VO2\nA1,2024-03-01 00:00:00,99h,7,300\n"

	result, err := NewReader().Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if result.Table.Has(colony.ColBin) {
		t.Error("Expected Bin column from a re-exported file to be discarded")
	}
	deltas, err := result.Table.Duration(colony.ColTimedelta)
	if err != nil {
		t.Fatalf("Timedelta column: %v", err)
	}
	if deltas.Values[0] != 0 {
		t.Errorf("Expected recomputed Timedelta 0, got %s", deltas.Values[0])
	}
}

func TestReadKeepsBoxAsCategory(t *testing.T) {
	input := "Animal,Box,DateTime,VO2\nA1,3,2024-03-01 00:00:00,300\nA2,4,2024-03-01 00:00:00,310\n"

	result, err := NewReader().Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	box, err := result.Table.Categorical(colony.ColBox)
	if err != nil {
		t.Fatalf("Box column: %v", err)
	}
	if got := box.Levels(); len(got) != 2 {
		t.Errorf("Expected 2 box levels, got %v", got)
	}
	if _, ok := result.Variables[colony.ColBox]; ok {
		t.Error("Box must not appear in the variable dictionary")
	}
}

func TestSamplingIntervalTieBreaksToSmallerGap(t *testing.T) {
	// one 30m gap and one 45m gap: equally common, smaller one wins
	input := "Animal,DateTime,VO2\n" +
		"A1,2024-03-01 00:00:00,300\n" +
		"A1,2024-03-01 00:30:00,301\n" +
		"A1,2024-03-01 01:15:00,302\n"

	for i := 0; i < 20; i++ {
		result, err := NewReader().Read(strings.NewReader(input))
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if result.SamplingInterval != 30*time.Minute {
			t.Fatalf("Expected 30m sampling interval, got %s", result.SamplingInterval)
		}
	}
}
