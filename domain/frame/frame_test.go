package frame

import (
	"errors"
	"testing"

	"phenolab/domain/colony"
	"phenolab/domain/core"
)

func TestNewRejectsLengthMismatch(t *testing.T) {
	_, err := New(
		NewFloat("VO2", []float64{1, 2, 3}),
		NewCategorical("Animal", []string{"A1", "A2"}),
	)
	if err == nil {
		t.Fatal("Expected error for mismatched column lengths, got none")
	}
	if !errors.Is(err, core.ErrLengthMismatch) {
		t.Errorf("Expected ErrLengthMismatch, got %v", err)
	}
}

func TestSelectMissingColumn(t *testing.T) {
	f, _ := New(NewFloat("VO2", []float64{1, 2}))
	_, err := f.Select("VCO2")
	if !errors.Is(err, core.ErrMissingColumn) {
		t.Errorf("Expected ErrMissingColumn, got %v", err)
	}
}

func TestTakeProducesDenseIndependentFrame(t *testing.T) {
	f, _ := New(
		NewCategorical("Animal", []string{"A1", "A2", "A1", "A2"}),
		NewFloat("VO2", []float64{10, 20, 30, 40}),
	)

	sub := f.Take([]int{1, 3})
	if sub.NumRows() != 2 {
		t.Fatalf("Expected 2 rows, got %d", sub.NumRows())
	}

	vo2, _ := sub.Float("VO2")
	if vo2.Values[0] != 20 || vo2.Values[1] != 40 {
		t.Errorf("Expected rows [20 40], got %v", vo2.Values)
	}

	// Mutating the slice must not affect the source frame
	vo2.Values[0] = -1
	orig, _ := f.Float("VO2")
	if orig.Values[1] != 20 {
		t.Errorf("Take aliased source storage: source row changed to %v", orig.Values[1])
	}
}

func TestCloneIndependence(t *testing.T) {
	f, _ := New(
		NewCategorical("Animal", []string{"A1", "A2"}),
		NewFloat("VO2", []float64{10, 20}),
	)

	c := f.Clone()
	cv, _ := c.Float("VO2")
	cv.Values[0] = 99
	ca, _ := c.Categorical("Animal")
	ca.RenameLevel("A1", "B1")

	ov, _ := f.Float("VO2")
	if ov.Values[0] != 10 {
		t.Errorf("Clone aliased float storage: %v", ov.Values[0])
	}
	oa, _ := f.Categorical("Animal")
	if v, _ := oa.Value(0); v != "A1" {
		t.Errorf("Clone aliased categorical levels: %v", v)
	}
}

func TestRemoveUnusedLevels(t *testing.T) {
	s := NewCategoricalWithLevels("Animal",
		[]string{"A1", "A3", "A1"},
		[]string{"A1", "A2", "A3"})

	s.RemoveUnusedLevels()

	levels := s.Levels()
	if len(levels) != 2 || levels[0] != "A1" || levels[1] != "A3" {
		t.Errorf("Expected surviving levels [A1 A3], got %v", levels)
	}
	if v, ok := s.Value(1); !ok || v != "A3" {
		t.Errorf("Re-coding broke values: got %q ok=%v", v, ok)
	}
}

func TestCategoricalNullForUnknownValue(t *testing.T) {
	s := NewCategoricalWithLevels("Group", []string{"Ctrl", "Sham"}, []string{"Ctrl", "Treat"})
	if _, ok := s.Value(1); ok {
		t.Error("Expected value outside the level set to be null")
	}
	if _, ok := s.Value(0); !ok {
		t.Error("Expected value inside the level set to be non-null")
	}
}

func TestGroupByPreservesOrderAndKeepsNullGroup(t *testing.T) {
	codes := []int{0, NullCode, 1, 0, NullCode}
	f, _ := New(
		NewCategoricalFromCodes("Bin", codes, []string{"Phase1", "Phase2"}),
		NewFloat("VO2", []float64{1, 2, 3, 4, 5}),
	)

	groups, err := f.GroupBy("Bin")
	if err != nil {
		t.Fatalf("GroupBy failed: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("Expected 3 groups (Phase1, null, Phase2), got %d", len(groups))
	}
	if groups[1].First != 1 || len(groups[1].Rows) != 2 {
		t.Errorf("Null group should contain rows 1 and 4, got %v", groups[1].Rows)
	}
}

func TestGroupByMissingKeyColumn(t *testing.T) {
	f, _ := New(NewFloat("VO2", []float64{1}))
	_, err := f.GroupBy("Bin")
	if !errors.Is(err, core.ErrMissingColumn) {
		t.Errorf("Expected ErrMissingColumn, got %v", err)
	}
}

func TestReducePolicies(t *testing.T) {
	values := []float64{4, 1, 3, 2}

	tests := []struct {
		agg      colony.Aggregation
		expected float64
	}{
		{colony.AggMean, 2.5},
		{colony.AggMedian, 2.5},
		{colony.AggSum, 10},
		{colony.AggMin, 1},
		{colony.AggMax, 4},
	}

	for _, test := range tests {
		got, ok := Reduce(values, test.agg)
		if !ok {
			t.Errorf("Reduce(%s) reported no value", test.agg)
		}
		if got != test.expected {
			t.Errorf("Reduce(%s): expected %v, got %v", test.agg, test.expected, got)
		}
	}

	if _, ok := Reduce(nil, colony.AggMean); ok {
		t.Error("Reduce of empty slice should report no value")
	}
}

func TestReduceRowsSkipsNulls(t *testing.T) {
	s := NewFloatWithValid("VO2", []float64{10, 0, 30}, []bool{true, false, true})
	got, ok := ReduceRows(s, []int{0, 1, 2}, colony.AggMean)
	if !ok || got != 20 {
		t.Errorf("Expected mean 20 over valid cells, got %v ok=%v", got, ok)
	}
}
