package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"phenolab/domain/colony"
	"phenolab/domain/frame"
)

func makeFrame(t *testing.T) *frame.Frame {
	t.Helper()
	f, err := frame.New(
		frame.NewCategorical(colony.ColAnimal, []string{"A1", "A2"}),
		frame.NewTime(colony.ColDateTime, []time.Time{
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC),
		}),
		frame.NewFloat("VO2", []float64{310.5, 295}),
	)
	require.NoError(t, err)
	return f
}

func TestWriteFrameProducesReadableWorkbook(t *testing.T) {
	w := NewWorkbookWriter()
	require.NoError(t, w.WriteFrame("calorimetry", makeFrame(t)))

	var buf bytes.Buffer
	require.NoError(t, w.Save(&buf))

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()

	assert.Equal(t, []string{"calorimetry"}, book.GetSheetList())

	rows, err := book.GetRows("calorimetry")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{colony.ColAnimal, colony.ColDateTime, "VO2"}, rows[0])
	assert.Equal(t, "A1", rows[1][0])
	assert.Equal(t, "2024-03-01 00:00:00", rows[1][1])
}

func TestWriteFrameAddsSheetPerTable(t *testing.T) {
	w := NewWorkbookWriter()
	require.NoError(t, w.WriteFrame("calorimetry", makeFrame(t)))
	require.NoError(t, w.WriteFrame("activity", makeFrame(t)))

	var buf bytes.Buffer
	require.NoError(t, w.Save(&buf))

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()

	assert.ElementsMatch(t, []string{"calorimetry", "activity"}, book.GetSheetList())
}

func TestWriteFrameTruncatesLongSheetNames(t *testing.T) {
	w := NewWorkbookWriter()
	long := "a table name far beyond the thirty one character worksheet limit"
	require.NoError(t, w.WriteFrame(long, makeFrame(t)))

	var buf bytes.Buffer
	require.NoError(t, w.Save(&buf))

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()

	assert.Equal(t, []string{long[:31]}, book.GetSheetList())
}
