package report_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LabNeuroCogDevel/EEGTaskPC/internal/report"
	"github.com/LabNeuroCogDevel/EEGTaskPC/internal/timing"
)

func habitRT() report.Row {
	return report.Row{
		Path:    "/data/12184_20251105_habit.bdf",
		File:    "12184_20251105_habit.bdf",
		Task:    "Habit",
		Label:   "rt",
		Start:   10,
		End:     2,
		MaxDiff: 10000,
		Summary: timing.Summary{N: 3, Kept: []float64{0.05, 0.05}, Min: 0.05, Max: 0.05, Mean: 0.05},
	}
}

func TestRow_Fields(t *testing.T) {
	got := habitRT().Fields()
	assert.Equal(t, []string{
		"12184_20251105_habit.bdf",
		"Habit:rt  ",
		"n=3",
		"0.0000",
		"0.050-0.050 (0.050s)",
		" 10 to   2",
	}, got)
}

func TestRow_ErrorLine(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no matches", timing.ErrNoMatches, "ERROR: No value for 10 2 in /data/12184_20251105_habit.bdf"},
		{"all discarded", timing.ErrAllDiscarded, "ERROR: all 4 values for 10 2 >= 10000s in /data/12184_20251105_habit.bdf"},
		{"other", timing.ErrInvalidRate, "ERROR: 10 2 in /data/12184_20251105_habit.bdf: sample rate must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := habitRT()
			r.Summary = timing.Summary{Dropped: 4}
			r.Err = tt.err
			assert.Equal(t, tt.want, r.ErrorLine())
		})
	}
}

func TestTSVWriter(t *testing.T) {
	var buf bytes.Buffer
	w := report.NewTSV(&buf)

	bad := habitRT()
	bad.Label, bad.Start, bad.End = "isi", 100, 200
	bad.Err = timing.ErrNoMatches

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Write(habitRT()))
	require.NoError(t, w.Write(bad))
	require.NoError(t, w.Diagnostic(errors.New("Error: notes.txt doesn't match known task")))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "file\tconf\tn\tmaxdiff\trange(mean)\tbtwn ttl", lines[0])
	assert.Equal(t, "12184_20251105_habit.bdf\tHabit:rt  \tn=3\t0.0000\t0.050-0.050 (0.050s)\t 10 to   2", lines[1])
	assert.Equal(t, "ERROR: No value for 100 200 in /data/12184_20251105_habit.bdf", lines[2])
	assert.Equal(t, "Error: notes.txt doesn't match known task", lines[3])
}

func TestTableWriter(t *testing.T) {
	var buf bytes.Buffer
	w := report.NewTable(&buf, 0)

	bad := habitRT()
	bad.Err = timing.ErrAllDiscarded

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Write(habitRT()))
	require.NoError(t, w.Write(bad))
	assert.Empty(t, buf.String(), "table output waits for Flush")

	require.NoError(t, w.Flush())
	out := buf.String()
	for _, want := range []string{"range(mean)", "Habit:rt", "n=3", "0.050-0.050 (0.050s)"} {
		assert.Contains(t, out, want)
	}
	assert.Greater(t, strings.Index(out, "ERROR: all"), strings.Index(out, "n=3"),
		"error lines follow the table")

	buf.Reset()
	require.NoError(t, w.Flush())
	assert.Empty(t, buf.String(), "Flush resets buffered rows")
}

func TestTableWriter_OnlyNotes(t *testing.T) {
	var buf bytes.Buffer
	w := report.NewTable(&buf, 0)
	require.NoError(t, w.Diagnostic(errors.New("no events detected")))
	require.NoError(t, w.Flush())
	assert.Equal(t, "no events detected\n", buf.String())
}

func TestTerminalWidth_NotATerminal(t *testing.T) {
	assert.Equal(t, 0, report.TerminalWidth(&bytes.Buffer{}))
}
