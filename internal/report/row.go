// internal/report/row.go

// Package report formats per-interval timing results.
package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/LabNeuroCogDevel/EEGTaskPC/internal/timing"
)

// Columns is the report header.
var Columns = []string{"file", "conf", "n", "maxdiff", "range(mean)", "btwn ttl"}

// Row is the outcome of timing one interval in one recording. Err is set
// when the interval produced nothing to summarize.
type Row struct {
	Path    string // recording as given on the command line
	File    string // base name of Path
	Task    string
	Label   string
	Start   int
	End     int
	MaxDiff float64
	Summary timing.Summary
	Err     error
}

// Fields renders a successful row as report columns.
func (r Row) Fields() []string {
	s := r.Summary
	return []string{
		r.File,
		fmt.Sprintf("%s:%-4s", r.Task, r.Label),
		fmt.Sprintf("n=%d", s.N),
		fmt.Sprintf("%.4f", s.Spread),
		fmt.Sprintf("%.3f-%.3f (%.3fs)", s.Max, s.Min, s.Mean),
		fmt.Sprintf("%3d to %3d", r.Start, r.End),
	}
}

// ErrorLine renders a failed row as a single line.
func (r Row) ErrorLine() string {
	switch {
	case errors.Is(r.Err, timing.ErrNoMatches):
		return fmt.Sprintf("ERROR: No value for %d %d in %s", r.Start, r.End, r.Path)
	case errors.Is(r.Err, timing.ErrAllDiscarded):
		return fmt.Sprintf("ERROR: all %d values for %d %d >= %gs in %s",
			r.Summary.Dropped, r.Start, r.End, r.MaxDiff, r.Path)
	default:
		return fmt.Sprintf("ERROR: %d %d in %s: %v", r.Start, r.End, r.Path, r.Err)
	}
}

// Writer receives report rows and file-level failures in input order.
type Writer interface {
	WriteHeader() error
	Write(Row) error
	Diagnostic(err error) error
	Flush() error
}

// Diagnostic writes a file-level failure as one line.
func Diagnostic(w io.Writer, err error) error {
	_, werr := fmt.Fprintln(w, err.Error())
	return werr
}
