// internal/report/table.go
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"
)

var (
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	numericStyle = cellStyle.Align(lipgloss.Right)
	headerStyle  = cellStyle.Bold(true)
)

// TableWriter buffers rows and renders them as one bordered table on Flush.
// Error rows and diagnostics follow the table in arrival order.
type TableWriter struct {
	w     io.Writer
	width int
	rows  [][]string
	notes []string
}

// NewTable returns a table writer. A width of 0 lets the table size itself.
func NewTable(w io.Writer, width int) *TableWriter {
	return &TableWriter{w: w, width: width}
}

// TerminalWidth is the column count of w when it is a terminal, else 0.
func TerminalWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return 0
	}
	return width
}

// WriteHeader is a no-op; the header is part of the rendered table.
func (t *TableWriter) WriteHeader() error {
	return nil
}

func (t *TableWriter) Write(r Row) error {
	if r.Err != nil {
		t.notes = append(t.notes, r.ErrorLine())
		return nil
	}
	t.rows = append(t.rows, r.Fields())
	return nil
}

func (t *TableWriter) Diagnostic(err error) error {
	t.notes = append(t.notes, err.Error())
	return nil
}

// Flush renders everything buffered so far and resets the writer.
func (t *TableWriter) Flush() error {
	defer func() {
		t.rows, t.notes = nil, nil
	}()

	if len(t.rows) > 0 {
		tbl := table.New().
			Border(lipgloss.NormalBorder()).
			Headers(Columns...).
			Rows(t.rows...).
			StyleFunc(styleCell)
		if t.width > 0 {
			tbl = tbl.Width(t.width)
		}
		if _, err := fmt.Fprintln(t.w, tbl.String()); err != nil {
			return err
		}
	}
	for _, n := range t.notes {
		if _, err := fmt.Fprintln(t.w, n); err != nil {
			return err
		}
	}
	return nil
}

// styleCell right-aligns the n and maxdiff columns. Header cells carry a
// negative row index.
func styleCell(row, col int) lipgloss.Style {
	switch {
	case row < 0:
		return headerStyle
	case col == 2 || col == 3:
		return numericStyle
	default:
		return cellStyle
	}
}
