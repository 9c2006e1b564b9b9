// internal/report/tsv.go
package report

import (
	"fmt"
	"io"
	"strings"
)

// TSVWriter streams tab-separated rows as they arrive.
type TSVWriter struct {
	w io.Writer
}

func NewTSV(w io.Writer) *TSVWriter {
	return &TSVWriter{w: w}
}

func (t *TSVWriter) WriteHeader() error {
	_, err := fmt.Fprintln(t.w, strings.Join(Columns, "\t"))
	return err
}

func (t *TSVWriter) Write(r Row) error {
	line := r.ErrorLine()
	if r.Err == nil {
		line = strings.Join(r.Fields(), "\t")
	}
	_, err := fmt.Fprintln(t.w, line)
	return err
}

func (t *TSVWriter) Diagnostic(err error) error {
	return Diagnostic(t.w, err)
}

// Flush is a no-op; rows are written immediately.
func (t *TSVWriter) Flush() error {
	return nil
}
