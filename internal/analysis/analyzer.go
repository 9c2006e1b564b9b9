// internal/analysis/analyzer.go

// Package analysis runs the timing pipeline for one recording: dispatch to a
// task, read and correct the trigger channel, detect events, then time each
// of the task's intervals.
package analysis

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/LabNeuroCogDevel/EEGTaskPC/internal/bdf"
	"github.com/LabNeuroCogDevel/EEGTaskPC/internal/dsp"
	"github.com/LabNeuroCogDevel/EEGTaskPC/internal/recovery"
	"github.com/LabNeuroCogDevel/EEGTaskPC/internal/report"
	"github.com/LabNeuroCogDevel/EEGTaskPC/internal/timing"
	"github.com/LabNeuroCogDevel/EEGTaskPC/internal/ttl"
)

const DefaultStimChannel = "Status"

var (
	// ErrNoEvents means the trigger channel never left baseline
	ErrNoEvents = errors.New("no events detected")
	// ErrNoRegistry indicates New was called without a task registry
	ErrNoRegistry = errors.New("task registry is required")
)

// DecodeError wraps any failure to read a recording's trigger channel.
type DecodeError struct {
	File string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.File, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Options controls how recordings are read.
type Options struct {
	// StimChannel is the label of the trigger channel.
	StimChannel string
	// ShortestEvent is the minimum run length, in samples, kept as an event.
	ShortestEvent int
}

// Recording is the raw event list of one file.
type Recording struct {
	Path   string
	Format bdf.Format
	Rate   float64
	Events []dsp.Event
}

// Analyzer is safe for sequential use only.
type Analyzer struct {
	fs       afero.Fs
	opts     Options
	registry *ttl.Registry
	detector *dsp.Detector
	log      *slog.Logger
}

// New validates opts and returns an analyzer reading recordings from fs.
func New(fs afero.Fs, opts Options, registry *ttl.Registry, log *slog.Logger) (*Analyzer, error) {
	if registry == nil {
		return nil, ErrNoRegistry
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.StimChannel == "" {
		opts.StimChannel = DefaultStimChannel
	}
	if opts.ShortestEvent == 0 {
		opts.ShortestEvent = dsp.DefaultShortestEvent
	}

	detector, err := dsp.NewDetector(dsp.DetectorConfig{ShortestEvent: opts.ShortestEvent})
	if err != nil {
		return nil, err
	}
	return &Analyzer{
		fs:       fs,
		opts:     opts,
		registry: registry,
		detector: detector,
		log:      log,
	}, nil
}

// AnalyzeFile dispatches path to a task, loads its events and measures every
// interval of the task. A *ttl.DispatchError or ErrNoEvents is specific to
// this file; a *DecodeError means the recording could not be read at all.
func (a *Analyzer) AnalyzeFile(path string) ([]report.Row, error) {
	task, err := a.registry.Dispatch(path)
	if err != nil {
		return nil, err
	}
	a.log.Info("analyzing", "file", path, "task", task.Name)

	rec, err := a.LoadEvents(path)
	if err != nil {
		return nil, err
	}
	return a.Measure(rec, task), nil
}

// LoadEvents reads the trigger channel of path and detects its events.
func (a *Analyzer) LoadEvents(path string) (Recording, error) {
	rec, samples, err := a.readTrigger(path)
	if err != nil {
		return Recording{}, &DecodeError{File: path, Err: err}
	}
	if rec.Format == bdf.BDF {
		samples = dsp.CorrectStatus(samples)
	}

	rec.Events = a.detector.Detect(samples)
	if len(rec.Events) == 0 {
		return rec, fmt.Errorf("%w in %s", ErrNoEvents, path)
	}
	a.log.Info("event codes", "file", path, "counts", formatHistogram(dsp.Histogram(rec.Events)))
	return rec, nil
}

func (a *Analyzer) readTrigger(path string) (rec Recording, samples []int32, err error) {
	defer recovery.AsError(&err)

	f, err := a.fs.Open(path)
	if err != nil {
		return rec, nil, err
	}
	defer f.Close()

	r, err := bdf.Open(f)
	if err != nil {
		return rec, nil, err
	}
	idx, err := r.SignalIndex(a.opts.StimChannel)
	if err != nil {
		return rec, nil, err
	}
	samples, err = r.Trigger(idx)
	if err != nil {
		return rec, nil, err
	}

	hdr := r.Header()
	rec = Recording{Path: path, Format: hdr.Format(), Rate: hdr.SampleRate(idx)}
	if rec.Rate <= 0 {
		return rec, nil, timing.ErrInvalidRate
	}
	a.log.Debug("read trigger channel",
		"file", path, "format", rec.Format, "rate", rec.Rate, "samples", len(samples))
	return rec, samples, nil
}

// Measure canonicalizes rec's events with task's normalizer and produces one
// row per interval, in the task's declared order.
func (a *Analyzer) Measure(rec Recording, task ttl.Task) []report.Row {
	events := ttl.Canonicalize(rec.Events, task.Normalize)
	log := a.log.With("file", rec.Path, "task", task.Name)

	rows := make([]report.Row, 0, len(task.Intervals))
	for _, iv := range task.Intervals {
		gaps := timing.Gaps(events, iv, log.With("label", iv.Label))
		summary, err := timing.Summarize(gaps, rec.Rate, task.MaxDiff)
		log.Info("between adjusted",
			"start", iv.Start, "end", iv.EndCode(), "seconds", timing.Seconds(gaps, rec.Rate))

		rows = append(rows, report.Row{
			Path:    rec.Path,
			File:    filepath.Base(rec.Path),
			Task:    task.Name,
			Label:   iv.Label,
			Start:   iv.Start,
			End:     iv.EndCode(),
			MaxDiff: task.MaxDiff,
			Summary: summary,
			Err:     err,
		})
	}
	return rows
}

func formatHistogram(counts []dsp.CodeCount) string {
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = fmt.Sprintf("%d:%d", c.Code, c.Count)
	}
	return strings.Join(parts, " ")
}
