// internal/dsp/detector.go
package dsp

import (
	"errors"
	"sort"
)

var (
	// ErrInvalidShortestEvent indicates the minimum event length must be at least one sample
	ErrInvalidShortestEvent = errors.New("shortest event must be at least 1 sample")
)

// DefaultShortestEvent is the minimum run length, in samples, kept as an event.
const DefaultShortestEvent = 2

// Event is one trigger onset on the stim channel.
type Event struct {
	// Sample is the index of the first sample of the run
	Sample int
	// Duration is the run length in samples (informational)
	Duration int
	// Code is the channel value held during the run
	Code int
}

// DetectorConfig holds configuration for the event detector.
// All values should come from the application config file.
type DetectorConfig struct {
	// ShortestEvent is the minimum run length in samples (from config: shortest_event)
	ShortestEvent int
}

// Detector turns a corrected stim channel into discrete onset events.
// The channel is treated as a step function: every maximal run of the same
// non-zero value is one event. Zero is baseline.
type Detector struct {
	config DetectorConfig
}

// NewDetector creates a new event detector with the given configuration.
func NewDetector(cfg DetectorConfig) (*Detector, error) {
	if cfg.ShortestEvent < 1 {
		return nil, ErrInvalidShortestEvent
	}
	return &Detector{config: cfg}, nil
}

// Detect scans samples and returns events ordered by sample index.
//
// Runs shorter than ShortestEvent are dropped. A non-zero run that is still
// open when the stream ends has no known extent and is not emitted. The
// stream is assumed to be preceded by baseline, so a run starting at index 0
// is an onset.
func (d *Detector) Detect(samples []int32) []Event {
	var events []Event

	runStart := 0
	for i := 1; i < len(samples); i++ {
		if samples[i] == samples[runStart] {
			continue
		}
		d.emit(&events, samples, runStart, i)
		runStart = i
	}
	// the run at runStart never closed

	return events
}

func (d *Detector) emit(events *[]Event, samples []int32, start, end int) {
	code := samples[start]
	if code == 0 {
		return
	}
	length := end - start
	if length < d.config.ShortestEvent {
		return
	}
	*events = append(*events, Event{
		Sample:   start,
		Duration: length,
		Code:     int(code),
	})
}

// Config returns the current configuration
func (d *Detector) Config() DetectorConfig {
	return d.config
}

// CodeCount is one line of an event code histogram.
type CodeCount struct {
	Code  int
	Count int
}

// Histogram counts events per code, ordered by code.
func Histogram(events []Event) []CodeCount {
	counts := make(map[int]int)
	for _, e := range events {
		counts[e.Code]++
	}
	out := make([]CodeCount, 0, len(counts))
	for code, n := range counts {
		out = append(out, CodeCount{Code: code, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
