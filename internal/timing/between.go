// internal/timing/between.go

// Package timing measures sample gaps between canonical trigger codes and
// reduces them to per-interval summaries.
package timing

import (
	"io"
	"log/slog"

	"github.com/LabNeuroCogDevel/EEGTaskPC/internal/dsp"
)

// Interval names a pair of codes whose separation is timed. A nil End
// selects self-interval mode: gaps between consecutive Start codes.
type Interval struct {
	Start int
	End   *int
	Label string
}

// Pair returns an interval timed from code a to the next code b.
func Pair(a, b int, label string) Interval {
	return Interval{Start: a, End: &b, Label: label}
}

// Self returns an interval timed between consecutive occurrences of a.
func Self(a int, label string) Interval {
	return Interval{Start: a, Label: label}
}

// IsSelf reports whether the interval is measured on a single code.
func (iv Interval) IsSelf() bool {
	return iv.End == nil
}

// EndCode is the closing code, or Start for a self-interval.
func (iv Interval) EndCode() int {
	if iv.End == nil {
		return iv.Start
	}
	return *iv.End
}

// Gaps extracts the sample gaps for iv from canonical events.
func Gaps(events []dsp.Event, iv Interval, log *slog.Logger) []int {
	if iv.IsSelf() {
		return SelfGaps(events, iv.Start)
	}
	return PairedGaps(events, iv.Start, *iv.End, log)
}

// SelfGaps returns successive differences of the sample indices of every
// event carrying code, in encounter order.
func SelfGaps(events []dsp.Event, code int) []int {
	var gaps []int
	prev, seen := 0, false
	for _, e := range events {
		if e.Code != code {
			continue
		}
		if seen {
			gaps = append(gaps, e.Sample-prev)
		}
		prev, seen = e.Sample, true
	}
	return gaps
}

// PairedGaps times each start code to the next end code.
//
// A start seen again before its end replaces the pending start. An end with
// no pending start is skipped. A start still pending when the events run out
// yields nothing. Each of these is logged as a warning and none of them
// changes the returned gaps.
func PairedGaps(events []dsp.Event, start, end int, log *slog.Logger) []int {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var gaps []int
	pending, open := 0, false
	for _, e := range events {
		// with start == end, a pending start makes the next match its end
		closes := e.Code == end && (open || start != end)
		switch {
		case e.Code == start && !closes:
			if open {
				log.Warn("start seen again before matching end",
					"start", start, "end", end, "first", pending, "again", e.Sample)
			}
			pending, open = e.Sample, true
		case e.Code == end:
			if !open {
				log.Warn("end before any start",
					"start", start, "end", end, "at", e.Sample)
				continue
			}
			gaps = append(gaps, e.Sample-pending)
			open = false
		}
	}
	if open {
		log.Warn("unmatched trailing start",
			"start", start, "end", end, "at", pending)
	}
	return gaps
}
