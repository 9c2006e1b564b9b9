// internal/timing/summary.go
package timing

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInterval is the parent of every "nothing left to report" error.
	ErrEmptyInterval = errors.New("empty interval")
	// ErrNoMatches means the events never produced a gap for the interval.
	ErrNoMatches = fmt.Errorf("%w: no matching events", ErrEmptyInterval)
	// ErrAllDiscarded means every gap was at or above the outlier threshold.
	ErrAllDiscarded = fmt.Errorf("%w: all gaps discarded", ErrEmptyInterval)
	// ErrInvalidRate indicates the sample rate must be positive.
	ErrInvalidRate = errors.New("sample rate must be positive")
)

// Summary describes the gaps, in seconds, that survived outlier rejection.
type Summary struct {
	// N is len(Kept)+1: n gaps come from n+1 events.
	N       int
	Kept    []float64
	Dropped int
	Min     float64
	Max     float64
	Spread  float64
	Mean    float64
}

// Seconds converts sample gaps to seconds at rate Hz.
func Seconds(gaps []int, rate float64) []float64 {
	out := make([]float64, len(gaps))
	for i, g := range gaps {
		out[i] = float64(g) / rate
	}
	return out
}

// Discard keeps the values strictly below maxdiff.
func Discard(values []float64, maxdiff float64) []float64 {
	kept := make([]float64, 0, len(values))
	for _, v := range values {
		if v < maxdiff {
			kept = append(kept, v)
		}
	}
	return kept
}

// Summarize converts gaps to seconds, drops those >= maxdiff seconds and
// reduces the rest. An empty result is an error, never a zero Summary.
func Summarize(gaps []int, rate, maxdiff float64) (Summary, error) {
	if rate <= 0 {
		return Summary{}, ErrInvalidRate
	}
	if len(gaps) == 0 {
		return Summary{}, ErrNoMatches
	}

	kept := Discard(Seconds(gaps, rate), maxdiff)
	if len(kept) == 0 {
		return Summary{Dropped: len(gaps)}, ErrAllDiscarded
	}

	s := Summary{
		N:       len(kept) + 1,
		Kept:    kept,
		Dropped: len(gaps) - len(kept),
		Min:     kept[0],
		Max:     kept[0],
	}
	var sum float64
	for _, v := range kept {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		sum += v
	}
	s.Mean = sum / float64(len(kept))
	s.Spread = s.Max - s.Min
	return s, nil
}
