// internal/ttl/normalize.go

// Package ttl maps raw trigger codes onto the small per-task code space that
// interval timing is measured on, and holds the task registry.
package ttl

import "github.com/LabNeuroCogDevel/EEGTaskPC/internal/dsp"

// Normalizer maps a raw trigger code to its canonical code. It must be
// defined for every int; unrecognised codes are returned unchanged.
type Normalizer func(code int) int

// Canonicalize returns a copy of events with each code normalized.
// Length, order and sample indices are preserved.
func Canonicalize(events []dsp.Event, n Normalizer) []dsp.Event {
	out := make([]dsp.Event, len(events))
	for i, e := range events {
		e.Code = n(e.Code)
		out[i] = e
	}
	return out
}

// Identity leaves every code as recorded.
func Identity(code int) int {
	return code
}

// Habit keeps three trial phases plus button and photodiode.
// Sub-codes within a phase (13/14/15, 163-168, ...) collapse to the phase.
// See choice-landscape src/landscape/model/phase.cljs.
func Habit(code int) int {
	switch {
	case code == 1: // photodiode
		return 1
	case code < 10: // button 2,3,4
		return 2
	case code < 20: // 10, 13-15
		return 10 // presented
	case code < 70: // 20-25
		return 20 // choice made
	case code < 100:
		return 70 // timeout
	case code < 200: // 163-168
		return 100 // waiting (isi)
	case code < 230: // 213-228
		return 200 // feedback
	default: // 230 is survey
		return code
	}
}

// VGSAnti drops the dot position encoded in the cue and target codes.
func VGSAnti(code int) int {
	switch {
	case code < 10 || (code > 100 && code < 110):
		return 10
	case (code > 50 && code < 100) || (code > 150 && code < 200):
		return 50
	default:
		return code
	}
}

// Switch codes:
//
//	iti         10
//	cue         51 (cong) 52 (incong)
//	numbers     101-103, 211-236
//	buttons     2 3 4
//	unknown     250
func Switch(code int) int {
	switch {
	case code == 10:
		return 10 // iti
	case code == 51 || code == 52:
		return 50 // "+" trial cue
	case code > 100 && code < 250:
		return 200 // numbers shown
	case code < 10:
		return 1 // button push
	default:
		return code
	}
}

// DollarReward collapses side and reward/neutral into cue and dot.
func DollarReward(code int) int {
	switch {
	case code == 50:
		return 50 // iti
	case code < 200:
		return 100 // cue
	case code > 200 && code < 255:
		return 200 // dot
	default:
		return code
	}
}

// EyeCal gives every dot position the same code.
func EyeCal(code int) int {
	switch {
	case code < 100:
		return 100
	case code < 255:
		return 200
	default:
		return code
	}
}
