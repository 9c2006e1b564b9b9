// internal/ttl/task.go
package ttl

import "github.com/LabNeuroCogDevel/EEGTaskPC/internal/timing"

// DefaultMaxDiff is the outlier threshold, in seconds, when a task sets none.
const DefaultMaxDiff = 10000

// Task describes how one experiment's triggers are normalized and timed.
type Task struct {
	Name      string
	Normalize Normalizer
	Intervals []timing.Interval
	// MaxDiff is the outlier threshold in seconds: gaps >= MaxDiff are discarded
	MaxDiff float64
}

// HabitTask times response (10 to 2), inter-stimulus (100 to 200) and
// button-to-photodiode (2 to 1) intervals.
func HabitTask() Task {
	return Task{
		Name:      "Habit",
		Normalize: Habit,
		Intervals: []timing.Interval{
			timing.Pair(10, 2, "rt"),
			timing.Pair(100, 200, "isi"),
			timing.Pair(2, 1, "bnt2pd"),
		},
		MaxDiff: DefaultMaxDiff,
	}
}

// VGSAntiTask times cue onset (10) to trial end (254); it serves both VGS and
// anti-saccade recordings.
func VGSAntiTask() Task {
	return Task{
		Name:      "VGSAnti",
		Normalize: VGSAnti,
		Intervals: []timing.Interval{timing.Pair(10, 254, "trial")},
		MaxDiff:   DefaultMaxDiff,
	}
}

// RestTask times the eyes open (2) and eyes closed (1) pulses.
func RestTask() Task {
	return Task{
		Name:      "Rest",
		Normalize: Identity,
		Intervals: []timing.Interval{
			timing.Self(2, "openpulse"),
			timing.Self(1, "closepulse"),
		},
		MaxDiff: 8,
	}
}

// SwitchTask times the flip, cue-to-number and response intervals.
func SwitchTask() Task {
	return Task{
		Name:      "Switch",
		Normalize: Switch,
		Intervals: []timing.Interval{
			timing.Pair(1, 10, "push2flip"), // wildly variable, ~.03s
			timing.Pair(50, 200, "cue2num"),
			timing.Pair(200, 1, "rt"),
		},
		MaxDiff: DefaultMaxDiff,
	}
}

// DollarRewardTask times ITI to cue (50 to 100) and dot to ITI (200 to 50).
func DollarRewardTask() Task {
	return Task{
		Name:      "DollarReward",
		Normalize: DollarReward,
		Intervals: []timing.Interval{
			timing.Pair(50, 100, "iti2cue"),
			timing.Pair(200, 50, "dot2iti"),
		},
		MaxDiff: DefaultMaxDiff,
	}
}

// SteadyStateTask pulses on code equal to the stimulation frequency in tens
// of Hz: 2 for 20Hz, 3 for 30Hz, 4 for 40Hz.
func SteadyStateTask(code int) Task {
	return Task{
		Name:      "SteadyState",
		Normalize: Identity,
		Intervals: []timing.Interval{timing.Self(code, "ss pulse")},
		MaxDiff:   DefaultMaxDiff,
	}
}

// EyeCalTask times calibration dots, canonical 100 to 200.
func EyeCalTask() Task {
	return Task{
		Name:      "EyeCal",
		Normalize: EyeCal,
		Intervals: []timing.Interval{timing.Pair(100, 200, "dot")},
		MaxDiff:   DefaultMaxDiff,
	}
}
