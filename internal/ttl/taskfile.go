// internal/ttl/taskfile.go
package ttl

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/LabNeuroCogDevel/EEGTaskPC/internal/timing"
)

var (
	// ErrInvalidTaskFile indicates a task file is malformed
	ErrInvalidTaskFile = errors.New("invalid task file")
	// ErrMissingConvert indicates a task file has no [ttl_convert] table
	ErrMissingConvert = fmt.Errorf("%w: [ttl_convert] is not defined", ErrInvalidTaskFile)
)

// ConfigLoadError reports a task file that could not be used.
type ConfigLoadError struct {
	Path string
	Err  error
}

func (e *ConfigLoadError) Error() string {
	return fmt.Sprintf("load task file %s: %v", e.Path, e.Err)
}

func (e *ConfigLoadError) Unwrap() error {
	return e.Err
}

// taskFile is the TOML layout of an external task definition.
type taskFile struct {
	Name       string        `toml:"name"`
	Pattern    string        `toml:"pattern"`
	MaxDiff    *float64      `toml:"maxdiff"`
	TTLConvert *RuleSet      `toml:"ttl_convert"`
	Between    []betweenSpec `toml:"between"`
}

type betweenSpec struct {
	A     *int   `toml:"a"`
	B     *int   `toml:"b"`
	Label string `toml:"label"`
}

// matchAll is used for task files without a pattern.
var matchAll = regexp.MustCompile(`^`)

// LoadTaskFile reads a task definition and returns it as a route. A file
// without a pattern matches every file name.
func LoadTaskFile(path string) (Route, error) {
	var tf taskFile
	md, err := toml.DecodeFile(path, &tf)
	if err != nil {
		return Route{}, &ConfigLoadError{Path: path, Err: fmt.Errorf("%w: %v", ErrInvalidTaskFile, err)}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Route{}, &ConfigLoadError{Path: path, Err: fmt.Errorf("%w: unknown keys %s", ErrInvalidTaskFile, strings.Join(keys, ", "))}
	}

	task, pattern, err := tf.build()
	if err != nil {
		return Route{}, &ConfigLoadError{Path: path, Err: err}
	}

	return Route{
		Name:    task.Name,
		Pattern: pattern,
		Build:   func([]string) Task { return task },
	}, nil
}

func (tf taskFile) build() (Task, *regexp.Regexp, error) {
	if tf.TTLConvert == nil {
		return Task{}, nil, ErrMissingConvert
	}
	if err := tf.TTLConvert.Validate(); err != nil {
		return Task{}, nil, fmt.Errorf("%w: ttl_convert: %w", ErrInvalidTaskFile, err)
	}

	var errs []error
	if tf.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if len(tf.Between) == 0 {
		errs = append(errs, errors.New("at least one [[between]] is required"))
	}
	if tf.MaxDiff != nil && *tf.MaxDiff <= 0 {
		errs = append(errs, fmt.Errorf("maxdiff must be positive, got %v", *tf.MaxDiff))
	}

	intervals := make([]timing.Interval, 0, len(tf.Between))
	for i, b := range tf.Between {
		switch {
		case b.A == nil:
			errs = append(errs, fmt.Errorf("between %d: a is required", i+1))
		case b.B == nil:
			intervals = append(intervals, timing.Self(*b.A, b.Label))
		default:
			intervals = append(intervals, timing.Pair(*b.A, *b.B, b.Label))
		}
	}

	pattern := matchAll
	if tf.Pattern != "" {
		p, err := regexp.Compile("(?i)" + tf.Pattern)
		if err != nil {
			errs = append(errs, fmt.Errorf("pattern: %w", err))
		}
		pattern = p
	}

	if len(errs) > 0 {
		return Task{}, nil, fmt.Errorf("%w: %w", ErrInvalidTaskFile, errors.Join(errs...))
	}

	maxDiff := float64(DefaultMaxDiff)
	if tf.MaxDiff != nil {
		maxDiff = *tf.MaxDiff
	}

	return Task{
		Name:      tf.Name,
		Normalize: tf.TTLConvert.Normalizer(),
		Intervals: intervals,
		MaxDiff:   maxDiff,
	}, pattern, nil
}
