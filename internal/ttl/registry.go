// internal/ttl/registry.go
package ttl

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
)

// ErrUnknownTask indicates no route matched a file name
var ErrUnknownTask = errors.New("doesn't match known task")

// DispatchError reports a file that matched no task route.
type DispatchError struct {
	File string
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("Error: %s %v", e.File, ErrUnknownTask)
}

func (e *DispatchError) Unwrap() error {
	return ErrUnknownTask
}

// Route selects a task for file names matching Pattern. Build receives the
// submatches of the pattern so a route can derive task values from the name.
type Route struct {
	Name    string
	Pattern *regexp.Regexp
	Build   func(match []string) Task
}

// fixed wraps a task that does not depend on the file name.
func fixed(task func() Task) func([]string) Task {
	return func([]string) Task { return task() }
}

// Registry is an ordered route table; the first match wins.
type Registry struct {
	routes []Route
	log    *slog.Logger
}

// NewRegistry returns a registry with the given routes, in order.
func NewRegistry(log *slog.Logger, routes ...Route) *Registry {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Registry{routes: routes, log: log}
}

// DefaultRoutes is the built-in task table. Order matters: "dr" and "_vgs"
// are loose enough to shadow later patterns.
func DefaultRoutes() []Route {
	return []Route{
		{Name: "habit", Pattern: regexp.MustCompile(`(?i)habit`), Build: fixed(HabitTask)},
		{Name: "switch", Pattern: regexp.MustCompile(`(?i)switch`), Build: fixed(SwitchTask)},
		{Name: "rest", Pattern: regexp.MustCompile(`(?i)rest`), Build: fixed(RestTask)},
		{Name: "cal", Pattern: regexp.MustCompile(`(?i)eyecal`), Build: fixed(EyeCalTask)},
		{Name: "dr", Pattern: regexp.MustCompile(`(?i)dr|dollarreward`), Build: fixed(DollarRewardTask)},
		{Name: "anti", Pattern: regexp.MustCompile(`(?i)_anti`), Build: fixed(VGSAntiTask)},
		{Name: "vgs", Pattern: regexp.MustCompile(`(?i)_vgs`), Build: fixed(VGSAntiTask)},
		{Name: "ss", Pattern: regexp.MustCompile(`(?i)(steadystate|ss)([234])0`), Build: steadyState},
	}
}

// steadyState reads the pulse code from the frequency in the file name.
func steadyState(match []string) Task {
	code, err := strconv.Atoi(match[2])
	if err != nil {
		code = 2
	}
	return SteadyStateTask(code)
}

// Prepend puts r ahead of every existing route.
func (r *Registry) Prepend(route Route) {
	r.routes = append([]Route{route}, r.routes...)
}

// Routes returns a copy of the route table.
func (r *Registry) Routes() []Route {
	return append([]Route(nil), r.routes...)
}

// Dispatch picks the task for path by matching its base name.
func (r *Registry) Dispatch(path string) (Task, error) {
	name := filepath.Base(path)
	for _, route := range r.routes {
		if m := route.Pattern.FindStringSubmatch(name); m != nil {
			return route.Build(m), nil
		}
		r.log.Debug("no match for pattern", "pattern", route.Pattern.String(), "file", name)
	}
	return Task{}, &DispatchError{File: path}
}
