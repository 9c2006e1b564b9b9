// internal/discover/newest.go

// Package discover finds recently acquired recordings.
package discover

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
)

const (
	DefaultMaxAge = 24 * time.Hour
	DefaultDepth  = 2
)

// ErrInvalidDepth indicates the session depth must be at least one level
var ErrInvalidDepth = errors.New("depth must be at least 1")

// Finder locates recordings under session directories that changed recently.
// With the default depth, Root is laid out as Root/<study>/<session>/.
type Finder struct {
	Fs     afero.Fs
	Root   string
	MaxAge time.Duration
	Depth  int
	// Now defaults to time.Now.
	Now func() time.Time
	// Log receives a warning for each directory that cannot be read.
	Log *slog.Logger
}

// Newest returns every file whose name ends in "bdf", ignoring case, below
// each directory exactly Depth levels under Root that was modified within
// MaxAge. Results are sorted by path. Only an unreadable Root is an error;
// unreadable directories below it are logged and skipped.
func (f Finder) Newest() ([]string, error) {
	if f.Depth < 1 {
		return nil, ErrInvalidDepth
	}
	fs := f.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	log := f.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cutoff := now().Add(-f.MaxAge)

	dirs, err := sessionDirs(fs, f.Root, f.Depth, log)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, dir := range dirs {
		if !dir.ModTime().After(cutoff) {
			continue
		}
		files = append(files, recordings(fs, dir.path, log)...)
	}
	sort.Strings(files)
	return files, nil
}

type dirInfo struct {
	os.FileInfo
	path string
}

// sessionDirs lists the directories exactly depth levels below root.
func sessionDirs(fs afero.Fs, root string, depth int, log *slog.Logger) ([]dirInfo, error) {
	level := []string{root}
	var out []dirInfo
	for d := 1; d <= depth; d++ {
		var next []string
		out = nil
		for _, parent := range level {
			entries, err := afero.ReadDir(fs, parent)
			if err != nil {
				if parent == root {
					return nil, fmt.Errorf("list %s: %w", parent, err)
				}
				log.Warn("skipping unreadable directory", "path", parent, "err", err)
				continue
			}
			for _, e := range entries {
				if !e.IsDir() {
					continue
				}
				p := filepath.Join(parent, e.Name())
				next = append(next, p)
				out = append(out, dirInfo{FileInfo: e, path: p})
			}
		}
		level = next
	}
	return out, nil
}

func recordings(fs afero.Fs, dir string, log *slog.Logger) []string {
	var files []string
	_ = afero.Walk(fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Warn("skipping unreadable directory", "path", path, "err", err)
			return nil
		}
		if !info.IsDir() && strings.HasSuffix(strings.ToLower(info.Name()), "bdf") {
			files = append(files, path)
		}
		return nil
	})
	return files
}
