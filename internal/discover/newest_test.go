package discover_test

import (
	"bytes"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LabNeuroCogDevel/EEGTaskPC/internal/discover"
)

var now = time.Date(2025, 11, 5, 18, 0, 0, 0, time.UTC)

func touch(t *testing.T, fs afero.Fs, path string, mod time.Time) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, nil, 0o644))
	require.NoError(t, fs.Chtimes(path, mod, mod))
}

func mkdir(t *testing.T, fs afero.Fs, path string, mod time.Time) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(path, 0o755))
	require.NoError(t, fs.Chtimes(path, mod, mod))
}

func TestFinder_Newest(t *testing.T) {
	fs := afero.NewMemMapFs()
	recent := now.Add(-2 * time.Hour)
	old := now.Add(-72 * time.Hour)

	touch(t, fs, "/eeg/Habit/12184_20251105/12184_habit.bdf", recent)
	touch(t, fs, "/eeg/Habit/12184_20251105/12184_habit.BDF", recent)
	touch(t, fs, "/eeg/Habit/12184_20251105/notes.txt", recent)
	touch(t, fs, "/eeg/Habit/12184_20251105/sub/12184_rest.bdf", recent)
	touch(t, fs, "/eeg/Habit/11878_20251101/11878_habit.bdf", old)
	touch(t, fs, "/eeg/Anti/12184_20251105/12184_anti.bdf", recent)
	touch(t, fs, "/eeg/stray.bdf", recent)

	// directory times last: writing files bumps them
	mkdir(t, fs, "/eeg/Habit/12184_20251105", recent)
	mkdir(t, fs, "/eeg/Habit/12184_20251105/sub", recent)
	mkdir(t, fs, "/eeg/Habit/11878_20251101", old)
	mkdir(t, fs, "/eeg/Anti/12184_20251105", recent)

	f := discover.Finder{
		Fs:     fs,
		Root:   "/eeg",
		MaxAge: discover.DefaultMaxAge,
		Depth:  discover.DefaultDepth,
		Now:    func() time.Time { return now },
	}
	got, err := f.Newest()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/eeg/Anti/12184_20251105/12184_anti.bdf",
		"/eeg/Habit/12184_20251105/12184_habit.BDF",
		"/eeg/Habit/12184_20251105/12184_habit.bdf",
		"/eeg/Habit/12184_20251105/sub/12184_rest.bdf",
	}, got)
}

func TestFinder_Depth(t *testing.T) {
	fs := afero.NewMemMapFs()
	recent := now.Add(-time.Hour)
	touch(t, fs, "/eeg/12184_20251105/12184_vgs.bdf", recent)
	mkdir(t, fs, "/eeg/12184_20251105", recent)

	f := discover.Finder{Fs: fs, Root: "/eeg", MaxAge: time.Hour * 3, Depth: 1, Now: func() time.Time { return now }}
	got, err := f.Newest()
	require.NoError(t, err)
	assert.Equal(t, []string{"/eeg/12184_20251105/12184_vgs.bdf"}, got)

	f.Depth = 0
	_, err = f.Newest()
	assert.ErrorIs(t, err, discover.ErrInvalidDepth)
}

func TestFinder_MissingRoot(t *testing.T) {
	f := discover.Finder{Fs: afero.NewMemMapFs(), Root: "/nope", MaxAge: time.Hour, Depth: 2}
	_, err := f.Newest()
	assert.Error(t, err)
}

// lockedFs refuses to open the listed paths, as a directory without read
// permission would.
type lockedFs struct {
	afero.Fs
	locked map[string]bool
}

func (l lockedFs) Open(name string) (afero.File, error) {
	if l.locked[name] {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return l.Fs.Open(name)
}

func TestFinder_SkipsUnreadableDirectories(t *testing.T) {
	mem := afero.NewMemMapFs()
	recent := now.Add(-time.Hour)
	touch(t, mem, "/eeg/Habit/12184_20251105/12184_habit.bdf", recent)
	touch(t, mem, "/eeg/Habit/12185_20251105/12185_habit.bdf", recent)
	touch(t, mem, "/eeg/Private/12186_20251105/12186_anti.bdf", recent)
	mkdir(t, mem, "/eeg/Habit/12184_20251105", recent)
	mkdir(t, mem, "/eeg/Habit/12185_20251105", recent)
	mkdir(t, mem, "/eeg/Private/12186_20251105", recent)

	var logs bytes.Buffer
	f := discover.Finder{
		Fs: lockedFs{Fs: mem, locked: map[string]bool{
			"/eeg/Private":              true, // study level
			"/eeg/Habit/12185_20251105": true, // session level
		}},
		Root:   "/eeg",
		MaxAge: discover.DefaultMaxAge,
		Depth:  discover.DefaultDepth,
		Now:    func() time.Time { return now },
		Log:    slog.New(slog.NewTextHandler(&logs, nil)),
	}
	got, err := f.Newest()
	require.NoError(t, err)
	assert.Equal(t, []string{"/eeg/Habit/12184_20251105/12184_habit.bdf"}, got)

	out := logs.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "/eeg/Private")
	assert.Contains(t, out, "/eeg/Habit/12185_20251105")
}

func TestFinder_UnreadableRoot(t *testing.T) {
	mem := afero.NewMemMapFs()
	mkdir(t, mem, "/eeg/Habit/12184_20251105", now)

	f := discover.Finder{
		Fs:     lockedFs{Fs: mem, locked: map[string]bool{"/eeg": true}},
		Root:   "/eeg",
		MaxAge: time.Hour,
		Depth:  2,
		Now:    func() time.Time { return now },
	}
	_, err := f.Newest()
	assert.ErrorIs(t, err, os.ErrPermission)
}

func TestFinder_NothingRecent(t *testing.T) {
	fs := afero.NewMemMapFs()
	old := now.Add(-48 * time.Hour)
	touch(t, fs, "/eeg/Habit/11878_20251101/11878_habit.bdf", old)
	mkdir(t, fs, "/eeg/Habit/11878_20251101", old)

	f := discover.Finder{Fs: fs, Root: "/eeg", MaxAge: 24 * time.Hour, Depth: 2, Now: func() time.Time { return now }}
	got, err := f.Newest()
	require.NoError(t, err)
	assert.Empty(t, got)
}
