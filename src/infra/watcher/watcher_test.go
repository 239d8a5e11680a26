package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/contre95/sigwatch/src/features/config"
	"github.com/contre95/sigwatch/src/features/watching"
	"github.com/stretchr/testify/require"
)

const testPeriod = 50 * time.Millisecond

func startWatcher(t *testing.T, targets ...watching.Target) *Watcher {
	t.Helper()
	w, err := NewWatcher(testPeriod)
	require.NoError(t, err)
	for _, target := range targets {
		require.NoError(t, w.Watch(target))
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	t.Cleanup(func() {
		cancel()
		w.Stop()
	})
	return w
}

// nextChange returns the first notice that is not an early notice, and
// whether an early notice preceded it.
func nextChange(t *testing.T, w *Watcher) (watching.Notice, bool) {
	t.Helper()
	sawEarly := false
	timeout := time.After(3 * time.Second)
	for {
		select {
		case n := <-w.Notices():
			if n.Kind == watching.KindNotice {
				sawEarly = true
				continue
			}
			return n, sawEarly
		case <-timeout:
			t.Fatal("no notice received")
			return watching.Notice{}, false
		}
	}
}

func TestWatcher_WriteToExistingFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(file, []byte("v1"), 0o644))

	w := startWatcher(t, watching.Target{Path: dir, Recursive: true})
	require.NoError(t, os.WriteFile(file, []byte("v2"), 0o644))

	n, sawEarly := nextChange(t, w)
	require.Equal(t, watching.KindWrite, n.Kind)
	require.Equal(t, file, n.Path)
	require.True(t, sawEarly)
}

func TestWatcher_NewFileIsCreate(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, watching.Target{Path: dir, Recursive: true})

	file := filepath.Join(dir, "app.css")
	require.NoError(t, os.WriteFile(file, []byte("body{}"), 0o644))

	n, _ := nextChange(t, w)
	require.Equal(t, watching.KindCreate, n.Kind)
	require.Equal(t, file, n.Path)
}

func TestWatcher_NewSubdirectoryIsWatched(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, watching.Target{Path: dir, Recursive: true})

	sub := filepath.Join(dir, "assets")
	require.NoError(t, os.Mkdir(sub, 0o755))
	n, _ := nextChange(t, w)
	require.Equal(t, watching.KindCreate, n.Kind)
	require.Equal(t, sub, n.Path)

	file := filepath.Join(sub, "logo.svg")
	require.NoError(t, os.WriteFile(file, []byte("<svg/>"), 0o644))
	n, _ = nextChange(t, w)
	require.Equal(t, file, n.Path)
}

func TestWatcher_RemovedFileAndRearm(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(file, []byte("package main"), 0o644))

	w := startWatcher(t, watching.Target{Path: file, Recursive: true})
	require.NoError(t, os.Remove(file))

	n, _ := nextChange(t, w)
	require.Equal(t, watching.KindRemove, n.Kind)
	require.Equal(t, file, n.Path)
	require.Error(t, w.Rearm(file))

	require.NoError(t, os.WriteFile(file, []byte("package main"), 0o644))
	require.NoError(t, w.Rearm(file))
}

func TestWatcher_MissingPath(t *testing.T) {
	w, err := NewWatcher(testPeriod)
	require.NoError(t, err)
	defer w.Stop()

	err = w.Watch(watching.Target{Path: filepath.Join(t.TempDir(), "missing"), Recursive: true})
	require.ErrorIs(t, err, config.ErrConfig)
	require.Contains(t, err.Error(), "file not found")
}
