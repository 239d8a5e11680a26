package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/contre95/sigwatch/src/features/config"
	"github.com/contre95/sigwatch/src/features/watching"
	"github.com/fsnotify/fsnotify"
)

const noticeBuffer = 256

// Watcher turns fsnotify events into debounced notices. Each path gets its
// own window that starts with the first event seen on it; when the window
// ends a single consolidated notice is emitted.
type Watcher struct {
	watcher  *fsnotify.Watcher
	period   time.Duration
	notices  chan watching.Notice
	mu       sync.Mutex
	pending  map[string]*pendingChange
	roots    []string
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a new file system watcher with the given debounce period.
func NewWatcher(period time.Duration) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:  watcher,
		period:   period,
		notices:  make(chan watching.Notice, noticeBuffer),
		pending:  make(map[string]*pendingChange),
		stopChan: make(chan struct{}),
	}, nil
}

// Notices returns the stream of debounced notices.
func (w *Watcher) Notices() <-chan watching.Notice {
	return w.notices
}

// Watch adds a target. Directories of a recursive target are watched with all
// their sub-directories, including ones created later.
func (w *Watcher) Watch(target watching.Target) error {
	info, err := os.Stat(target.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s: file not found", config.ErrConfig, target.Path)
		}
		return fmt.Errorf("%w: %s: file error", config.ErrConfig, target.Path)
	}

	if !target.Recursive || !info.IsDir() {
		if err := w.watcher.Add(target.Path); err != nil {
			return fmt.Errorf("%w: %s: file error", config.ErrConfig, target.Path)
		}
		return nil
	}

	if err := w.addTree(target.Path); err != nil {
		return fmt.Errorf("%w: %s: file error", config.ErrConfig, target.Path)
	}
	w.mu.Lock()
	w.roots = append(w.roots, filepath.Clean(target.Path))
	w.mu.Unlock()
	slog.Debug("Watching directory tree", "path", target.Path)
	return nil
}

// Rearm watches path again, non-recursively. It fails when the path no longer exists.
func (w *Watcher) Rearm(path string) error {
	return w.watcher.Add(path)
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// A directory vanishing mid-walk is not worth failing for.
			if path != root && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.watcher.Add(path)
	})
}

// Start begins processing fsnotify events until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	go w.watchLoop(ctx)
}

// Stop stops the file watcher
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)

		w.mu.Lock()
		for path, change := range w.pending {
			change.timer.Stop()
			delete(w.pending, path)
		}
		w.mu.Unlock()

		w.watcher.Close()
	})
}

// watchLoop processes file system events
func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.handleError(err)

		case <-w.stopChan:
			return

		case <-ctx.Done():
			return
		}
	}
}

// handleEvent folds a single file system event into its pending change.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) && w.underRecursiveRoot(event.Name) {
		if info, err := os.Lstat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				slog.Debug("Could not watch new directory", "path", event.Name, "error", err)
			}
		}
	}

	early := false
	w.mu.Lock()
	change, ok := w.pending[event.Name]
	if !ok {
		change = &pendingChange{kind: kindNone}
		path := event.Name
		change.timer = time.AfterFunc(w.period, func() { w.flush(path) })
		w.pending[event.Name] = change
	}
	for _, op := range splitOps(event.Op) {
		if change.merge(op) {
			early = true
		}
	}
	w.mu.Unlock()

	if early {
		w.emit(watching.Notice{Kind: watching.KindNotice, Path: event.Name})
	}
}

func (w *Watcher) handleError(err error) {
	if errors.Is(err, fsnotify.ErrEventOverflow) {
		slog.Debug("File watcher queue overflowed", "error", err)
		w.emit(watching.Notice{Kind: watching.KindRescan})
		return
	}
	w.emit(watching.Notice{Kind: watching.KindError, Err: err})
}

// flush emits the consolidated change of path once its window has elapsed.
func (w *Watcher) flush(path string) {
	w.mu.Lock()
	change, ok := w.pending[path]
	if ok {
		delete(w.pending, path)
	}
	w.mu.Unlock()

	if !ok || change.kind == kindNone {
		return
	}
	w.emit(watching.Notice{Kind: change.kind, Path: path})
}

func (w *Watcher) emit(notice watching.Notice) {
	select {
	case w.notices <- notice:
	case <-w.stopChan:
	}
}

func (w *Watcher) underRecursiveRoot(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
