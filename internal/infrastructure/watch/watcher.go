// Package watch reports changes below profile search directories.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrWatcherFailed indicates the filesystem watcher failed to initialize.
var ErrWatcherFailed = errors.New("failed to initialize filesystem watcher")

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before reporting it.
const DefaultDebounce = 250 * time.Millisecond

// ChangeFunc is called with the sorted set of paths changed in one burst.
type ChangeFunc func(ctx context.Context, changed []string) error

// Watcher watches directory trees. fsnotify is not recursive, so every
// subdirectory is added, including ones created while watching.
//
// A root that does not exist yet is awaited: its nearest existing parent is
// watched on its own until the root appears.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	watched  map[string]bool
	anchors  map[string]bool
	missing  map[string]bool
	debounce time.Duration
}

// New creates a watcher. A non-positive debounce uses DefaultDebounce.
func New(debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		watcher:  fw,
		logger:   logger,
		watched:  make(map[string]bool),
		anchors:  make(map[string]bool),
		missing:  make(map[string]bool),
		debounce: debounce,
	}, nil
}

// Add watches each root and everything below it. Missing roots are picked
// up once they are created.
func (w *Watcher) Add(roots ...string) error {
	for _, root := range roots {
		root = filepath.Clean(root)
		if isDir(root) {
			delete(w.missing, root)
			if err := w.addTree(root); err != nil {
				return err
			}
			continue
		}
		if err := w.await(root); err != nil {
			return err
		}
	}
	return nil
}

func (w *Watcher) await(root string) error {
	parent := nearestDir(filepath.Dir(root))
	if parent == "" {
		w.logger.Debug("skipping watch root without an existing parent", "root", root)
		return nil
	}
	w.missing[root] = true
	w.logger.Debug("awaiting watch root", "root", root, "parent", parent)
	if w.watched[parent] || w.anchors[parent] {
		return nil
	}
	if err := w.watcher.Add(parent); err != nil {
		return fmt.Errorf("watching %s: %w", parent, err)
	}
	w.anchors[parent] = true
	return nil
}

// awaits reports whether path is a missing root or one of its parents.
func (w *Watcher) awaits(path string) bool {
	for root := range w.missing {
		if root == path || strings.HasPrefix(root, path+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) retryMissing() {
	roots := make([]string, 0, len(w.missing))
	for root := range w.missing {
		roots = append(roots, root)
	}
	sort.Strings(roots)
	if err := w.Add(roots...); err != nil {
		w.logger.Warn("failed to watch new search directory", "error", err)
	}
}

// relevant drops events from anchor directories that do not lead to a
// missing root.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	return w.watched[event.Name] || w.watched[filepath.Dir(event.Name)] || w.awaits(event.Name)
}

// Pending returns the roots that do not exist yet, in sorted order.
func (w *Watcher) Pending() []string {
	out := make([]string, 0, len(w.missing))
	for root := range w.missing {
		out = append(out, root)
	}
	sort.Strings(out)
	return out
}

// Watched returns the watched directories in sorted order.
func (w *Watcher) Watched() []string {
	out := make([]string, 0, len(w.watched))
	for dir := range w.watched {
		out = append(out, dir)
	}
	sort.Strings(out)
	return out
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// directory vanished between the event and the walk
			return nil
		}
		if !d.IsDir() || w.watched[path] {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		w.watched[path] = true
		return nil
	})
}

// Run delivers change bursts to onChange until ctx is cancelled or
// onChange returns an error.
func (w *Watcher) Run(ctx context.Context, onChange ChangeFunc) error {
	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if event.Op.Has(fsnotify.Create) && isDir(event.Name) {
				if w.awaits(event.Name) {
					w.retryMissing()
				} else if err := w.addTree(event.Name); err != nil {
					w.logger.Warn("failed to watch new directory", "dir", event.Name, "error", err)
				}
			}
			if event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
				delete(w.watched, event.Name)
			}
			pending[event.Name] = true
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("filesystem watcher error", "error", err)

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}
			sort.Strings(changed)
			clear(pending)

			w.logger.Debug("search directories changed", "paths", len(changed))
			if err := onChange(ctx, changed); err != nil {
				return err
			}
		}
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// nearestDir returns dir or its closest existing ancestor, or "" if none.
func nearestDir(dir string) string {
	for {
		if isDir(dir) {
			return dir
		}
		next := filepath.Dir(dir)
		if next == dir {
			return ""
		}
		dir = next
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
