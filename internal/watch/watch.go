// Package watch reports changed source files under a set of directories.
// Events for the same file arriving within the debounce window are
// collapsed, so an editor's write-rename-chmod sequence triggers one
// callback.
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

// DefaultDebounce is the quiet period before pending changes are reported.
const DefaultDebounce = 100 * time.Millisecond

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Zero reports every event immediately.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithFilter restricts reported paths. The default accepts files ending in
// ".py" or ".pyi".
func WithFilter(accept func(path string) bool) Option {
	return func(w *Watcher) { w.accept = accept }
}

// WithLogger sets the logger for watcher errors and skipped directories.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) { w.logger = logger }
}

// Watcher tracks directories recursively. It is not safe for concurrent
// use; call Add before Run.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	accept   func(string) bool
	logger   *slog.Logger
}

// New creates a watcher. Close releases it.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	w := &Watcher{
		fsw:      fsw,
		debounce: DefaultDebounce,
		accept:   IsSource,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// IsSource reports whether path names a Python source or stub file.
func IsSource(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".py" || ext == ".pyi"
}

// Add watches root and every directory below it. Hidden directories such as
// .git are skipped.
func (w *Watcher) Add(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			w.logger.Debug("skipping hidden directory", "path", path)
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// Run delivers changed paths to onChange until ctx is done. Paths in one
// batch are sorted. Run returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	flush := func() {
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		clear(pending)
		for _, p := range paths {
			onChange(p)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-fire:
			timer, fire = nil, nil
			flush()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.handle(ev) {
				continue
			}
			pending[ev.Name] = struct{}{}
			if w.debounce <= 0 {
				flush()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.logger.Warn("file events dropped", "error", err)
				continue
			}
			return fmt.Errorf("watching files: %w", err)
		}
	}
}

// handle reports whether ev is a change to report, and starts watching
// directories that appear.
func (w *Watcher) handle(ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.Add(ev.Name); err != nil {
				w.logger.Warn("cannot watch new directory", "path", ev.Name, "error", err)
			}
			return false
		}
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	return w.accept(ev.Name)
}

// Close stops watching. Run returns once the event channels close.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
