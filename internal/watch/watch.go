// pattern: Imperative Shell

// Package watch keeps a resolution current while marker files come and go.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"wsroot/internal/logging"
	"wsroot/internal/resolver"
)

// DefaultPollInterval is the re-resolve safeguard for filesystems that drop events.
const DefaultPollInterval = 5 * time.Second

// Resolver is the subset of resolver.Resolver the watcher needs.
type Resolver interface {
	Resolve(startDir string) (resolver.Result, error)
	MarkerNames() []string
	IsCeiling(dir string) bool
}

// Event is emitted whenever the resolution of the watched start changes.
// Exactly one of Result and Err is meaningful.
type Event struct {
	Result resolver.Result
	Err    error
}

// Config configures a Watcher.
type Config struct {
	Start        string        // Directory to keep resolved
	PollInterval time.Duration // Defaults to DefaultPollInterval; negative disables polling
	BufferSize   int           // Events channel capacity (default 16)
}

// Watcher re-resolves Start whenever a marker name changes in any directory
// on its ancestor chain, up to and including the first ceiling.
type Watcher struct {
	res     Resolver
	start   string
	dirs    map[string]bool
	markers map[string]bool
	poll    time.Duration
	fsw     *fsnotify.Watcher
	events  chan Event
	logger  *logging.ScopedLogger

	last    *resolver.Result
	lastErr string
}

// New creates a Watcher. Call Run to start it.
func New(res Resolver, cfg Config, logger *logging.ScopedLogger) (*Watcher, error) {
	start, err := filepath.Abs(cfg.Start)
	if err != nil {
		return nil, fmt.Errorf("resolving start directory: %w", err)
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 16
	}
	if logger == nil {
		logger = logging.NopLogger()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	markers := make(map[string]bool)
	for _, name := range res.MarkerNames() {
		markers[name] = true
	}

	return &Watcher{
		res:     res,
		start:   start,
		dirs:    make(map[string]bool),
		markers: markers,
		poll:    cfg.PollInterval,
		fsw:     fsw,
		events:  make(chan Event, cfg.BufferSize),
		logger:  logger.With("start", start),
	}, nil
}

// Events returns the channel of resolution changes. It is closed when Run returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run resolves once, then watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)
	defer func() { _ = w.fsw.Close() }()

	for _, dir := range ancestors(w.start, w.res.IsCeiling) {
		if err := w.fsw.Add(dir); err != nil {
			// Resolve reports unreadable directories itself.
			w.logger.Warn("cannot watch directory", "dir", dir, "error", err)
			continue
		}
		w.dirs[dir] = true
	}
	w.logger.Info("watching", "dirs", len(w.dirs))

	w.refresh(ctx)

	var tick <-chan time.Time
	if w.poll > 0 {
		ticker := time.NewTicker(w.poll)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("marker changed", "path", event.Name, "op", event.Op.String())
			w.refresh(ctx)

		case <-tick:
			w.refresh(ctx)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// relevant reports whether event touches a marker name in a watched directory.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(event.Name)
	return w.markers[filepath.Base(name)] && w.dirs[filepath.Dir(name)]
}

// refresh re-resolves and emits an Event if the outcome changed.
func (w *Watcher) refresh(ctx context.Context) {
	res, err := w.res.Resolve(w.start)
	if err != nil {
		if err.Error() == w.lastErr {
			return
		}
		w.lastErr = err.Error()
		w.last = nil
		w.logger.Warn("resolution failed", "error", err)
		w.emit(ctx, Event{Err: err})
		return
	}

	w.lastErr = ""
	if w.last != nil && w.last.Same(res) {
		return
	}
	w.last = &res
	w.logger.Info("root changed", "root", res.Root, "classification", res.Classification.String())
	w.emit(ctx, Event{Result: res})
}

func (w *Watcher) emit(ctx context.Context, ev Event) {
	select {
	case w.events <- ev:
	case <-ctx.Done():
	}
}

// ancestors returns dir and every parent up to the filesystem root, or up to
// the first directory for which stop returns true.
func ancestors(dir string, stop func(string) bool) []string {
	var dirs []string
	for {
		dirs = append(dirs, dir)
		if stop != nil && stop(dir) {
			return dirs
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dirs
		}
		dir = parent
	}
}
