// Package watch re-applies the wallpaper when a candidate file changes on
// disk, so a replaced background is picked up without logging out.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Applier is the single operation the watcher drives: one wallpaper pass
// against the session.
type Applier interface {
	Run(ctx context.Context) error
}

// Config holds the watcher knobs.
type Config struct {
	// Candidates are the wallpaper paths whose parent directories are
	// watched.
	Candidates []string

	// Debounce is the quiet window after the last event before re-applying.
	// Default: 500 milliseconds
	Debounce time.Duration

	// RetryBase and RetryMax bound the backoff between failed re-applies.
	// Defaults: 1 second and 30 seconds
	RetryBase time.Duration
	RetryMax  time.Duration
}

// Watcher triggers re-applies when candidate files change.
type Watcher struct {
	cfg     Config
	applier Applier
	clock   clockwork.Clock
	log     zerolog.Logger

	mu       sync.Mutex
	debounce clockwork.Timer
	trigger  chan struct{}
}

// Option configures optional behavior of a Watcher.
type Option func(*Watcher)

// WithClock substitutes the clock behind the debounce and retry waits.
func WithClock(c clockwork.Clock) Option {
	return func(w *Watcher) { w.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(w *Watcher) { w.log = l }
}

// New creates a Watcher driving applier whenever a path in cfg.Candidates
// changes.
func New(cfg Config, applier Applier, opts ...Option) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = time.Second
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = 30 * time.Second
	}
	w := &Watcher{
		cfg:     cfg,
		applier: applier,
		clock:   clockwork.NewRealClock(),
		log:     zerolog.Nop(),
		trigger: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches the candidate directories until ctx ends. A write, create, or
// rename touching a candidate schedules one debounced re-apply; a failed
// re-apply retries with backoff until it succeeds or ctx ends.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	watched := 0
	for _, dir := range watchDirs(w.cfg.Candidates) {
		if err := watcher.Add(dir); err != nil {
			w.log.Warn().Str("dir", dir).Err(err).Msg("cannot watch directory")
			continue
		}
		watched++
		w.log.Debug().Str("dir", dir).Msg("watching")
	}
	if watched == 0 {
		w.log.Warn().Msg("no watchable candidate directories")
	}

	wanted := make(map[string]bool, len(w.cfg.Candidates))
	for _, c := range w.cfg.Candidates {
		wanted[filepath.Clean(c)] = true
	}

	bo := newBackoff(w.cfg.RetryBase, w.cfg.RetryMax)
	var retry clockwork.Timer
	defer func() {
		if retry != nil {
			retry.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !wanted[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.log.Info().Str("path", event.Name).Str("op", event.Op.String()).Msg("candidate changed")
			w.schedule()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("watcher error")

		case <-w.trigger:
			if retry != nil {
				retry.Stop()
				retry = nil
			}
			err := w.applier.Run(ctx)
			if err == nil {
				w.log.Info().Msg("wallpaper reapplied")
				bo.Reset()
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// The retry arms a timer instead of sleeping here; the loop
			// stays on the select, draining events, and a fresh change
			// runs the next attempt ahead of the backoff.
			d := bo.Next()
			w.log.Warn().Err(err).Dur("retry_in", d).Msg("reapply failed, backing off")
			retry = w.clock.AfterFunc(d, w.fire)
		}
	}
}

// schedule arms the debounce timer; repeated events inside the window
// collapse into one trigger.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = w.clock.AfterFunc(w.cfg.Debounce, w.fire)
}

// fire pokes the trigger without blocking; a trigger already pending absorbs
// the new one.
func (w *Watcher) fire() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// watchDirs returns the unique parent directories of the candidates that
// exist on disk, in first-seen order.
func watchDirs(candidates []string) []string {
	seen := map[string]bool{}
	var dirs []string
	for _, c := range candidates {
		dir := filepath.Dir(c)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			continue
		}
		dirs = append(dirs, dir)
	}
	return dirs
}
