// Package wallset applies the desktop wallpaper once an Enlightenment
// session is ready to take it.
//
// Example usage:
//
//	cfg := wallset.DefaultConfig()
//	if err := wallset.LoadSessionInfo(&cfg); err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := wallset.Run(context.Background(), cfg); err != nil {
//	    log.Fatal(err)
//	}
package wallset

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/kuns-os/wallset/internal/apply"
	"github.com/kuns-os/wallset/internal/cliconfig"
	"github.com/kuns-os/wallset/internal/lockfile"
	"github.com/kuns-os/wallset/internal/session"
	"github.com/kuns-os/wallset/internal/watch"
)

// Config holds the configuration for a wallpaper setup run.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = cliconfig.Config

// ErrSessionNotReady means the desktop never answered within the configured
// number of probes.
var ErrSessionNotReady = apply.ErrSessionNotReady

// ErrNoCandidateApplied means every candidate was missing or refused by all
// strategies.
var ErrNoCandidateApplied = apply.ErrNoCandidateApplied

// DefaultConfig returns a Config with the stock delays, bounds, and paths.
func DefaultConfig() Config {
	return cliconfig.DefaultConfig()
}

// DefaultCandidates returns the built-in wallpaper search order for home.
func DefaultCandidates(home string) []string {
	return cliconfig.DefaultCandidates(home)
}

// LoadSessionInfo fills Home and Display from the environment if not already
// set. This should be called before cfg.Validate.
func LoadSessionInfo(cfg *Config) error {
	return cliconfig.LoadSessionInfo(cfg)
}

// Logger returns the package-level zerolog logger.
func Logger() zerolog.Logger {
	return cliconfig.Logger()
}

// Option configures optional behavior of Run.
type Option func(*options)

type options struct {
	logger *zerolog.Logger
	client session.Client
	clock  clockwork.Clock
}

// WithLogger sets the logger for the run. Without it the run logs nowhere.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = &l }
}

// WithClient substitutes the session control client.
func WithClient(c session.Client) Option {
	return func(o *options) { o.client = c }
}

// WithClock substitutes the clock behind every delay and probe interval.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) { o.clock = c }
}

// Run performs the whole setup: sit out the initial settle delay, take the
// run lock, wait for the desktop, apply the first workable candidate, and,
// when cfg.Watch is set, keep re-applying as candidate files change until
// ctx ends.
//
// A second instance finding the lock in place logs and returns nil. The lock
// is released on every exit path, including cancellation.
func Run(ctx context.Context, cfg Config, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	log := zerolog.Nop()
	if o.logger != nil {
		log = *o.logger
	}
	runID := uuid.NewString()
	log = log.With().Str("run", runID).Logger()

	clock := o.clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	log.Info().Msg("wallpaper setup started")
	if cfg.Display != "" {
		log.Debug().Str("display", cfg.Display).Msg("session display")
	}

	// The settle delay runs before the lock is even looked at; a duplicate
	// autostart waits it out too and then stands down.
	if err := sleep(ctx, clock, cfg.InitialDelay); err != nil {
		return err
	}

	lock, err := lockfile.Acquire(cfg.LockPath)
	if errors.Is(err, lockfile.ErrHeld) {
		pid, perr := lockfile.HolderPID(cfg.LockPath)
		ev := log.Info().Str("lock", cfg.LockPath)
		if perr == nil {
			ev = ev.Int("pid", pid)
		}
		ev.Msg("another instance is already running, nothing to do")
		if perr == nil && !lockfile.Alive(pid) {
			log.Warn().Int("pid", pid).Str("lock", cfg.LockPath).Msg("lock holder is not running; stale lock left in place")
		}
		return nil
	}
	if err != nil {
		return err
	}
	defer func() {
		if rerr := lock.Release(); rerr != nil {
			log.Warn().Err(rerr).Msg("lock release failed")
		}
	}()

	client := o.client
	if client == nil {
		client = session.NewRemoteClient(cfg.Remote, cfg.CommandTimeout)
	}

	applier := apply.New(cfg, client,
		apply.WithLogger(log), apply.WithRunID(runID), apply.WithClock(clock))

	if err := applier.Run(ctx); err != nil {
		return err
	}
	if !cfg.Watch {
		return nil
	}

	if rec, err := apply.LastApplied(cfg.Home); err == nil {
		log.Debug().Str("path", rec.Path).Str("strategy", rec.Strategy).Msg("apply on record, watching for changes")
	}

	w := watch.New(watch.Config{
		Candidates: cfg.Candidates,
		Debounce:   cfg.WatchDebounce,
	}, applier, watch.WithLogger(log), watch.WithClock(clock))
	return w.Run(ctx)
}

// sleep waits d on the clock, returning early when ctx ends.
func sleep(ctx context.Context, clock clockwork.Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := clock.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.Chan():
		return nil
	}
}
