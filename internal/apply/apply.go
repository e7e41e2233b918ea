// Package apply carries out the wallpaper setup against a running session:
// wait for the desktop to answer, then walk the candidate list through the
// fallback strategies until one sticks.
package apply

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/kuns-os/wallset/internal/cliconfig"
	"github.com/kuns-os/wallset/internal/session"
)

// ErrSessionNotReady reports that the desktop never answered within the
// configured number of probes. The run is over; nothing retries past this.
var ErrSessionNotReady = errors.New("session not ready")

// ErrNoCandidateApplied reports that every candidate was missing or refused
// by all strategies.
var ErrNoCandidateApplied = errors.New("failed to set any wallpaper")

// Applier performs the setup procedure. Construct with New.
type Applier struct {
	client session.Client
	clock  clockwork.Clock
	log    zerolog.Logger
	runID  string

	candidates []string
	zone       int

	readyInterval      time.Duration
	readyAttempts      int
	graceDelay         time.Duration
	zoneRetryDelay     time.Duration
	restartSettleDelay time.Duration

	statePath string
}

// Option configures optional behavior of an Applier.
type Option func(*Applier)

// WithClock substitutes the clock behind every delay and probe interval.
func WithClock(c clockwork.Clock) Option {
	return func(a *Applier) { a.clock = c }
}

// WithLogger sets the logger. Without it the applier logs nowhere.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Applier) { a.log = l }
}

// WithRunID tags the saved apply record with the run identifier.
func WithRunID(id string) Option {
	return func(a *Applier) { a.runID = id }
}

// New builds an Applier from cfg, talking to the desktop through client.
func New(cfg cliconfig.Config, client session.Client, opts ...Option) *Applier {
	a := &Applier{
		client:             client,
		clock:              clockwork.NewRealClock(),
		log:                zerolog.Nop(),
		candidates:         cfg.Candidates,
		zone:               cfg.Zone,
		readyInterval:      cfg.ReadyInterval,
		readyAttempts:      cfg.ReadyAttempts,
		graceDelay:         cfg.GraceDelay,
		zoneRetryDelay:     cfg.ZoneRetryDelay,
		restartSettleDelay: cfg.RestartSettleDelay,
	}
	if cfg.Home != "" {
		a.statePath = StatePath(cfg.Home)
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run performs one apply pass: the readiness wait, the grace delay, the
// candidate walk, then the diagnostic verify. The returned error is nil
// exactly when some candidate was applied. Watch mode runs the same pass
// again after a candidate file changes.
func (a *Applier) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := a.awaitReady(ctx); err != nil {
		return err
	}
	if err := a.sleep(ctx, a.graceDelay); err != nil {
		return err
	}
	rec, err := a.applyFirst(ctx)
	if err != nil {
		return err
	}
	a.verify(ctx, rec)
	return nil
}

// awaitReady probes the desktop once per readyInterval until it answers, at
// most readyAttempts times.
func (a *Applier) awaitReady(ctx context.Context) error {
	for attempt := 1; attempt <= a.readyAttempts; attempt++ {
		err := a.client.Ready(ctx)
		if err == nil {
			a.log.Info().Int("attempt", attempt).Msg("desktop ready")
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.log.Debug().Int("attempt", attempt).Err(err).Msg("desktop not ready yet")
		if attempt < a.readyAttempts {
			if err := a.sleep(ctx, a.readyInterval); err != nil {
				return err
			}
		}
	}
	a.log.Error().Int("attempts", a.readyAttempts).Msg("desktop never became ready, giving up")
	return fmt.Errorf("%w after %d attempts", ErrSessionNotReady, a.readyAttempts)
}

// applyFirst walks the candidates in priority order. Missing paths are
// skipped; a candidate that fails every strategy is logged and the walk
// moves on to the next.
func (a *Applier) applyFirst(ctx context.Context) (Record, error) {
	for _, cand := range a.candidates {
		if _, err := os.Stat(cand); err != nil {
			a.log.Debug().Str("path", cand).Msg("candidate missing, skipping")
			continue
		}
		a.log.Info().Str("path", cand).Msg("setting wallpaper")
		strat, err := a.applyCandidate(ctx, cand)
		if err == nil {
			a.log.Info().Str("path", cand).Str("strategy", strat).Msg("wallpaper applied")
			rec := Record{Path: cand, Strategy: strat, AppliedAt: a.clock.Now().UTC(), Run: a.runID}
			a.saveRecord(rec)
			return rec, nil
		}
		if ctx.Err() != nil {
			return Record{}, ctx.Err()
		}
		a.log.Warn().Str("path", cand).Err(err).Msg("all strategies failed for candidate")
	}
	a.log.Error().Msg("failed to set any wallpaper")
	return Record{}, ErrNoCandidateApplied
}

// strategy is one way of asking the desktop to take a wallpaper. delay is
// waited out before the attempt.
type strategy struct {
	name  string
	delay time.Duration
	apply func(ctx context.Context, path string) error
}

// strategies returns the fallback chain for one candidate: the plain set,
// the zone-qualified set after a short pause, and finally a shell restart
// followed by one more plain set.
func (a *Applier) strategies() []strategy {
	return []strategy{
		{name: "direct", apply: a.applyDirect},
		{name: "zone", delay: a.zoneRetryDelay, apply: a.applyZone},
		{name: "restart", apply: a.applyRestart},
	}
}

// applyCandidate tries each strategy in order and returns the name of the
// first that succeeds. Every failed attempt is logged with its outcome.
func (a *Applier) applyCandidate(ctx context.Context, path string) (string, error) {
	var lastErr error
	for _, s := range a.strategies() {
		if s.delay > 0 {
			if err := a.sleep(ctx, s.delay); err != nil {
				return "", err
			}
		}
		err := s.apply(ctx, path)
		if err == nil {
			return s.name, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
		ev := a.log.Warn().Str("strategy", s.name).Str("path", path).Err(err)
		if code, ok := session.ExitCode(err); ok {
			ev = ev.Int("exit_code", code)
		}
		ev.Msg("apply attempt failed")
	}
	return "", lastErr
}

func (a *Applier) applyDirect(ctx context.Context, path string) error {
	return a.client.SetBackground(ctx, path)
}

func (a *Applier) applyZone(ctx context.Context, path string) error {
	return a.client.SetBackgroundZone(ctx, path, a.zone)
}

// applyRestart restarts the session shell, lets it settle, and retries the
// plain set once.
func (a *Applier) applyRestart(ctx context.Context, path string) error {
	a.log.Info().Msg("restarting session shell")
	if err := a.client.RestartShell(ctx); err != nil {
		return fmt.Errorf("restart shell: %w", err)
	}
	if err := a.sleep(ctx, a.restartSettleDelay); err != nil {
		return err
	}
	return a.client.SetBackground(ctx, path)
}

// verify asks the desktop what backgrounds it now reports. Diagnostics only;
// the run's outcome is already decided.
func (a *Applier) verify(ctx context.Context, rec Record) {
	list, err := a.client.Backgrounds(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("post-apply background query failed")
		return
	}
	a.log.Info().Strs("backgrounds", list).Str("path", rec.Path).Msg("backgrounds after apply")
}

// sleep waits d on the injected clock, returning early when ctx ends.
func (a *Applier) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := a.clock.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.Chan():
		return nil
	}
}
