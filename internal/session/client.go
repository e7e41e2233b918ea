// Package session drives the Enlightenment desktop through its remote
// control command.
package session

import "context"

// Client is the control surface the applier needs from the running session.
// A nil error means the operation took effect; any non-nil error means it
// did not, whether the command refused or never ran.
type Client interface {
	// Ready probes whether the session answers control commands yet.
	Ready(ctx context.Context) error

	// Backgrounds lists the backgrounds the session currently reports.
	Backgrounds(ctx context.Context) ([]string, error)

	// SetBackground applies the wallpaper at path to all containers and desks.
	SetBackground(ctx context.Context, path string) error

	// SetBackgroundZone applies the wallpaper at path to a single zone of
	// container 0.
	SetBackgroundZone(ctx context.Context, path string, zone int) error

	// RestartShell restarts the session shell in place.
	RestartShell(ctx context.Context) error
}
