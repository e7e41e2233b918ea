package session

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// RemoteClient talks to the session by spawning its remote control command
// (enlightenment_remote) once per call. Timeout bounds a single invocation
// on top of the caller's context; zero means no extra bound.
type RemoteClient struct {
	Command string
	Timeout time.Duration
}

// NewRemoteClient returns a RemoteClient invoking the given command.
func NewRemoteClient(command string, timeout time.Duration) *RemoteClient {
	if command == "" {
		command = "enlightenment_remote"
	}
	return &RemoteClient{Command: command, Timeout: timeout}
}

// Ready asks the session for its background list; any answer means the
// control endpoint is up.
func (c *RemoteClient) Ready(ctx context.Context) error {
	_, err := c.run(ctx, "-desktop-bg-list")
	return err
}

// Backgrounds returns the background entries the session reports, one per
// non-empty output line.
func (c *RemoteClient) Backgrounds(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "-desktop-bg-list")
	if err != nil {
		return nil, err
	}
	var list []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			list = append(list, line)
		}
	}
	return list, nil
}

// SetBackground applies path to every container, zone, and desk.
func (c *RemoteClient) SetBackground(ctx context.Context, path string) error {
	_, err := c.run(ctx, "-desktop-bg-add", "-1", "-1", "-1", "-1", path)
	return err
}

// SetBackgroundZone applies path to one zone of container 0, leaving the
// desk coordinates wildcarded.
func (c *RemoteClient) SetBackgroundZone(ctx context.Context, path string, zone int) error {
	_, err := c.run(ctx, "-desktop-bg-add", "0", strconv.Itoa(zone), "-1", "-1", path)
	return err
}

// RestartShell restarts the session shell in place.
func (c *RemoteClient) RestartShell(ctx context.Context) error {
	_, err := c.run(ctx, "-restart")
	return err
}

func (c *RemoteClient) run(ctx context.Context, args ...string) ([]byte, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Command, args...)
	// A killed remote can leave a child behind still holding the output
	// pipe; WaitDelay closes it rather than waiting for the orphan.
	cmd.WaitDelay = time.Second
	out, err := cmd.CombinedOutput()
	if err == nil {
		return out, nil
	}

	desc := c.Command + " " + strings.Join(args, " ")
	if ctx.Err() != nil {
		return out, fmt.Errorf("%s: %w", desc, ctx.Err())
	}
	if msg := strings.TrimSpace(string(out)); msg != "" {
		return out, fmt.Errorf("%s: %w: %s", desc, err, msg)
	}
	return out, fmt.Errorf("%s: %w", desc, err)
}

// ExitCode extracts the process exit status from an error returned by a
// Client call, when one is present. Spawn failures carry no exit status.
func ExitCode(err error) (int, bool) {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), true
	}
	return 0, false
}

var _ Client = (*RemoteClient)(nil)
