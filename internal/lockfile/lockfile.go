// Package lockfile guards the wallpaper setup with a pid file so duplicate
// session autostarts collapse into a single working instance.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

// ErrHeld reports that the lock file already exists.
var ErrHeld = errors.New("lock already held")

// Lock is an acquired pid file. Release removes it.
type Lock struct {
	path string
	once sync.Once
}

// Acquire creates the pid file at path, failing with ErrHeld if one already
// exists. The existence check and the write are deliberately two separate
// steps, not an atomic create: presence of the file is the only signal other
// instances look at.
func Acquire(path string) (*Lock, error) {
	if _, err := os.Stat(path); err == nil {
		if pid, perr := HolderPID(path); perr == nil {
			return nil, fmt.Errorf("%w by pid %d", ErrHeld, pid)
		}
		return nil, ErrHeld
	}
	pid := strconv.Itoa(os.Getpid()) + "\n"
	if err := os.WriteFile(path, []byte(pid), 0o600); err != nil {
		return nil, fmt.Errorf("write lock: %w", err)
	}
	return &Lock{path: path}, nil
}

// Release removes the lock file. Safe to call more than once; meant to be
// deferred so the file is gone on every exit path.
func (l *Lock) Release() error {
	var err error
	l.once.Do(func() {
		if rmErr := os.Remove(l.path); rmErr != nil && !os.IsNotExist(rmErr) {
			err = rmErr
		}
	})
	return err
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// HolderPID reads the pid recorded in the lock file at path.
func HolderPID(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, fmt.Errorf("parse lock pid: %w", err)
	}
	return pid, nil
}

// Alive reports whether a process with the given pid exists. EPERM counts as
// alive: the process is there, we just cannot signal it.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	if err == nil {
		return true
	}
	return errors.Is(err, unix.EPERM)
}
