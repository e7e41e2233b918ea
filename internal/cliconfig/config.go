package cliconfig

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultRemoteCommand is the session control binary driven by the applier.
const DefaultRemoteCommand = "enlightenment_remote"

// Config holds CLI configuration for wallset.
type Config struct {
	Home    string
	Display string

	Remote string
	Zone   int

	Candidates []string

	LockPath string
	LogPath  string

	InitialDelay       time.Duration
	ReadyInterval      time.Duration
	ReadyAttempts      int
	GraceDelay         time.Duration
	ZoneRetryDelay     time.Duration
	RestartSettleDelay time.Duration
	CommandTimeout     time.Duration

	Watch         bool
	WatchDebounce time.Duration

	LogMaxSizeMB  int
	LogMaxBackups int
	Debug         bool
	NoLogFile     bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Remote:             DefaultRemoteCommand,
		Zone:               0,
		InitialDelay:       10 * time.Second,
		ReadyInterval:      time.Second,
		ReadyAttempts:      60,
		GraceDelay:         5 * time.Second,
		ZoneRetryDelay:     2 * time.Second,
		RestartSettleDelay: 3 * time.Second,
		CommandTimeout:     10 * time.Second,
		WatchDebounce:      500 * time.Millisecond,
		LogMaxSizeMB:       5,
		LogMaxBackups:      2,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
// LockPath, LogPath, and Candidates derive from Home when unset.
func (c *Config) Validate() error {
	if c.Home == "" {
		return fmt.Errorf("home is required")
	}

	if c.Remote == "" {
		c.Remote = DefaultRemoteCommand
	}
	if c.LockPath == "" {
		c.LockPath = filepath.Join(c.Home, LockFileName)
	}
	if c.LogPath == "" {
		c.LogPath = filepath.Join(c.Home, LogFileName)
	}
	if len(c.Candidates) == 0 {
		c.Candidates = DefaultCandidates(c.Home)
	}

	if c.Zone < 0 {
		return fmt.Errorf("zone must not be negative")
	}
	if c.ReadyInterval <= 0 {
		return fmt.Errorf("ready interval must be positive")
	}
	if c.ReadyAttempts <= 0 {
		return fmt.Errorf("ready attempts must be positive")
	}
	if c.CommandTimeout <= 0 {
		return fmt.Errorf("command timeout must be positive")
	}
	if c.InitialDelay < 0 || c.GraceDelay < 0 || c.ZoneRetryDelay < 0 || c.RestartSettleDelay < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	if c.Watch && c.WatchDebounce <= 0 {
		return fmt.Errorf("watch debounce must be positive")
	}

	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setStrings sets a string slice if non-empty and flag not changed.
func (s *configSetter) setStrings(flag string, value []string, dst *[]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setIntPtr sets an int value from a pointer if not nil and flag not changed.
// Used for fields where zero is meaningful.
func (s *configSetter) setIntPtr(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setNonNegativeInt parses a string to int and sets the destination,
// rejecting negatives. Zero is applied, for fields where zero is meaningful.
// Used for environment variables that come as strings.
func (s *configSetter) setNonNegativeInt(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i < 0 {
		return fmt.Errorf("parse %s: must not be negative", flag)
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

// splitList splits a colon separated path list, dropping empty entries.
func splitList(value string) []string {
	var list []string
	for _, p := range strings.Split(value, ":") {
		if p = strings.TrimSpace(p); p != "" {
			list = append(list, p)
		}
	}
	return list
}
