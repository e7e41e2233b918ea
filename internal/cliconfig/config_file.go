package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Home               string   `toml:"home"`
	Remote             string   `toml:"remote"`
	Zone               *int     `toml:"zone"`
	Candidates         []string `toml:"candidates"`
	LockPath           string   `toml:"lock_file"`
	LogPath            string   `toml:"log_file"`
	InitialDelay       string   `toml:"initial_delay"`
	ReadyInterval      string   `toml:"ready_interval"`
	ReadyAttempts      int      `toml:"ready_attempts"`
	GraceDelay         string   `toml:"grace_delay"`
	ZoneRetryDelay     string   `toml:"zone_retry_delay"`
	RestartSettleDelay string   `toml:"restart_settle_delay"`
	CommandTimeout     string   `toml:"command_timeout"`
	Watch              *bool    `toml:"watch"`
	WatchDebounce      string   `toml:"watch_debounce"`
	LogMaxSizeMB       int      `toml:"log_max_size_mb"`
	LogMaxBackups      int      `toml:"log_max_backups"`
	Debug              *bool    `toml:"debug"`
	NoLogFile          *bool    `toml:"no_log_file"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.wallset/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".wallset", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("home", fc.Home, &cfg.Home)
	s.setString("remote", fc.Remote, &cfg.Remote)
	s.setString("lock-file", fc.LockPath, &cfg.LockPath)
	s.setString("log-file", fc.LogPath, &cfg.LogPath)

	s.setIntPtr("zone", fc.Zone, &cfg.Zone)
	s.setStrings("candidates", fc.Candidates, &cfg.Candidates)

	if err := s.setDuration("initial-delay", fc.InitialDelay, &cfg.InitialDelay); err != nil {
		return err
	}
	if err := s.setDuration("ready-interval", fc.ReadyInterval, &cfg.ReadyInterval); err != nil {
		return err
	}
	if err := s.setDuration("grace-delay", fc.GraceDelay, &cfg.GraceDelay); err != nil {
		return err
	}
	if err := s.setDuration("zone-retry-delay", fc.ZoneRetryDelay, &cfg.ZoneRetryDelay); err != nil {
		return err
	}
	if err := s.setDuration("restart-settle-delay", fc.RestartSettleDelay, &cfg.RestartSettleDelay); err != nil {
		return err
	}
	if err := s.setDuration("timeout", fc.CommandTimeout, &cfg.CommandTimeout); err != nil {
		return err
	}
	if err := s.setDuration("watch-debounce", fc.WatchDebounce, &cfg.WatchDebounce); err != nil {
		return err
	}

	s.setInt("ready-attempts", fc.ReadyAttempts, &cfg.ReadyAttempts)
	s.setInt("log-max-size", fc.LogMaxSizeMB, &cfg.LogMaxSizeMB)
	s.setInt("log-max-backups", fc.LogMaxBackups, &cfg.LogMaxBackups)

	s.setBool("watch", fc.Watch, &cfg.Watch)
	s.setBool("debug", fc.Debug, &cfg.Debug)
	s.setBool("no-log-file", fc.NoLogFile, &cfg.NoLogFile)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
