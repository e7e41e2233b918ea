package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (WALLSET_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("home", os.Getenv("WALLSET_HOME"), &cfg.Home)
	s.setString("remote", os.Getenv("WALLSET_REMOTE"), &cfg.Remote)
	s.setString("lock-file", os.Getenv("WALLSET_LOCK_FILE"), &cfg.LockPath)
	s.setString("log-file", os.Getenv("WALLSET_LOG_FILE"), &cfg.LogPath)

	if v := os.Getenv("WALLSET_CANDIDATES"); v != "" {
		s.setStrings("candidates", splitList(v), &cfg.Candidates)
	}

	if err := s.setNonNegativeInt("zone", os.Getenv("WALLSET_ZONE"), &cfg.Zone); err != nil {
		return err
	}

	if err := s.setDuration("initial-delay", os.Getenv("WALLSET_INITIAL_DELAY"), &cfg.InitialDelay); err != nil {
		return err
	}
	if err := s.setDuration("ready-interval", os.Getenv("WALLSET_READY_INTERVAL"), &cfg.ReadyInterval); err != nil {
		return err
	}
	if err := s.setDuration("grace-delay", os.Getenv("WALLSET_GRACE_DELAY"), &cfg.GraceDelay); err != nil {
		return err
	}
	if err := s.setDuration("zone-retry-delay", os.Getenv("WALLSET_ZONE_RETRY_DELAY"), &cfg.ZoneRetryDelay); err != nil {
		return err
	}
	if err := s.setDuration("restart-settle-delay", os.Getenv("WALLSET_RESTART_SETTLE_DELAY"), &cfg.RestartSettleDelay); err != nil {
		return err
	}
	if err := s.setDuration("timeout", os.Getenv("WALLSET_COMMAND_TIMEOUT"), &cfg.CommandTimeout); err != nil {
		return err
	}
	if err := s.setDuration("watch-debounce", os.Getenv("WALLSET_WATCH_DEBOUNCE"), &cfg.WatchDebounce); err != nil {
		return err
	}

	if err := s.setIntFromString("ready-attempts", os.Getenv("WALLSET_READY_ATTEMPTS"), &cfg.ReadyAttempts); err != nil {
		return err
	}
	if err := s.setIntFromString("log-max-size", os.Getenv("WALLSET_LOG_MAX_SIZE_MB"), &cfg.LogMaxSizeMB); err != nil {
		return err
	}
	if err := s.setIntFromString("log-max-backups", os.Getenv("WALLSET_LOG_MAX_BACKUPS"), &cfg.LogMaxBackups); err != nil {
		return err
	}

	s.setBoolFromString("watch", os.Getenv("WALLSET_WATCH"), &cfg.Watch)
	s.setBoolFromString("debug", os.Getenv("WALLSET_DEBUG"), &cfg.Debug)
	s.setBoolFromString("no-log-file", os.Getenv("WALLSET_NO_LOG_FILE"), &cfg.NoLogFile)

	return nil
}
