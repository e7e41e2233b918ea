package cliconfig

import (
	"fmt"
	"os"
)

// LoadSessionInfo fills Home and Display from the environment if they are not
// already set in the config. Display is recorded for logging only; nothing
// branches on it.
func LoadSessionInfo(cfg *Config) error {
	if cfg.Home == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home: %w", err)
		}
		cfg.Home = h
	}
	if cfg.Display == "" {
		cfg.Display = os.Getenv("DISPLAY")
	}
	return nil
}
