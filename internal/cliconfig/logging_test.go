package cliconfig

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

var logLinePattern = regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] `)

func TestOpenRunLogger(t *testing.T) {
	t.Run("writes bracketed timestamp lines to the log file", func(t *testing.T) {
		tmp := t.TempDir()
		cfg := DefaultConfig()
		cfg.LogPath = filepath.Join(tmp, "wallpaper-setup.log")

		log, closer := OpenRunLogger(cfg)
		log.Info().Msg("wallpaper setup started")
		log.Info().Str("path", "/tmp/bg.png").Msg("wallpaper applied")
		if err := closer.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		data, err := os.ReadFile(cfg.LogPath)
		if err != nil {
			t.Fatalf("reading log file: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 2 {
			t.Fatalf("got %d lines, want 2: %q", len(lines), lines)
		}
		for _, line := range lines {
			if !logLinePattern.MatchString(line) {
				t.Errorf("line %q does not start with a bracketed timestamp", line)
			}
		}
		if !strings.Contains(lines[0], "wallpaper setup started") {
			t.Errorf("first line %q missing message", lines[0])
		}
		if !strings.Contains(lines[1], "wallpaper applied") {
			t.Errorf("second line %q missing message", lines[1])
		}
	})

	t.Run("creates missing log directory", func(t *testing.T) {
		tmp := t.TempDir()
		cfg := DefaultConfig()
		cfg.LogPath = filepath.Join(tmp, "nested", "dir", "setup.log")

		log, closer := OpenRunLogger(cfg)
		log.Info().Msg("hello")
		if err := closer.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		if _, err := os.Stat(cfg.LogPath); err != nil {
			t.Errorf("log file not created: %v", err)
		}
	})

	t.Run("no log file leaves the filesystem alone", func(t *testing.T) {
		tmp := t.TempDir()
		cfg := DefaultConfig()
		cfg.LogPath = filepath.Join(tmp, "setup.log")
		cfg.NoLogFile = true

		log, closer := OpenRunLogger(cfg)
		log.Info().Msg("console only")
		if err := closer.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		if _, err := os.Stat(cfg.LogPath); !os.IsNotExist(err) {
			t.Errorf("log file exists with NoLogFile set, stat err = %v", err)
		}
	})

	t.Run("debug entries are gated by the debug flag", func(t *testing.T) {
		tmp := t.TempDir()
		cfg := DefaultConfig()
		cfg.LogPath = filepath.Join(tmp, "setup.log")

		log, closer := OpenRunLogger(cfg)
		log.Debug().Msg("candidate missing, skipping")
		log.Info().Msg("desktop ready")
		if err := closer.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		data, err := os.ReadFile(cfg.LogPath)
		if err != nil {
			t.Fatalf("reading log file: %v", err)
		}
		if strings.Contains(string(data), "candidate missing") {
			t.Errorf("debug entry written without debug enabled: %q", string(data))
		}

		cfg.LogPath = filepath.Join(tmp, "setup-debug.log")
		cfg.Debug = true
		log, closer = OpenRunLogger(cfg)
		log.Debug().Msg("candidate missing, skipping")
		if err := closer.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		data, err = os.ReadFile(cfg.LogPath)
		if err != nil {
			t.Fatalf("reading debug log file: %v", err)
		}
		if !strings.Contains(string(data), "candidate missing") {
			t.Errorf("debug entry missing with debug enabled: %q", string(data))
		}
	})
}
