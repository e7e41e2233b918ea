package cliconfig

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// logTimeLayout is the bracketed local timestamp written to the session log.
const logTimeLayout = "[2006-01-02 15:04:05]"

var logger zerolog.Logger

func init() {
	logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// Logger returns the package logger, used before configuration is loaded.
func Logger() zerolog.Logger {
	return logger
}

// OpenRunLogger builds the logger for a run: the stderr console stream plus
// the session log file at cfg.LogPath, rotated once it grows past
// cfg.LogMaxSizeMB. The returned closer releases the file sink.
// With cfg.NoLogFile set, only the console stream is used.
func OpenRunLogger(cfg Config) (zerolog.Logger, io.Closer) {
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	level := zerolog.InfoLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	}

	if cfg.NoLogFile || cfg.LogPath == "" {
		log := zerolog.New(console).Level(level).With().Timestamp().Logger()
		return log, nopCloser{}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0o700); err != nil {
		logger.Warn().Err(err).Str("path", cfg.LogPath).Msg("cannot create log directory, logging to stderr only")
		log := zerolog.New(console).Level(level).With().Timestamp().Logger()
		return log, nopCloser{}
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.LogPath,
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	}
	file := zerolog.ConsoleWriter{
		Out:             rotator,
		NoColor:         true,
		FormatTimestamp: fileTimestamp,
		FormatLevel:     func(interface{}) string { return "" },
	}

	w := zerolog.MultiLevelWriter(console, file)
	log := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return log, rotator
}

// fileTimestamp renders the bracketed local time the session log has always
// carried, one line per entry.
func fileTimestamp(i interface{}) string {
	ts, ok := i.(string)
	if !ok {
		return ""
	}
	t, err := time.Parse(zerolog.TimeFieldFormat, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format(logTimeLayout)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
