// Package logging builds the logrus logger. The TUI owns the terminal, so
// logs go to a file unless a fallback writer is chosen.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// LevelEnv overrides the configured level.
const LevelEnv = "LOG_LEVEL"

type Options struct {
	Level  string
	Format string // "text" or "json"
	File   string // empty writes to Output
	Output io.Writer
}

// New returns a logger and a close func for its output file.
func New(opts Options) (*log.Logger, func() error, error) {
	logger := log.New()
	closer := func() error { return nil }

	switch {
	case opts.File != "":
		if dir := filepath.Dir(opts.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, closer, fmt.Errorf("create log dir: %w", err)
			}
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, closer, fmt.Errorf("open log file: %w", err)
		}
		logger.SetOutput(f)
		closer = f.Close
	case opts.Output != nil:
		logger.SetOutput(opts.Output)
	default:
		logger.SetOutput(os.Stderr)
	}

	switch strings.ToLower(opts.Format) {
	case "json":
		logger.SetFormatter(&log.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: log.FieldMap{
				log.FieldKeyTime: "ts",
				log.FieldKeyMsg:  "message",
			},
		})
	case "", "text":
		logger.SetFormatter(&log.TextFormatter{DisableColors: true, FullTimestamp: true})
	default:
		closer()
		return nil, func() error { return nil }, fmt.Errorf("unknown log format %q", opts.Format)
	}

	level := opts.Level
	if env := os.Getenv(LevelEnv); env != "" {
		level = env
	}
	if level == "" {
		level = "info"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		closer()
		return nil, func() error { return nil }, fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(lvl)
	return logger, closer, nil
}
