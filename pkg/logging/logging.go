// Package logging builds the zerolog logger shared by the API server and CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const filePermissions = 0o640

// Options holds logger configuration
type Options struct {
	// Level is the minimum level to output (trace, debug, info, warn, error)
	Level string

	// Format is "json" or "console"
	Format string

	// File is an optional path; logs go to stderr when empty
	File string
}

// New creates a logger from options. The returned closer releases the log
// file, if one was opened.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	var output io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, filePermissions)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
		closer = file
	}

	logger := NewWithWriter(output, opts.Level, opts.Format)
	return logger, closer, nil
}

// NewWithWriter creates a logger writing to w
func NewWithWriter(w io.Writer, level, format string) zerolog.Logger {
	if strings.ToLower(format) == "console" {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}
	}

	lvl := ParseLevel(level)
	logger := zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	if lvl <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}

	return logger
}

// ParseLevel parses a level name, falling back to info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "warning":
		return zerolog.WarnLevel
	case "off", "none":
		return zerolog.Disabled
	}
	l, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return l
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
