// Package logutils builds the process logger.
package logutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// ParseLevel accepts zerolog level names case-insensitively, plus "warning".
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}

// New returns the process logger and a func that releases its output.
//
// With a file, JSON lines are appended to it (parent dirs are created).
// Without one, a console writer on stderr is used so stdout stays free for
// command output.
func New(level, file string) (zerolog.Logger, func(), error) {
	noop := func() {}

	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), noop, err
	}

	if file == "" {
		console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
		return NewWithWriter(console, lvl), noop, nil
	}

	f, err := openAppend(file)
	if err != nil {
		return zerolog.Nop(), noop, err
	}
	return NewWithWriter(f, lvl), func() { _ = f.Close() }, nil
}

func openAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// NewWithWriter returns a timestamped logger on w.
func NewWithWriter(w io.Writer, lvl zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Component tags l with the component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
