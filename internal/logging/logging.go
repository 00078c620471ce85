// Package logging builds the slog logger shared by every component.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// ParseLevel maps a level name onto a slog level.
func ParseLevel(name string) (slog.Level, error) {
	level, ok := levels[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}

// New returns a tint-formatted logger. Unknown levels fall back to info.
func New(w io.Writer, level string, color bool) *slog.Logger {
	parsed, err := ParseLevel(level)
	logger := slog.New(tint.NewHandler(w, &tint.Options{
		Level:      parsed,
		TimeFormat: time.Kitchen,
		NoColor:    !color,
	}))
	if err != nil {
		logger.Warn("falling back to info logging", "err", err)
	}
	return logger
}

// Terminal logs to f, with color only when f is a terminal.
func Terminal(f *os.File, level string) *slog.Logger {
	return New(f, level, isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
