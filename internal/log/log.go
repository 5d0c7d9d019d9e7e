// SPDX-License-Identifier: EPL-2.0

// Package log holds the process-wide slog logger of the audcap command.
// Library packages take a *slog.Logger option instead of using it.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	logger *slog.Logger
	once   sync.Once
)

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
// Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing to w. JSON is used when json is set, text
// otherwise.
func New(w io.Writer, level string, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Init sets the global logger once. Output goes to stderr, as JSON when
// AUDCAP_ENV is "production".
func Init(level string) {
	once.Do(func() {
		logger = New(os.Stderr, level, os.Getenv("AUDCAP_ENV") == "production")
		slog.SetDefault(logger)
	})
}

// L returns the global logger, initialising it at info level if needed.
func L() *slog.Logger {
	Init("info")
	return logger
}

func With(args ...any) *slog.Logger {
	return L().With(args...)
}

func Debug(msg string, args ...any) { L().Debug(msg, args...) }
func Info(msg string, args ...any)  { L().Info(msg, args...) }
func Warn(msg string, args ...any)  { L().Warn(msg, args...) }
func Error(msg string, args ...any) { L().Error(msg, args...) }
