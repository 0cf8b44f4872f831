// Package log configures the process-wide slog default used by every
// binary. Components scope themselves with WithModule.
package log

import (
	"log/slog"
	"os"
)

// Setup installs a text handler at the given level on the default logger.
// Unknown level strings fall back to info.
func Setup(logLevel string) {
	var level slog.Level

	err := level.UnmarshalText([]byte(logLevel))
	if err != nil {
		level = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// WithModule returns a logger tagged with the component name.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
