// Package telemetry provides structured logging for the engine's control
// thread, offline validation harness and CLI. Nothing in this package is
// ever called from the processing path: logging allocates and formats,
// both forbidden inside process_stereo/process_mono.
package telemetry

import (
	"os"

	"github.com/charmbracelet/log"
)

// Logger wraps a charmbracelet/log.Logger with the engine's conventions:
// a component name prefix and a level set from the environment at startup.
type Logger struct {
	*log.Logger
}

// New creates a logger for the named component (e.g. "engine", "cli",
// "config"), writing to stderr at info level by default.
func New(component string) *Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          component,
		ReportTimestamp: true,
	})
	return &Logger{Logger: l}
}

// SetLevelFromEnv raises or lowers verbosity based on the REVERB_LOG_LEVEL
// environment variable ("debug", "info", "warn", "error"); unset or
// unrecognized values leave the logger at its current level.
func (l *Logger) SetLevelFromEnv() {
	switch os.Getenv("REVERB_LOG_LEVEL") {
	case "debug":
		l.SetLevel(log.DebugLevel)
	case "info":
		l.SetLevel(log.InfoLevel)
	case "warn":
		l.SetLevel(log.WarnLevel)
	case "error":
		l.SetLevel(log.ErrorLevel)
	}
}
