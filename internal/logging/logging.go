// Package logging configures the process-wide structured logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/phuslu/log"
)

// Options selects level, output format and destination.
type Options struct {
	Level  string // "trace", "debug", "info", "warn", "error"
	Format string // "console" or "json"
	Color  bool
	Writer io.Writer // defaults to os.Stderr
}

// Setup replaces log.DefaultLogger according to opts.
func Setup(opts Options) {
	log.DefaultLogger = New(opts)
}

// New builds a logger without installing it.
func New(opts Options) log.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	var writer log.Writer
	switch strings.ToLower(opts.Format) {
	case "json":
		writer = &log.IOWriter{Writer: w}
	default:
		writer = &log.ConsoleWriter{
			Writer:         w,
			ColorOutput:    opts.Color,
			QuoteString:    true,
			EndWithMessage: true,
		}
	}

	return log.Logger{
		Level:      ParseLevel(opts.Level),
		TimeFormat: "15:04:05",
		Writer:     writer,
	}
}

// ParseLevel maps a level name to a log.Level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
