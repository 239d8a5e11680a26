package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/contre95/sigwatch/src/features/config"
)

// Prefix is prepended to every log line and to fatal error messages.
const Prefix = "sigwatch"

// SetupLogger builds the process logger from the logger configuration.
func SetupLogger(cfg *config.Manager) *slog.Logger {
	return NewLogger(os.Stderr, cfg.Get().Logger)
}

// NewLogger returns a slog logger backed by a charmbracelet handler writing to w.
func NewLogger(w io.Writer, cfg config.Logger) *slog.Logger {
	var formatter log.Formatter
	switch cfg.Format {
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	default:
		formatter = log.TextFormatter
	}

	level := log.WarnLevel
	switch cfg.Level {
	case "debug":
		level = log.DebugLevel
	case "info":
		level = log.InfoLevel
	case "error":
		level = log.ErrorLevel
	}

	handler := log.NewWithOptions(w, log.Options{
		ReportCaller:    level == log.DebugLevel,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          Prefix,
		Formatter:       formatter,
		Level:           level,
	})

	return slog.New(handler)
}
