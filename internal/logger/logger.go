// ABOUTME: Structured logging configuration using log/slog
// ABOUTME: Builds text or JSON loggers for the CLI and a file logger for the TUI

package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// New creates a logger writing to w.
// level: debug, info, warn, error (default: info)
// format: text, json (default: text)
func New(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// ParseLevel converts a string log level to slog.Level
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

// OpenFile opens debug.log in configDir for appending, so the TUI can log
// without drawing over the terminal. The caller closes the file.
func OpenFile(configDir string) (*os.File, error) {
	if configDir == "" {
		return nil, fmt.Errorf("no config directory for debug log")
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	logPath := filepath.Join(configDir, "debug.log")
	return os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
}
