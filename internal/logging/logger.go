package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Output formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ParseLevel maps a config string to a slog level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q (allowed: debug, info, warn, error)", s)
	}
}

// New builds a logger writing to w. Text output goes through tint; color is
// only used when noColor is false.
func New(w io.Writer, level slog.Level, format string, noColor bool, app string) (*slog.Logger, error) {
	var h slog.Handler
	switch format {
	case "", FormatText:
		h = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			NoColor:    noColor,
		})
	case FormatJSON:
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	default:
		return nil, fmt.Errorf("invalid log format %q (allowed: text, json)", format)
	}
	return slog.New(h).With("app", app), nil
}

// StateDir returns $HOME/.local/state/<app>.
func StateDir(app string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", app), nil
}

// OpenFile opens path for appending, creating parent directories. When path
// is empty the file defaults to <StateDir(app)>/<name>.log.
func OpenFile(path, app, name string) (*os.File, error) {
	if path == "" {
		dir, err := StateDir(app)
		if err != nil {
			return nil, fmt.Errorf("resolving state directory: %w", err)
		}
		path = filepath.Join(dir, name+".log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}
