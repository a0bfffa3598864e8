package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// BuildLogger returns the logger shared by the cli, the http server and the engine.
// format is "json" or "text"; anything else falls back to json.
func BuildLogger(level, format string) *slog.Logger {
	return BuildLoggerTo(os.Stderr, level, format)
}

func BuildLoggerTo(w io.Writer, level, format string) *slog.Logger {
	ops := &slog.HandlerOptions{
		AddSource: true,
		Level:     ParseLevel(level),
	}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, ops))
	}
	return slog.New(slog.NewJSONHandler(w, ops))
}

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

// Discard is used by tests and library callers that do not pass a logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ErrAttr(err error) slog.Attr {
	return slog.Any("error", err)
}
