package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"change-digest/internal/config"
)

// LevelTrace sits below debug and is used for raw request and response dumps
const LevelTrace = slog.Level(-8)

// Setup initializes and configures the application logger. Logs go to stderr
// so stdout stays free for command output.
func Setup(cfg *config.Config) *slog.Logger {
	logger := slog.New(newHandler(os.Stderr, cfg))

	// Set as default logger for the entire application
	slog.SetDefault(logger)

	return logger
}

func newHandler(w io.Writer, cfg *config.Config) slog.Handler {
	handlerOpts := &slog.HandlerOptions{
		Level:       parseLogLevel(cfg.LogLevel),
		ReplaceAttr: renameTraceLevel,
	}

	switch strings.ToLower(cfg.LogFormat) {
	case "json":
		return slog.NewJSONHandler(w, handlerOpts)
	default: // "text" or empty (already validated in config.go)
		return slog.NewTextHandler(w, handlerOpts)
	}
}

// renameTraceLevel prints LevelTrace as TRACE instead of DEBUG-4
func renameTraceLevel(groups []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey || len(groups) > 0 {
		return a
	}
	if level, ok := a.Value.Any().(slog.Level); ok && level == LevelTrace {
		a.Value = slog.StringValue("TRACE")
	}
	return a
}

// parseLogLevel converts string log level to slog.Level
// Note: Input is validated in config.go, so only valid values reach this function
func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info", "": // empty defaults to info
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		// Should never reach here due to validation in config.go
		return slog.LevelInfo
	}
}
