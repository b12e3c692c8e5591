/*
logging.go - Structured logger for the server

PURPOSE:
  Builds the slog.Logger every component receives through api.Dependencies.
  Level and format come from the [log] config section.

FORMATS:
  text  key=value lines, the default for local runs
  json  one object per line, for log shippers

LEVELS:
  debug, info (default), warn or warning, error. Unknown names fall back
  to info rather than failing startup.

SEE ALSO:
  - config/config.go: LogConfig values
  - metrics.go: Prometheus side of observability
*/
package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type LogConfig struct {
	Level  string
	Format string
}

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// NewLogger logs to stdout and also becomes slog's default, so chi's
// request logger and stray log calls share its format.
func NewLogger(cfg LogConfig) *slog.Logger {
	logger := NewLoggerTo(os.Stdout, cfg)
	slog.SetDefault(logger)
	return logger
}

// NewLoggerTo leaves the default logger alone.
func NewLoggerTo(w io.Writer, cfg LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(name string) slog.Level {
	if lvl, ok := levels[strings.ToLower(strings.TrimSpace(name))]; ok {
		return lvl
	}
	return slog.LevelInfo
}
