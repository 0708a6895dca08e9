package observability

import (
	"io"
	"log/slog"
	"os"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/lmittmann/tint"

	"github.com/couchcryptid/geomag-wdc-etl/internal/config"
)

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and sets
// it as the slog default. "text" selects a colourised handler on stderr for
// terminals; anything else is the shared JSON logger.
func NewLogger(cfg *config.Config) *slog.Logger {
	if cfg.LogFormat != "text" {
		return sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	}
	logger := NewTextLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)
	return logger
}

// NewTextLogger writes colourised logs to w. Commands that stream data on
// stdout use it on stderr whatever LOG_FORMAT says.
func NewTextLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      levelOf(level),
		TimeFormat: time.Kitchen,
	}))
}

// levelOf accepts the slog level names; unknown values mean info.
func levelOf(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
