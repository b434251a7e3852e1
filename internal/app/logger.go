package app

import (
	"io"
	"log/slog"
	"strings"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/config"
)

// NewLogger builds the process logger from the log section.
func NewLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.Level))); err != nil {
		level = slog.LevelInfo
	}

	handlerOptions := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOptions))
	}

	return slog.New(slog.NewTextHandler(w, handlerOptions))
}
