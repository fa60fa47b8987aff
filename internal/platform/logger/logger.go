package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a structured JSON logger with source location enabled, tagged
// with the service name and installed as the slog default.
// Level should be a valid slog level string: DEBUG, INFO, WARN, ERROR.
// Unrecognized values default to ERROR.
func New(service, level string) *slog.Logger {
	return NewWithWriter(os.Stdout, service, level)
}

// NewWithWriter is New writing to w.
func NewWithWriter(w io.Writer, service, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelError
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     lvl,
	})

	logger := slog.New(handler.WithAttrs([]slog.Attr{slog.String("service", service)}))
	slog.SetDefault(logger)
	return logger
}
