package logger

import (
	"io"
	"log/slog"
	"os"
)

var Log *slog.Logger

func Init() {
	// JSON handler for production-ready logging
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	Log = slog.New(handler)
}

// L returns the process logger, or a discarding one when Init was never
// called (unit tests construct usecases without booting main).
func L() *slog.Logger {
	if Log == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return Log
}
