package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/drumato/fsshim/cmd"
	"github.com/drumato/fsshim/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.SetDefault(newLogger(ctx, os.Stderr, os.Getenv("LOG_LEVEL")))

	c := cmd.New()

	if err := c.ExecuteContext(ctx); err != nil {
		slog.ErrorContext(ctx, "execution failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// newLogger builds the process logger. An empty or unknown level falls back
// to info; an unknown one is reported.
func newLogger(ctx context.Context, w io.Writer, level string) *slog.Logger {
	logLevel, err := config.ParseLogLevel(level)
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
	if err != nil && level != "" {
		logger.WarnContext(ctx, "ignoring LOG_LEVEL", "value", level, "error", err)
	}
	return logger
}
