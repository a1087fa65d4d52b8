package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"wishpact/internal/app/bootstrap"
)

// API process entrypoint: load config, wire contexts, serve HTTP and the
// realtime stream until interrupted.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.BuildAPI(ctx)
	if err != nil {
		slog.Error("bootstrap api failed", "error", err.Error())
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			slog.Error("api shutdown close failed", "error", err.Error())
		}
	}()

	if err := app.Run(ctx); err != nil {
		slog.Error("wishpact api stopped with error", "error", err.Error())
		os.Exit(1)
	}
}
