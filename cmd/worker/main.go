package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"wishpact/internal/app/bootstrap"
)

// Worker process entrypoint: outbox relay, deadline and treasury
// reconcilers, proposal expiry.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.BuildWorker(ctx)
	if err != nil {
		slog.Error("bootstrap worker failed", "error", err.Error())
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			slog.Error("worker shutdown close failed", "error", err.Error())
		}
	}()

	if err := app.Run(ctx); err != nil {
		slog.Error("wishpact worker stopped with error", "error", err.Error())
		os.Exit(1)
	}
}
