package bootstrap

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"wishpact/internal/platform/config"
	"wishpact/internal/platform/httpserver"
	"wishpact/internal/platform/messaging"
	"wishpact/internal/platform/realtime"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type APIApp struct {
	runtime *Runtime
	server  *httpserver.Server
	hub     *realtime.Hub
}

type WorkerApp struct {
	runtime *Runtime
}

func BuildAPI(ctx context.Context) (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	rt, err := NewRuntime(ctx, cfg, "api")
	if err != nil {
		return nil, err
	}

	hub := realtime.NewHub(rt.Logger)
	server := httpserver.New(
		rt.Modules,
		rt.Logger,
		normalizeAddr(cfg.HTTPPort),
		httpserver.WithEvents(hub),
		httpserver.WithMetrics(rt.Registry),
	)
	return &APIApp{runtime: rt, server: server, hub: hub}, nil
}

func BuildWorker(ctx context.Context) (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	rt, err := NewRuntime(ctx, cfg, "worker")
	if err != nil {
		return nil, err
	}
	return &WorkerApp{runtime: rt}, nil
}

// Run serves HTTP until ctx is cancelled. Without Redis the API process
// relays its own outbox into the local bus; with the memory store it also
// runs the background sweeps since no other process can see its state.
func (a *APIApp) Run(ctx context.Context) error {
	rt := a.runtime
	group, ctx := errgroup.WithContext(ctx)

	if err := a.hub.Attach(ctx, rt.Bus); err != nil {
		return err
	}
	if rt.Redis != nil {
		group.Go(func() error {
			return messaging.RedisBridge{Client: rt.Redis, Local: rt.Bus, Logger: rt.Logger}.Run(ctx)
		})
	} else {
		startRelay(ctx, group, rt)
	}
	if rt.Config.StoreDriver == config.StoreMemory {
		startSweeps(ctx, group, rt)
	}

	group.Go(a.server.Start)
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := a.server.Shutdown(shutdownCtx)
		a.hub.Close()
		return err
	})

	rt.Logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	err := group.Wait()
	rt.Bus.Wait()
	return err
}

func (a *APIApp) Close() error {
	return a.runtime.Close()
}

// Run drives the outbox relay and the periodic sweeps until ctx is cancelled.
func (w *WorkerApp) Run(ctx context.Context) error {
	rt := w.runtime
	group, ctx := errgroup.WithContext(ctx)

	if rt.Config.StoreDriver == config.StoreMemory {
		rt.Logger.Warn("worker started with the memory store; it cannot see API state",
			"event", "bootstrap_worker_memory_store",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	if rt.Redis != nil {
		startRelay(ctx, group, rt)
	}
	startSweeps(ctx, group, rt)

	rt.Logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"reconcile_interval", rt.Config.ReconcileInterval.String(),
		"outbox_poll_interval", rt.Config.OutboxPollInterval.String(),
	)
	return group.Wait()
}

func (w *WorkerApp) Close() error {
	return w.runtime.Close()
}

func startRelay(ctx context.Context, group *errgroup.Group, rt *Runtime) {
	relay := rt.Relay()
	group.Go(func() error {
		return every(ctx, rt.Logger, "outbox_relay", rt.Config.OutboxPollInterval, func(ctx context.Context) error {
			_, err := relay.RunOnce(ctx)
			return err
		})
	})
}

func startSweeps(ctx context.Context, group *errgroup.Group, rt *Runtime) {
	cfg := rt.Config
	if cfg.EnableDeadlineReconciler {
		reconciler := rt.Modules.Verification.DeadlineReconciler
		group.Go(func() error {
			return every(ctx, rt.Logger, "deadline_reconciler", cfg.ReconcileInterval, func(ctx context.Context) error {
				_, err := reconciler.RunOnce(ctx)
				return err
			})
		})
	}
	if cfg.EnableTreasuryReconciler {
		reconciler := rt.Modules.Verification.TreasuryReconciler
		group.Go(func() error {
			return every(ctx, rt.Logger, "treasury_reconciler", cfg.ReconcileInterval, func(ctx context.Context) error {
				_, err := reconciler.RunOnce(ctx)
				return err
			})
		})
	}
	if cfg.EnableProposalExpiry {
		expiry := rt.Modules.Governor.Expiry
		group.Go(func() error {
			return every(ctx, rt.Logger, "proposal_expiry", cfg.ReconcileInterval, func(ctx context.Context) error {
				_, err := expiry.RunOnce(ctx)
				return err
			})
		})
	}
}

// every runs fn immediately and then on each tick. Failures are logged and
// retried on the next tick.
func every(ctx context.Context, logger *slog.Logger, name string, interval time.Duration, fn func(context.Context) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := fn(ctx); err != nil && ctx.Err() == nil {
			logger.Error("background loop iteration failed",
				"event", "bootstrap_loop_failed",
				"module", "internal/app/bootstrap",
				"layer", "worker",
				"loop", name,
				"error", err.Error(),
			)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
