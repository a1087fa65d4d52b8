package workers

import (
	"context"
	"log/slog"
	"time"

	application "wishpact/contexts/wish-verification/verification-service/application"
	"wishpact/contexts/wish-verification/verification-service/application/commands"
	"wishpact/contexts/wish-verification/verification-service/domain/entities"
	"wishpact/contexts/wish-verification/verification-service/ports"
)

// DeadlineReconciler force-resolves wishes whose verification deadline passed
// without further voter activity.
type DeadlineReconciler struct {
	Wishes    ports.WishRepository
	Resolver  commands.ResolutionUseCase
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

type ReconcileReport struct {
	Scanned  int
	Resolved int
	Failed   int
}

// RunOnce resolves one batch of overdue wishes. Resolution is idempotent, so
// overlapping runs in several processes are safe.
func (r DeadlineReconciler) RunOnce(ctx context.Context) (ReconcileReport, error) {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}
	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	overdue, err := r.Wishes.ListOverdueWishes(ctx, entities.WishStatusPendingVerification, now, limit)
	if err != nil {
		logger.Error("deadline reconciler listing failed",
			"event", "verification_deadline_reconcile_list_failed",
			"module", "wish-verification/verification-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return ReconcileReport{}, err
	}

	report := ReconcileReport{Scanned: len(overdue)}
	for _, wish := range overdue {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		result, err := r.Resolver.Resolve(ctx, wish.WishID)
		if err != nil {
			report.Failed++
			logger.Error("deadline reconciler resolve failed",
				"event", "verification_deadline_reconcile_resolve_failed",
				"module", "wish-verification/verification-service",
				"layer", "worker",
				"wish_id", wish.WishID,
				"error", err.Error(),
			)
			continue
		}
		if result.Transitioned {
			report.Resolved++
		}
	}

	if report.Scanned > 0 {
		logger.Info("deadline reconciler cycle completed",
			"event", "verification_deadline_reconcile_completed",
			"module", "wish-verification/verification-service",
			"layer", "worker",
			"scanned", report.Scanned,
			"resolved", report.Resolved,
			"failed", report.Failed,
		)
	}
	return report, nil
}
