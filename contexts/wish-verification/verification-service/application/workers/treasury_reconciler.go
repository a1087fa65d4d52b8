package workers

import (
	"context"
	"log/slog"

	application "wishpact/contexts/wish-verification/verification-service/application"
	"wishpact/contexts/wish-verification/verification-service/application/commands"
	"wishpact/contexts/wish-verification/verification-service/domain/entities"
	"wishpact/contexts/wish-verification/verification-service/ports"
)

// TreasuryReconciler sweeps failed wishes and re-issues their treasury
// credits. Credits are keyed by wish id, so a wish already credited at
// resolution time is skipped by the treasury.
type TreasuryReconciler struct {
	Wishes    ports.WishRepository
	Resolver  commands.ResolutionUseCase
	BatchSize int
	Logger    *slog.Logger
}

type SweepReport struct {
	Scanned  int
	Credited int
	Skipped  int
	Failed   int
}

func (r TreasuryReconciler) RunOnce(ctx context.Context) (SweepReport, error) {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	var report SweepReport
	afterID := ""
	for {
		page, err := r.Wishes.ListWishesByStatus(ctx, entities.WishStatusFailed, afterID, limit)
		if err != nil {
			logger.Error("treasury reconciler listing failed",
				"event", "verification_treasury_reconcile_list_failed",
				"module", "wish-verification/verification-service",
				"layer", "worker",
				"after_id", afterID,
				"error", err.Error(),
			)
			return report, err
		}
		for _, wish := range page {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			report.Scanned++
			amount, credited, err := r.Resolver.CreditImpact(ctx, wish)
			switch {
			case err != nil:
				report.Failed++
				logger.Error("treasury reconciler credit failed",
					"event", "verification_treasury_reconcile_credit_failed",
					"module", "wish-verification/verification-service",
					"layer", "worker",
					"wish_id", wish.WishID,
					"amount", amount,
					"error", err.Error(),
				)
			case credited:
				report.Credited++
				logger.Info("treasury reconciler credited missed wish",
					"event", "verification_treasury_reconcile_credited",
					"module", "wish-verification/verification-service",
					"layer", "worker",
					"wish_id", wish.WishID,
					"amount", amount,
				)
			default:
				report.Skipped++
			}
		}
		if len(page) < limit {
			break
		}
		afterID = page[len(page)-1].WishID
	}

	logger.Debug("treasury reconciler sweep completed",
		"event", "verification_treasury_reconcile_completed",
		"module", "wish-verification/verification-service",
		"layer", "worker",
		"scanned", report.Scanned,
		"credited", report.Credited,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	return report, nil
}
