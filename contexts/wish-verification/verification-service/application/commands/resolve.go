package commands

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	application "wishpact/contexts/wish-verification/verification-service/application"
	"wishpact/contexts/wish-verification/verification-service/application/queries"
	"wishpact/contexts/wish-verification/verification-service/domain/entities"
	domainerrors "wishpact/contexts/wish-verification/verification-service/domain/errors"
	"wishpact/contexts/wish-verification/verification-service/domain/services"
	"wishpact/contexts/wish-verification/verification-service/ports"
	contractsv1 "wishpact/contracts/gen/events/v1"
)

type ResolveResult struct {
	WishID           string
	Status           entities.WishStatus
	Decision         entities.Decision
	Transitioned     bool
	ImpactAmount     int64
	TreasuryCredited bool
	Evaluation       services.Evaluation
}

// ResolutionUseCase settles decided wishes. Only the caller whose conditional
// status transition succeeds runs downstream effects; every other caller
// observes the stored outcome.
type ResolutionUseCase struct {
	Wishes              ports.WishRepository
	Status              queries.VerificationStatusUseCase
	Treasury            ports.TreasuryCreditor
	Rewards             ports.RewardDistributor
	Outbox              ports.OutboxWriter
	Monitor             ports.Monitor
	Notifier            ports.Notifier
	Clock               ports.Clock
	IDGen               ports.IDGenerator
	ExternalCallTimeout time.Duration
	Logger              *slog.Logger
}

// maxSettleAttempts bounds how often Resolve re-tallies when votes keep
// landing between its tally and its settlement write.
const maxSettleAttempts = 5

func (uc ResolutionUseCase) Resolve(ctx context.Context, wishID string) (ResolveResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	id := strings.TrimSpace(wishID)
	if id == "" {
		return ResolveResult{}, domainerrors.ErrInvalidWishInput
	}
	lost := false
	for attempt := 1; ; attempt++ {
		wish, err := uc.Wishes.GetWish(ctx, id)
		if err != nil {
			return ResolveResult{}, err
		}
		status, err := uc.Status.Evaluate(ctx, wish)
		if err != nil {
			return ResolveResult{}, err
		}
		result := ResolveResult{
			WishID:     wish.WishID,
			Status:     wish.Status,
			Decision:   status.Decision,
			Evaluation: status.Evaluation,
		}

		switch {
		case wish.Status.Terminal():
			if lost {
				logger.Info("wish resolution lost race",
					"event", "verification_resolve_race_lost",
					"module", moduleName,
					"layer", "application",
					"wish_id", wish.WishID,
					"observed_status", string(wish.Status),
				)
			}
			return result, nil
		case wish.Status != entities.WishStatusPendingVerification:
			return ResolveResult{}, domainerrors.ErrWishNotPendingVerification
		}
		target, decided := services.StatusForDecision(status.Decision)
		if !decided {
			return result, nil
		}

		now := uc.now()
		settled, won, err := uc.Wishes.SettleWish(ctx, wish.WishID, wish.VoteCount, target, now)
		if err != nil {
			return ResolveResult{}, err
		}
		if won {
			result.Status = settled.Status
			result.Transitioned = true
			return uc.settle(ctx, settled, status, result, now), nil
		}
		lost = true
		if attempt >= maxSettleAttempts {
			logger.Warn("wish settlement kept losing to new votes",
				"event", "verification_resolve_attempts_exhausted",
				"module", moduleName,
				"layer", "application",
				"wish_id", wish.WishID,
				"attempts", attempt,
			)
			result.Decision = entities.DecisionPending
			return result, nil
		}
		logger.Debug("wish tally changed before settlement",
			"event", "verification_resolve_retally",
			"module", moduleName,
			"layer", "application",
			"wish_id", wish.WishID,
			"tallied_votes", wish.VoteCount,
		)
	}
}

// settle runs the downstream effects for the caller that won the settlement
// write. Amounts come from the settled row.
func (uc ResolutionUseCase) settle(
	ctx context.Context,
	wish entities.Wish,
	status queries.VerificationStatus,
	result ResolveResult,
	now time.Time,
) ResolveResult {
	logger := application.ResolveLogger(uc.Logger)
	target := wish.Status
	effects := uc.effects()
	switch target {
	case entities.WishStatusVerified:
		uc.distributeRewards(ctx, effects, wish)
		effects.notify(ctx, wish.CreatorID, "wish_verified", "Your wish \""+wish.Title+"\" was verified by the community")
	case entities.WishStatusFailed:
		result.ImpactAmount = services.ImpactAmount(wish.StakeAmount, wish.PledgeTotal, wish.ImpactPercent)
		if result.ImpactAmount > 0 {
			result.TreasuryCredited = uc.creditTreasury(ctx, effects, wish, result.ImpactAmount)
		}
		effects.notify(ctx, wish.CreatorID, "wish_failed", "Your wish \""+wish.Title+"\" was not verified; "+
			strconv.FormatInt(result.ImpactAmount, 10)+" was routed to the impact treasury")
	}

	effects.emit(ctx, contractsv1.EventWishResolved, wish.WishID, now, map[string]any{
		"wish_id":       wish.WishID,
		"status":        string(target),
		"decision":      string(status.Decision),
		"total_votes":   status.Total,
		"yes_votes":     status.Yes,
		"no_votes":      status.No,
		"impact_amount": result.ImpactAmount,
	})
	effects.audit(ctx, "wish_resolved", map[string]any{
		"wish_id":       wish.WishID,
		"status":        string(target),
		"decision":      string(status.Decision),
		"impact_amount": result.ImpactAmount,
	})
	logger.Info("wish resolved",
		"event", "verification_wish_resolved",
		"module", moduleName,
		"layer", "application",
		"wish_id", wish.WishID,
		"status", string(target),
		"total_votes", status.Total,
		"yes_votes", status.Yes,
		"no_votes", status.No,
		"impact_amount", result.ImpactAmount,
	)
	return result
}

// CreditImpact routes the impact share of a failed wish to the treasury. The
// treasury deduplicates by wish id so repeated calls never double-credit.
func (uc ResolutionUseCase) CreditImpact(ctx context.Context, wish entities.Wish) (int64, bool, error) {
	if wish.Status != entities.WishStatusFailed {
		return 0, false, domainerrors.ErrWishNotFailed
	}
	amount := services.ImpactAmount(wish.StakeAmount, wish.PledgeTotal, wish.ImpactPercent)
	if amount <= 0 || uc.Treasury == nil {
		return amount, false, nil
	}
	callCtx, cancel := uc.effects().external(ctx)
	defer cancel()
	credited, err := uc.Treasury.Credit(callCtx, ports.TreasuryCredit{
		WishID:      wish.WishID,
		Amount:      amount,
		Beneficiary: wish.Beneficiary,
	})
	return amount, credited, err
}

func (uc ResolutionUseCase) creditTreasury(ctx context.Context, effects collaborators, wish entities.Wish, amount int64) bool {
	_, credited, err := uc.CreditImpact(ctx, wish)
	if err != nil {
		effects.reportError(ctx, "treasury credit failed", err, map[string]any{
			"wish_id": wish.WishID,
			"amount":  amount,
		})
		return false
	}
	return credited
}

func (uc ResolutionUseCase) distributeRewards(ctx context.Context, effects collaborators, wish entities.Wish) {
	if uc.Rewards == nil {
		return
	}
	callCtx, cancel := effects.external(ctx)
	defer cancel()
	if err := uc.Rewards.DistributeRewards(callCtx, wish); err != nil {
		effects.reportError(ctx, "reward distribution failed", err, map[string]any{
			"wish_id": wish.WishID,
		})
	}
}

func (uc ResolutionUseCase) effects() collaborators {
	return collaborators{
		outbox:   uc.Outbox,
		monitor:  uc.Monitor,
		notifier: uc.Notifier,
		idGen:    uc.IDGen,
		timeout:  uc.ExternalCallTimeout,
		logger:   uc.Logger,
	}
}

func (uc ResolutionUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}
