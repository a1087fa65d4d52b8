package queries

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "wishpact/contexts/wish-verification/verification-service/application"
	"wishpact/contexts/wish-verification/verification-service/domain/entities"
	domainerrors "wishpact/contexts/wish-verification/verification-service/domain/errors"
	"wishpact/contexts/wish-verification/verification-service/domain/services"
	"wishpact/contexts/wish-verification/verification-service/ports"
)

// VerificationStatus is the read model returned by the status check.
type VerificationStatus struct {
	WishID   string
	Status   entities.WishStatus
	Deadline time.Time
	services.Evaluation
}

// VerificationStatusUseCase is the sole authority for whether a wish is
// decided. It never writes.
type VerificationStatusUseCase struct {
	Wishes ports.WishRepository
	Clock  ports.Clock
	Quorum int
	Logger *slog.Logger
}

func (uc VerificationStatusUseCase) CheckVerificationStatus(ctx context.Context, wishID string) (VerificationStatus, error) {
	if strings.TrimSpace(wishID) == "" {
		return VerificationStatus{}, domainerrors.ErrInvalidWishInput
	}
	wish, err := uc.Wishes.GetWish(ctx, strings.TrimSpace(wishID))
	if err != nil {
		return VerificationStatus{}, err
	}
	return uc.Evaluate(ctx, wish)
}

// Evaluate tallies the votes of an already loaded wish.
func (uc VerificationStatusUseCase) Evaluate(ctx context.Context, wish entities.Wish) (VerificationStatus, error) {
	votes, err := uc.Wishes.ListVotes(ctx, wish.WishID)
	if err != nil {
		application.ResolveLogger(uc.Logger).Error("verification status vote listing failed",
			"event", "verification_status_list_votes_failed",
			"module", "wish-verification/verification-service",
			"layer", "application",
			"wish_id", wish.WishID,
			"error", err.Error(),
		)
		return VerificationStatus{}, err
	}

	now := uc.now()
	quorum := uc.quorum()
	tally := services.CountVotes(votes)
	var evaluation services.Evaluation
	if wish.Status == entities.WishStatusPendingVerification {
		evaluation = services.Evaluate(tally, wish.Deadline, quorum, now)
	} else {
		evaluation = services.Evaluation{
			Tally:         tally,
			QuorumReached: tally.Total >= quorum,
			TimeExpired:   now.After(wish.Deadline),
			Decision:      services.DecisionForStatus(wish.Status),
		}
	}
	return VerificationStatus{
		WishID:     wish.WishID,
		Status:     wish.Status,
		Deadline:   wish.Deadline,
		Evaluation: evaluation,
	}, nil
}

func (uc VerificationStatusUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}

func (uc VerificationStatusUseCase) quorum() int {
	if uc.Quorum <= 0 {
		return services.DefaultQuorum
	}
	return uc.Quorum
}
