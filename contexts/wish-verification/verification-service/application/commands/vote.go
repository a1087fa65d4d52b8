package commands

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
	contractsv1 "wishpact/contracts/gen/events/v1"
)

type CastVoteCommand struct {
	WishID  string
	VoterID string
	Choice  entities.VoteChoice
}

type CastVoteResult struct {
	VoteID     string
	Weight     int
	Status     entities.WishStatus
	Decision   entities.Decision
	TotalVotes int
}

// VoteUseCase records community votes. Duplicate detection is left to the
// storage uniqueness constraint; there is no read-then-insert check.
type VoteUseCase struct {
	Wishes              ports.WishRepository
	Resolver            ResolutionUseCase
	Outbox              ports.OutboxWriter
	Monitor             ports.Monitor
	Notifier            ports.Notifier
	Clock               ports.Clock
	IDGen               ports.IDGenerator
	ExternalCallTimeout time.Duration
	Logger              *slog.Logger
}

func (uc VoteUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("vote cast processing started",
		"event", "verification_vote_cast_started",
		"module", moduleName,
		"layer", "application",
		"wish_id", strings.TrimSpace(cmd.WishID),
		"voter_id", strings.TrimSpace(cmd.VoterID),
	)
	if strings.TrimSpace(cmd.WishID) == "" || strings.TrimSpace(cmd.VoterID) == "" || !cmd.Choice.Valid() {
		logger.Warn("vote cast validation failed",
			"event", "verification_vote_cast_validation_failed",
			"module", moduleName,
			"layer", "application",
			"wish_id", strings.TrimSpace(cmd.WishID),
			"voter_id", strings.TrimSpace(cmd.VoterID),
		)
		return CastVoteResult{}, domainerrors.ErrInvalidVoteInput
	}

	wish, err := uc.Wishes.GetWish(ctx, strings.TrimSpace(cmd.WishID))
	if err != nil {
		return CastVoteResult{}, err
	}
	if wish.Status != entities.WishStatusPendingVerification {
		return CastVoteResult{}, domainerrors.ErrWishNotPendingVerification
	}
	hasPledge, err := uc.Wishes.HasPledge(ctx, wish.WishID, strings.TrimSpace(cmd.VoterID))
	if err != nil {
		return CastVoteResult{}, err
	}
	voteID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return CastVoteResult{}, err
	}
	now := uc.now()
	vote := entities.Vote{
		VoteID:    voteID,
		WishID:    wish.WishID,
		VoterID:   strings.TrimSpace(cmd.VoterID),
		Choice:    cmd.Choice,
		Weight:    services.VoteWeight(hasPledge),
		CreatedAt: now,
	}
	if err := uc.Wishes.InsertVote(ctx, vote); err != nil {
		logger.Warn("vote insert rejected",
			"event", "verification_vote_insert_rejected",
			"module", moduleName,
			"layer", "application",
			"wish_id", vote.WishID,
			"voter_id", vote.VoterID,
			"error", err.Error(),
		)
		return CastVoteResult{}, err
	}

	effects := uc.effects()
	effects.emit(ctx, contractsv1.EventVoteCast, vote.WishID, now, map[string]any{
		"wish_id":  vote.WishID,
		"vote_id":  vote.VoteID,
		"voter_id": vote.VoterID,
		"choice":   string(vote.Choice),
		"weight":   vote.Weight,
	})
	effects.audit(ctx, "vote_cast", map[string]any{
		"wish_id":  vote.WishID,
		"voter_id": vote.VoterID,
		"choice":   string(vote.Choice),
		"weight":   vote.Weight,
	})
	effects.notify(ctx, wish.CreatorID, "vote_received", "A new verification vote was cast on \""+wish.Title+"\"")

	result := CastVoteResult{
		VoteID: vote.VoteID,
		Weight: vote.Weight,
		Status: entities.WishStatusPendingVerification,
	}
	// A single vote may be decisive, so the status check runs right away.
	resolved, err := uc.Resolver.Resolve(ctx, vote.WishID)
	if err != nil {
		effects.reportError(ctx, "post-vote resolution failed", err, map[string]any{
			"wish_id": vote.WishID,
		})
		status, statusErr := uc.Resolver.Status.CheckVerificationStatus(ctx, vote.WishID)
		if statusErr != nil {
			return CastVoteResult{}, statusErr
		}
		result.Status = status.Status
		result.Decision = status.Decision
		result.TotalVotes = status.Total
		return result, nil
	}
	result.Status = resolved.Status
	result.Decision = resolved.Decision
	result.TotalVotes = resolved.Evaluation.Total

	logger.Info("vote cast",
		"event", "verification_vote_cast",
		"module", moduleName,
		"layer", "application",
		"wish_id", vote.WishID,
		"vote_id", vote.VoteID,
		"choice", string(vote.Choice),
		"weight", vote.Weight,
		"total_votes", result.TotalVotes,
		"status", string(result.Status),
	)
	return result, nil
}

func (uc VoteUseCase) effects() collaborators {
	return collaborators{
		outbox:   uc.Outbox,
		monitor:  uc.Monitor,
		notifier: uc.Notifier,
		idGen:    uc.IDGen,
		timeout:  uc.ExternalCallTimeout,
		logger:   uc.Logger,
	}
}

func (uc VoteUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}
