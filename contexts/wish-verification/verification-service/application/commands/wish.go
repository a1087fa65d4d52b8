package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "wishpact/contexts/wish-verification/verification-service/application"
	"wishpact/contexts/wish-verification/verification-service/domain/entities"
	domainerrors "wishpact/contexts/wish-verification/verification-service/domain/errors"
	"wishpact/contexts/wish-verification/verification-service/domain/proofs"
	"wishpact/contexts/wish-verification/verification-service/domain/services"
	"wishpact/contexts/wish-verification/verification-service/ports"
	contractsv1 "wishpact/contracts/gen/events/v1"
)

type CreateWishCommand struct {
	CreatorID     string
	Title         string
	StakeAmount   int64
	Deadline      time.Time
	ProofMethod   entities.ProofMethod
	ImpactPercent int
	Beneficiary   string
}

type RecordPledgeCommand struct {
	WishID      string
	SupporterID string
	Amount      int64
}

type RecordPledgeResult struct {
	Pledge entities.Pledge
	Wish   entities.Wish
}

type SubmitProofCommand struct {
	WishID      string
	SubmitterID string
	Payload     proofs.Payload
}

type SubmitProofResult struct {
	ProofID string
	Status  entities.WishStatus
}

type CancelWishCommand struct {
	WishID  string
	ActorID string
	IsAdmin bool
}

// WishUseCase owns the pre-verification part of the wish lifecycle: creation,
// pledges, proof submission and cancellation.
type WishUseCase struct {
	Wishes              ports.WishRepository
	Sanitizer           ports.Sanitizer
	Outbox              ports.OutboxWriter
	Monitor             ports.Monitor
	Notifier            ports.Notifier
	Clock               ports.Clock
	IDGen               ports.IDGenerator
	ExternalCallTimeout time.Duration
	Logger              *slog.Logger
}

func (uc WishUseCase) CreateWish(ctx context.Context, cmd CreateWishCommand) (entities.Wish, error) {
	logger := application.ResolveLogger(uc.Logger)
	now := uc.now()
	title := uc.sanitize(cmd.Title)
	if strings.TrimSpace(cmd.CreatorID) == "" ||
		title == "" ||
		cmd.StakeAmount <= 0 ||
		!cmd.ProofMethod.Valid() ||
		!cmd.Deadline.After(now) ||
		cmd.ImpactPercent < 0 || cmd.ImpactPercent > services.MaxImpactPercent ||
		(cmd.ImpactPercent > 0 && strings.TrimSpace(cmd.Beneficiary) == "") {
		logger.Warn("wish create validation failed",
			"event", "verification_wish_create_validation_failed",
			"module", moduleName,
			"layer", "application",
			"creator_id", strings.TrimSpace(cmd.CreatorID),
		)
		return entities.Wish{}, domainerrors.ErrInvalidWishInput
	}

	wishID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Wish{}, err
	}
	wish := entities.Wish{
		WishID:        wishID,
		CreatorID:     strings.TrimSpace(cmd.CreatorID),
		Title:         title,
		StakeAmount:   cmd.StakeAmount,
		Deadline:      cmd.Deadline.UTC(),
		ProofMethod:   cmd.ProofMethod,
		Status:        entities.WishStatusActive,
		ImpactPercent: cmd.ImpactPercent,
		Beneficiary:   strings.TrimSpace(cmd.Beneficiary),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.Wishes.CreateWish(ctx, wish); err != nil {
		return entities.Wish{}, err
	}
	uc.effects().audit(ctx, "wish_created", map[string]any{
		"wish_id":    wish.WishID,
		"creator_id": wish.CreatorID,
		"stake":      wish.StakeAmount,
	})
	logger.Info("wish created",
		"event", "verification_wish_created",
		"module", moduleName,
		"layer", "application",
		"wish_id", wish.WishID,
		"creator_id", wish.CreatorID,
		"proof_method", string(wish.ProofMethod),
	)
	return wish, nil
}

func (uc WishUseCase) RecordPledge(ctx context.Context, cmd RecordPledgeCommand) (RecordPledgeResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.WishID) == "" || strings.TrimSpace(cmd.SupporterID) == "" || cmd.Amount <= 0 {
		logger.Warn("pledge validation failed",
			"event", "verification_pledge_validation_failed",
			"module", moduleName,
			"layer", "application",
			"wish_id", strings.TrimSpace(cmd.WishID),
			"supporter_id", strings.TrimSpace(cmd.SupporterID),
		)
		return RecordPledgeResult{}, domainerrors.ErrInvalidPledgeInput
	}

	pledgeID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return RecordPledgeResult{}, err
	}
	now := uc.now()
	pledge := entities.Pledge{
		PledgeID:    pledgeID,
		WishID:      strings.TrimSpace(cmd.WishID),
		SupporterID: strings.TrimSpace(cmd.SupporterID),
		Amount:      cmd.Amount,
		CreatedAt:   now,
	}
	wish, err := uc.Wishes.RecordPledge(ctx, pledge)
	if err != nil {
		return RecordPledgeResult{}, err
	}

	effects := uc.effects()
	effects.emit(ctx, contractsv1.EventPledgeRecorded, wish.WishID, now, map[string]any{
		"wish_id":      wish.WishID,
		"pledge_id":    pledge.PledgeID,
		"supporter_id": pledge.SupporterID,
		"amount":       pledge.Amount,
		"pledge_total": wish.PledgeTotal,
	})
	effects.audit(ctx, "pledge_recorded", map[string]any{
		"wish_id":      wish.WishID,
		"supporter_id": pledge.SupporterID,
		"amount":       pledge.Amount,
	})
	effects.notify(ctx, wish.CreatorID, "pledge_received", "New pledge received for \""+wish.Title+"\"")
	logger.Info("pledge recorded",
		"event", "verification_pledge_recorded",
		"module", moduleName,
		"layer", "application",
		"wish_id", wish.WishID,
		"pledge_id", pledge.PledgeID,
		"amount", pledge.Amount,
		"pledge_total", wish.PledgeTotal,
	)
	return RecordPledgeResult{Pledge: pledge, Wish: wish}, nil
}

// SubmitProof validates the creator's evidence and moves the wish into
// verification. Checks run in order: ownership, status, payload.
func (uc WishUseCase) SubmitProof(ctx context.Context, cmd SubmitProofCommand) (SubmitProofResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("proof submission started",
		"event", "verification_proof_submit_started",
		"module", moduleName,
		"layer", "application",
		"wish_id", strings.TrimSpace(cmd.WishID),
		"submitter_id", strings.TrimSpace(cmd.SubmitterID),
	)
	if strings.TrimSpace(cmd.WishID) == "" || strings.TrimSpace(cmd.SubmitterID) == "" {
		return SubmitProofResult{}, domainerrors.ErrInvalidProofInput
	}

	wish, err := uc.Wishes.GetWish(ctx, strings.TrimSpace(cmd.WishID))
	if err != nil {
		return SubmitProofResult{}, err
	}
	if wish.CreatorID != strings.TrimSpace(cmd.SubmitterID) {
		logger.Warn("proof submission rejected for non-creator",
			"event", "verification_proof_submit_forbidden",
			"module", moduleName,
			"layer", "application",
			"wish_id", wish.WishID,
			"submitter_id", strings.TrimSpace(cmd.SubmitterID),
		)
		return SubmitProofResult{}, domainerrors.ErrNotWishCreator
	}
	if wish.Status != entities.WishStatusActive {
		return SubmitProofResult{}, domainerrors.ErrWishNotActive
	}
	if err := proofs.Validate(wish.ProofMethod, cmd.Payload); err != nil {
		logger.Warn("proof payload rejected",
			"event", "verification_proof_submit_validation_failed",
			"module", moduleName,
			"layer", "application",
			"wish_id", wish.WishID,
			"proof_method", string(wish.ProofMethod),
			"error", err.Error(),
		)
		return SubmitProofResult{}, err
	}

	payload := cmd.Payload
	if uc.Sanitizer != nil {
		payload = proofs.SanitizeText(payload, uc.Sanitizer.Sanitize)
	}
	raw, err := proofs.Encode(payload)
	if err != nil {
		return SubmitProofResult{}, err
	}
	proofID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return SubmitProofResult{}, err
	}
	now := uc.now()
	proof := entities.Proof{
		ProofID:     proofID,
		WishID:      wish.WishID,
		SubmitterID: wish.CreatorID,
		Method:      wish.ProofMethod,
		Payload:     raw,
		CreatedAt:   now,
	}
	if err := uc.Wishes.SubmitProof(ctx, proof, now); err != nil {
		return SubmitProofResult{}, err
	}

	effects := uc.effects()
	effects.emit(ctx, contractsv1.EventProofSubmitted, wish.WishID, now, map[string]any{
		"wish_id":      wish.WishID,
		"proof_id":     proof.ProofID,
		"proof_method": string(proof.Method),
		"status":       string(entities.WishStatusPendingVerification),
	})
	effects.audit(ctx, "proof_submitted", map[string]any{
		"wish_id":  wish.WishID,
		"proof_id": proof.ProofID,
		"user_id":  wish.CreatorID,
	})
	logger.Info("proof submitted",
		"event", "verification_proof_submitted",
		"module", moduleName,
		"layer", "application",
		"wish_id", wish.WishID,
		"proof_id", proof.ProofID,
		"proof_method", string(proof.Method),
	)
	return SubmitProofResult{ProofID: proof.ProofID, Status: entities.WishStatusPendingVerification}, nil
}

func (uc WishUseCase) CancelWish(ctx context.Context, cmd CancelWishCommand) (entities.Wish, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.WishID) == "" || strings.TrimSpace(cmd.ActorID) == "" {
		return entities.Wish{}, domainerrors.ErrInvalidWishInput
	}
	wish, err := uc.Wishes.GetWish(ctx, strings.TrimSpace(cmd.WishID))
	if err != nil {
		return entities.Wish{}, err
	}
	if wish.CreatorID != strings.TrimSpace(cmd.ActorID) && !cmd.IsAdmin {
		return entities.Wish{}, domainerrors.ErrCancelForbidden
	}
	if wish.Status != entities.WishStatusActive {
		return entities.Wish{}, domainerrors.ErrWishNotActive
	}

	now := uc.now()
	ok, err := uc.Wishes.TransitionWishStatus(ctx, wish.WishID, entities.WishStatusActive, entities.WishStatusCancelled, now)
	if err != nil {
		return entities.Wish{}, err
	}
	if !ok {
		return entities.Wish{}, domainerrors.ErrWishNotActive
	}
	wish.Status = entities.WishStatusCancelled
	wish.UpdatedAt = now
	wish.ResolvedAt = &now

	effects := uc.effects()
	effects.emit(ctx, contractsv1.EventWishCancelled, wish.WishID, now, map[string]any{
		"wish_id":  wish.WishID,
		"actor_id": strings.TrimSpace(cmd.ActorID),
		"is_admin": cmd.IsAdmin,
	})
	effects.audit(ctx, "wish_cancelled", map[string]any{
		"wish_id":  wish.WishID,
		"actor_id": strings.TrimSpace(cmd.ActorID),
	})
	logger.Info("wish cancelled",
		"event", "verification_wish_cancelled",
		"module", moduleName,
		"layer", "application",
		"wish_id", wish.WishID,
		"actor_id", strings.TrimSpace(cmd.ActorID),
	)
	return wish, nil
}

func (uc WishUseCase) sanitize(text string) string {
	text = strings.TrimSpace(text)
	if uc.Sanitizer != nil {
		text = strings.TrimSpace(uc.Sanitizer.Sanitize(text))
	}
	return text
}

func (uc WishUseCase) effects() collaborators {
	return collaborators{
		outbox:   uc.Outbox,
		monitor:  uc.Monitor,
		notifier: uc.Notifier,
		idGen:    uc.IDGen,
		timeout:  uc.ExternalCallTimeout,
		logger:   uc.Logger,
	}
}

func (uc WishUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}
