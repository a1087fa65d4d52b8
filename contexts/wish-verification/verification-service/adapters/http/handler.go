package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"wishpact/contexts/wish-verification/verification-service/application/commands"
	"wishpact/contexts/wish-verification/verification-service/application/queries"
	"wishpact/contexts/wish-verification/verification-service/domain/entities"
	domainerrors "wishpact/contexts/wish-verification/verification-service/domain/errors"
	"wishpact/contexts/wish-verification/verification-service/domain/proofs"
	httptransport "wishpact/contexts/wish-verification/verification-service/transport/http"
)

type Handler struct {
	Wishes     commands.WishUseCase
	Votes      commands.VoteUseCase
	Resolution commands.ResolutionUseCase
	Status     queries.VerificationStatusUseCase
	Logger     *slog.Logger
}

func (h Handler) CreateWishHandler(
	ctx context.Context,
	userID string,
	req httptransport.CreateWishRequest,
) (httptransport.WishResponse, error) {
	deadline, err := time.Parse(time.RFC3339, strings.TrimSpace(req.Deadline))
	if err != nil {
		return httptransport.WishResponse{}, domainerrors.ErrInvalidWishInput
	}
	wish, err := h.Wishes.CreateWish(ctx, commands.CreateWishCommand{
		CreatorID:     userID,
		Title:         req.Title,
		StakeAmount:   req.StakeAmount,
		Deadline:      deadline,
		ProofMethod:   entities.ProofMethod(strings.TrimSpace(req.ProofMethod)),
		ImpactPercent: req.ImpactPercent,
		Beneficiary:   req.Beneficiary,
	})
	if err != nil {
		return httptransport.WishResponse{}, err
	}
	return httptransport.WishResponse{Status: "success", Data: toWishDTO(wish)}, nil
}

func (h Handler) RecordPledgeHandler(
	ctx context.Context,
	userID string,
	wishID string,
	req httptransport.RecordPledgeRequest,
) (httptransport.PledgeResponse, error) {
	result, err := h.Wishes.RecordPledge(ctx, commands.RecordPledgeCommand{
		WishID:      wishID,
		SupporterID: userID,
		Amount:      req.Amount,
	})
	if err != nil {
		return httptransport.PledgeResponse{}, err
	}
	resp := httptransport.PledgeResponse{Status: "success"}
	resp.Data.PledgeID = result.Pledge.PledgeID
	resp.Data.WishID = result.Pledge.WishID
	resp.Data.SupporterID = result.Pledge.SupporterID
	resp.Data.Amount = result.Pledge.Amount
	resp.Data.PledgeTotal = result.Wish.PledgeTotal
	resp.Data.PledgeCount = result.Wish.PledgeCount
	resp.Data.CreatedAt = result.Pledge.CreatedAt.UTC().Format(time.RFC3339)
	return resp, nil
}

// SubmitProofHandler decodes the payload against the wish's declared proof
// method before handing it to the use case.
func (h Handler) SubmitProofHandler(
	ctx context.Context,
	userID string,
	wishID string,
	req httptransport.SubmitProofRequest,
) (httptransport.SubmitProofResponse, error) {
	wish, err := h.Wishes.Wishes.GetWish(ctx, strings.TrimSpace(wishID))
	if err != nil {
		return httptransport.SubmitProofResponse{}, err
	}
	payload, err := proofs.DecodePayload(wish.ProofMethod, req.Payload)
	if err != nil {
		return httptransport.SubmitProofResponse{}, err
	}
	result, err := h.Wishes.SubmitProof(ctx, commands.SubmitProofCommand{
		WishID:      wish.WishID,
		SubmitterID: userID,
		Payload:     payload,
	})
	if err != nil {
		return httptransport.SubmitProofResponse{}, err
	}
	resp := httptransport.SubmitProofResponse{Status: "success"}
	resp.Data.ProofID = result.ProofID
	resp.Data.WishID = wish.WishID
	resp.Data.WishStatus = string(result.Status)
	return resp, nil
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	userID string,
	wishID string,
	req httptransport.CastVoteRequest,
) (httptransport.CastVoteResponse, error) {
	result, err := h.Votes.CastVote(ctx, commands.CastVoteCommand{
		WishID:  wishID,
		VoterID: userID,
		Choice:  entities.VoteChoice(strings.ToLower(strings.TrimSpace(req.Choice))),
	})
	if err != nil {
		return httptransport.CastVoteResponse{}, err
	}
	resp := httptransport.CastVoteResponse{Status: "success"}
	resp.Data.VoteID = result.VoteID
	resp.Data.Weight = result.Weight
	resp.Data.WishStatus = string(result.Status)
	resp.Data.Decision = string(result.Decision)
	resp.Data.TotalVotes = result.TotalVotes
	return resp, nil
}

func (h Handler) CheckVerificationStatusHandler(
	ctx context.Context,
	wishID string,
) (httptransport.VerificationStatusResponse, error) {
	status, err := h.Status.CheckVerificationStatus(ctx, wishID)
	if err != nil {
		return httptransport.VerificationStatusResponse{}, err
	}
	return httptransport.VerificationStatusResponse{
		Status: "success",
		Data:   toStatusDTO(status),
	}, nil
}

func (h Handler) ResolveHandler(ctx context.Context, wishID string) (httptransport.ResolveResponse, error) {
	result, err := h.Resolution.Resolve(ctx, wishID)
	if err != nil {
		return httptransport.ResolveResponse{}, err
	}
	resp := httptransport.ResolveResponse{Status: "success"}
	resp.Data.WishID = result.WishID
	resp.Data.WishStatus = string(result.Status)
	resp.Data.Decision = string(result.Decision)
	resp.Data.Transitioned = result.Transitioned
	resp.Data.ImpactAmount = result.ImpactAmount
	resp.Data.TreasuryCredited = result.TreasuryCredited
	resp.Data.Verification = toStatusDTO(queries.VerificationStatus{
		WishID:     result.WishID,
		Status:     result.Status,
		Evaluation: result.Evaluation,
	})
	return resp, nil
}

func (h Handler) CancelWishHandler(
	ctx context.Context,
	userID string,
	isAdmin bool,
	wishID string,
) (httptransport.WishResponse, error) {
	wish, err := h.Wishes.CancelWish(ctx, commands.CancelWishCommand{
		WishID:  wishID,
		ActorID: userID,
		IsAdmin: isAdmin,
	})
	if err != nil {
		return httptransport.WishResponse{}, err
	}
	return httptransport.WishResponse{Status: "success", Data: toWishDTO(wish)}, nil
}

func toWishDTO(wish entities.Wish) httptransport.WishDTO {
	dto := httptransport.WishDTO{
		WishID:        wish.WishID,
		CreatorID:     wish.CreatorID,
		Title:         wish.Title,
		StakeAmount:   wish.StakeAmount,
		PledgeTotal:   wish.PledgeTotal,
		PledgeCount:   wish.PledgeCount,
		Deadline:      wish.Deadline.UTC().Format(time.RFC3339),
		ProofMethod:   string(wish.ProofMethod),
		Status:        string(wish.Status),
		ImpactPercent: wish.ImpactPercent,
		Beneficiary:   wish.Beneficiary,
		CreatedAt:     wish.CreatedAt.UTC().Format(time.RFC3339),
	}
	if wish.ResolvedAt != nil {
		dto.ResolvedAt = wish.ResolvedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func toStatusDTO(status queries.VerificationStatus) httptransport.VerificationStatusDTO {
	dto := httptransport.VerificationStatusDTO{
		WishID:        status.WishID,
		WishStatus:    string(status.Status),
		Decision:      string(status.Decision),
		QuorumReached: status.QuorumReached,
		TimeExpired:   status.TimeExpired,
		Votes: httptransport.TallyDTO{
			Total:       status.Tally.Total,
			Yes:         status.Tally.Yes,
			No:          status.Tally.No,
			WeightedYes: status.Tally.WeightedYes,
			WeightedNo:  status.Tally.WeightedNo,
		},
	}
	if !status.Deadline.IsZero() {
		dto.Deadline = status.Deadline.UTC().Format(time.RFC3339)
	}
	return dto
}
