package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"wishpact/contexts/impact-governance/proposal-governor/application/commands"
	"wishpact/contexts/impact-governance/proposal-governor/application/queries"
	"wishpact/contexts/impact-governance/proposal-governor/domain/entities"
	httptransport "wishpact/contexts/impact-governance/proposal-governor/transport/http"
)

type Handler struct {
	Governor commands.GovernorUseCase
	Queries  queries.ProposalQueries
	Logger   *slog.Logger
}

func (h Handler) CreateProposalHandler(
	ctx context.Context,
	userID string,
	req httptransport.CreateProposalRequest,
) (httptransport.ProposalResponse, error) {
	proposal, err := h.Governor.Create(ctx, commands.CreateProposalCommand{
		ProposerID:      userID,
		Title:           req.Title,
		AmountRequested: req.AmountRequested,
		Beneficiary:     req.Beneficiary,
		PlanRef:         req.PlanRef,
	})
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return httptransport.ProposalResponse{Status: "success", Data: toProposalDTO(proposal)}, nil
}

func (h Handler) GetProposalHandler(ctx context.Context, proposalID uint64) (httptransport.ProposalResponse, error) {
	proposal, err := h.Queries.Get(ctx, proposalID)
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return httptransport.ProposalResponse{Status: "success", Data: toProposalDTO(proposal)}, nil
}

func (h Handler) ListProposalsHandler(ctx context.Context, status string, limit int) (httptransport.ListProposalsResponse, error) {
	items, err := h.Queries.List(ctx, entities.ProposalStatus(strings.TrimSpace(status)), limit)
	if err != nil {
		return httptransport.ListProposalsResponse{}, err
	}
	resp := httptransport.ListProposalsResponse{
		Status: "success",
		Data:   make([]httptransport.ProposalDTO, 0, len(items)),
	}
	for _, item := range items {
		resp.Data = append(resp.Data, toProposalDTO(item))
	}
	return resp, nil
}

func (h Handler) VoteProposalHandler(
	ctx context.Context,
	userID string,
	proposalID uint64,
	req httptransport.VoteProposalRequest,
) (httptransport.ProposalResponse, error) {
	proposal, err := h.Governor.Vote(ctx, commands.VoteCommand{
		ProposalID: proposalID,
		VoterID:    userID,
		InFavor:    req.InFavor,
	})
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return httptransport.ProposalResponse{Status: "success", Data: toProposalDTO(proposal)}, nil
}

func (h Handler) ExecuteProposalHandler(ctx context.Context, userID string, proposalID uint64) (httptransport.ProposalResponse, error) {
	proposal, err := h.Governor.Execute(ctx, commands.ExecuteCommand{
		ProposalID: proposalID,
		ExecutorID: userID,
	})
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return httptransport.ProposalResponse{Status: "success", Data: toProposalDTO(proposal)}, nil
}

func toProposalDTO(proposal entities.Proposal) httptransport.ProposalDTO {
	dto := httptransport.ProposalDTO{
		ProposalID:      proposal.ProposalID,
		ProposerID:      proposal.ProposerID,
		Title:           proposal.Title,
		PlanRef:         proposal.PlanRef,
		AmountRequested: proposal.AmountRequested,
		Beneficiary:     proposal.Beneficiary,
		Status:          string(proposal.Status),
		VotesFor:        proposal.VotesFor,
		VotesAgainst:    proposal.VotesAgainst,
		TotalVotes:      proposal.TotalVotes,
		QuorumReached:   proposal.QuorumReached,
		VotingDeadline:  proposal.VotingDeadline.UTC().Format(time.RFC3339),
		ExecutedBy:      proposal.ExecutedBy,
		CreatedAt:       proposal.CreatedAt.UTC().Format(time.RFC3339),
	}
	if proposal.ExecutedAt != nil {
		dto.ExecutedAt = proposal.ExecutedAt.UTC().Format(time.RFC3339)
	}
	return dto
}
