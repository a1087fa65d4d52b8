package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "wishpact/contexts/impact-governance/proposal-governor/application"
	"wishpact/contexts/impact-governance/proposal-governor/domain/entities"
	domainerrors "wishpact/contexts/impact-governance/proposal-governor/domain/errors"
	"wishpact/contexts/impact-governance/proposal-governor/domain/services"
	"wishpact/contexts/impact-governance/proposal-governor/ports"
	"wishpact/contracts/apperrors"
	contractsv1 "wishpact/contracts/gen/events/v1"
)

type CreateProposalCommand struct {
	ProposerID      string
	Title           string
	AmountRequested int64
	Beneficiary     string
	PlanRef         string
}

type VoteCommand struct {
	ProposalID uint64
	VoterID    string
	InFavor    bool
}

type ExecuteCommand struct {
	ProposalID uint64
	ExecutorID string
}

type CloseExpiredResult struct {
	Scanned int
	Closed  int
}

type GovernorUseCase struct {
	Repo                ports.Repository
	Treasury            ports.Treasury
	Chain               ports.ChainBridge
	Sanitizer           ports.Sanitizer
	Outbox              ports.OutboxWriter
	Clock               ports.Clock
	IDGen               ports.IDGenerator
	Quorum              int
	VotingPeriod        time.Duration
	ExternalCallTimeout time.Duration
	Logger              *slog.Logger
}

func (uc GovernorUseCase) Create(ctx context.Context, cmd CreateProposalCommand) (entities.Proposal, error) {
	logger := application.ResolveLogger(uc.Logger)
	title := strings.TrimSpace(cmd.Title)
	if uc.Sanitizer != nil {
		title = strings.TrimSpace(uc.Sanitizer.Sanitize(title))
	}
	if strings.TrimSpace(cmd.ProposerID) == "" ||
		title == "" ||
		cmd.AmountRequested <= 0 ||
		strings.TrimSpace(cmd.Beneficiary) == "" {
		logger.Warn("proposal create validation failed",
			"event", "governance_proposal_create_validation_failed",
			"module", moduleName,
			"layer", "application",
			"proposer_id", strings.TrimSpace(cmd.ProposerID),
		)
		return entities.Proposal{}, domainerrors.ErrInvalidProposalInput
	}

	now := uc.now()
	proposal, err := uc.Repo.CreateProposal(ctx, entities.Proposal{
		ProposerID:      strings.TrimSpace(cmd.ProposerID),
		Title:           title,
		PlanRef:         strings.TrimSpace(cmd.PlanRef),
		AmountRequested: cmd.AmountRequested,
		Beneficiary:     strings.TrimSpace(cmd.Beneficiary),
		Status:          entities.ProposalStatusActive,
		VotingDeadline:  now.Add(uc.votingPeriod()),
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return entities.Proposal{}, err
	}

	uc.chain(ctx, "propose", proposal.ProposalID, func(callCtx context.Context, chain ports.ChainBridge) error {
		return chain.ProposeOnChain(callCtx, proposal)
	})
	uc.emit(ctx, contractsv1.EventProposalCreated, proposal.ProposalID, now, map[string]any{
		"proposal_id":      proposal.ProposalID,
		"proposer_id":      proposal.ProposerID,
		"title":            proposal.Title,
		"amount_requested": proposal.AmountRequested,
		"voting_deadline":  proposal.VotingDeadline.Format(time.RFC3339),
	})
	logger.Info("proposal created",
		"event", "governance_proposal_created",
		"module", moduleName,
		"layer", "application",
		"proposal_id", proposal.ProposalID,
		"proposer_id", proposal.ProposerID,
		"amount_requested", proposal.AmountRequested,
	)
	return proposal, nil
}

// Vote records one ballot. Counters, quorum and the resulting status are
// applied by the repository in a single guarded write.
func (uc GovernorUseCase) Vote(ctx context.Context, cmd VoteCommand) (entities.Proposal, error) {
	logger := application.ResolveLogger(uc.Logger)
	if cmd.ProposalID == 0 || strings.TrimSpace(cmd.VoterID) == "" {
		return entities.Proposal{}, domainerrors.ErrInvalidBallotInput
	}
	proposal, err := uc.Repo.GetProposal(ctx, cmd.ProposalID)
	if err != nil {
		return entities.Proposal{}, err
	}
	now := uc.now()
	if !services.AcceptsBallots(proposal, now) {
		return entities.Proposal{}, domainerrors.ErrProposalNotActive
	}

	ballotID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Proposal{}, err
	}
	updated, err := uc.Repo.RecordBallot(ctx, entities.Ballot{
		BallotID:   ballotID,
		ProposalID: proposal.ProposalID,
		VoterID:    strings.TrimSpace(cmd.VoterID),
		InFavor:    cmd.InFavor,
		CreatedAt:  now,
	}, uc.quorum(), now)
	if err != nil {
		logger.Warn("proposal ballot rejected",
			"event", "governance_ballot_rejected",
			"module", moduleName,
			"layer", "application",
			"proposal_id", cmd.ProposalID,
			"voter_id", strings.TrimSpace(cmd.VoterID),
			"error", err.Error(),
		)
		return entities.Proposal{}, err
	}

	uc.chain(ctx, "vote", updated.ProposalID, func(callCtx context.Context, chain ports.ChainBridge) error {
		return chain.VoteOnChain(callCtx, updated.ProposalID, strings.TrimSpace(cmd.VoterID), cmd.InFavor)
	})
	uc.emit(ctx, contractsv1.EventProposalVoted, updated.ProposalID, now, map[string]any{
		"proposal_id":    updated.ProposalID,
		"voter_id":       strings.TrimSpace(cmd.VoterID),
		"in_favor":       cmd.InFavor,
		"votes_for":      updated.VotesFor,
		"votes_against":  updated.VotesAgainst,
		"total_votes":    updated.TotalVotes,
		"quorum_reached": updated.QuorumReached,
		"status":         string(updated.Status),
	})
	logger.Info("proposal ballot recorded",
		"event", "governance_ballot_recorded",
		"module", moduleName,
		"layer", "application",
		"proposal_id", updated.ProposalID,
		"total_votes", updated.TotalVotes,
		"status", string(updated.Status),
	)
	return updated, nil
}

// Execute funds a passed proposal once its voting period ended. The treasury
// allocation is keyed by proposal id, so at most one caller ever moves funds.
func (uc GovernorUseCase) Execute(ctx context.Context, cmd ExecuteCommand) (entities.Proposal, error) {
	logger := application.ResolveLogger(uc.Logger)
	if cmd.ProposalID == 0 || strings.TrimSpace(cmd.ExecutorID) == "" {
		return entities.Proposal{}, domainerrors.ErrInvalidProposalInput
	}
	proposal, err := uc.Repo.GetProposal(ctx, cmd.ProposalID)
	if err != nil {
		return entities.Proposal{}, err
	}
	now := uc.now()
	if proposal.Status != entities.ProposalStatusPassed {
		return entities.Proposal{}, domainerrors.ErrProposalNotPassed
	}
	if !services.Executable(proposal, now) {
		return entities.Proposal{}, domainerrors.ErrVotingStillOpen
	}

	if uc.Treasury != nil {
		available, err := uc.Treasury.AvailableFunds(ctx)
		if err != nil {
			return entities.Proposal{}, err
		}
		if available < proposal.AmountRequested {
			logger.Warn("proposal execution refused for insufficient funds",
				"event", "governance_execute_insufficient_funds",
				"module", moduleName,
				"layer", "application",
				"proposal_id", proposal.ProposalID,
				"amount_requested", proposal.AmountRequested,
				"available", available,
			)
			return entities.Proposal{}, apperrors.ErrInsufficientFunds
		}
		err = uc.Treasury.Allocate(ctx, proposal.ProposalID, proposal.AmountRequested, proposal.Beneficiary)
		// A conflict means the allocation already exists; the status CAS
		// below decides whether this caller completes the execution.
		if err != nil && !errors.Is(err, apperrors.ErrConflict) {
			return entities.Proposal{}, err
		}
	}

	executed, err := uc.Repo.MarkExecuted(ctx, proposal.ProposalID, strings.TrimSpace(cmd.ExecutorID), now)
	if err != nil {
		return entities.Proposal{}, err
	}
	if !executed {
		return entities.Proposal{}, domainerrors.ErrExecutionConflict
	}
	proposal.Status = entities.ProposalStatusExecuted
	proposal.ExecutedAt = &now
	proposal.ExecutedBy = strings.TrimSpace(cmd.ExecutorID)
	proposal.UpdatedAt = now

	uc.chain(ctx, "execute", proposal.ProposalID, func(callCtx context.Context, chain ports.ChainBridge) error {
		return chain.ExecuteOnChain(callCtx, proposal)
	})
	uc.emit(ctx, contractsv1.EventProposalExecuted, proposal.ProposalID, now, map[string]any{
		"proposal_id": proposal.ProposalID,
		"executed_by": proposal.ExecutedBy,
		"amount":      proposal.AmountRequested,
		"beneficiary": proposal.Beneficiary,
	})
	logger.Info("proposal executed",
		"event", "governance_proposal_executed",
		"module", moduleName,
		"layer", "application",
		"proposal_id", proposal.ProposalID,
		"executed_by", proposal.ExecutedBy,
		"amount", proposal.AmountRequested,
	)
	return proposal, nil
}

// CloseExpired fails active proposals whose voting period ended without
// reaching quorum.
func (uc GovernorUseCase) CloseExpired(ctx context.Context, limit int) (CloseExpiredResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if limit <= 0 {
		limit = 100
	}
	now := uc.now()
	expired, err := uc.Repo.ListExpiredActive(ctx, now, limit)
	if err != nil {
		return CloseExpiredResult{}, err
	}
	result := CloseExpiredResult{Scanned: len(expired)}
	for _, proposal := range expired {
		closed, err := uc.Repo.TransitionStatus(ctx, proposal.ProposalID, entities.ProposalStatusActive, entities.ProposalStatusFailed, now)
		if err != nil {
			return result, err
		}
		if !closed {
			continue
		}
		result.Closed++
		uc.emit(ctx, contractsv1.EventProposalExpired, proposal.ProposalID, now, map[string]any{
			"proposal_id": proposal.ProposalID,
			"total_votes": proposal.TotalVotes,
		})
	}
	if result.Closed > 0 {
		logger.Info("expired proposals closed",
			"event", "governance_proposals_expired",
			"module", moduleName,
			"layer", "application",
			"scanned", result.Scanned,
			"closed", result.Closed,
		)
	}
	return result, nil
}

func (uc GovernorUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}

func (uc GovernorUseCase) quorum() int {
	if uc.Quorum <= 0 {
		return services.DefaultQuorum
	}
	return uc.Quorum
}

func (uc GovernorUseCase) votingPeriod() time.Duration {
	if uc.VotingPeriod <= 0 {
		return services.DefaultVotingPeriod
	}
	return uc.VotingPeriod
}
