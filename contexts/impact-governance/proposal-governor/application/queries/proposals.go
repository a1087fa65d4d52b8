package queries

import (
	"context"
	"log/slog"

	application "wishpact/contexts/impact-governance/proposal-governor/application"
	"wishpact/contexts/impact-governance/proposal-governor/domain/entities"
	domainerrors "wishpact/contexts/impact-governance/proposal-governor/domain/errors"
	"wishpact/contexts/impact-governance/proposal-governor/ports"
)

type ProposalQueries struct {
	Repo   ports.Repository
	Logger *slog.Logger
}

func (q ProposalQueries) Get(ctx context.Context, proposalID uint64) (entities.Proposal, error) {
	if proposalID == 0 {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	return q.Repo.GetProposal(ctx, proposalID)
}

// List returns proposals newest first. An empty status lists every status.
func (q ProposalQueries) List(ctx context.Context, status entities.ProposalStatus, limit int) ([]entities.Proposal, error) {
	if status != "" && !status.Valid() {
		return nil, domainerrors.ErrInvalidProposalInput
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return q.Repo.ListProposals(ctx, status, limit)
}

func (q ProposalQueries) CountByStatus(ctx context.Context) (entities.StatusCounts, error) {
	counts, err := q.Repo.CountByStatus(ctx)
	if err != nil {
		application.ResolveLogger(q.Logger).Error("proposal count failed",
			"event", "governance_count_by_status_failed",
			"module", "impact-governance/proposal-governor",
			"layer", "application",
			"error", err.Error(),
		)
		return entities.StatusCounts{}, err
	}
	return counts, nil
}
