package workers

import (
	"context"
	"log/slog"

	application "wishpact/contexts/impact-governance/proposal-governor/application"
	"wishpact/contexts/impact-governance/proposal-governor/application/commands"
)

// ProposalExpiry closes active proposals whose voting window ended without
// quorum.
type ProposalExpiry struct {
	Governor  commands.GovernorUseCase
	BatchSize int
	Logger    *slog.Logger
}

func (w ProposalExpiry) RunOnce(ctx context.Context) (commands.CloseExpiredResult, error) {
	result, err := w.Governor.CloseExpired(ctx, w.BatchSize)
	if err != nil {
		application.ResolveLogger(w.Logger).Error("proposal expiry cycle failed",
			"event", "governance_proposal_expiry_failed",
			"module", "impact-governance/proposal-governor",
			"layer", "worker",
			"error", err.Error(),
		)
		return result, err
	}
	return result, nil
}
