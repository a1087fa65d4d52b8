package chain

import (
	"context"

	"wishpact/contexts/impact-governance/proposal-governor/domain/entities"
	"wishpact/contexts/impact-governance/proposal-governor/ports"
	"wishpact/internal/platform/chainbridge"
)

// Bridge mirrors proposal activity through the settlement relay.
type Bridge struct {
	Relay chainbridge.Submitter
}

func (b Bridge) ProposeOnChain(ctx context.Context, proposal entities.Proposal) error {
	return b.Relay.Submit(ctx, chainbridge.OperationPropose, map[string]any{
		"proposal_id":      proposal.ProposalID,
		"proposer_id":      proposal.ProposerID,
		"plan_ref":         proposal.PlanRef,
		"amount_requested": proposal.AmountRequested,
		"beneficiary":      proposal.Beneficiary,
	})
}

func (b Bridge) VoteOnChain(ctx context.Context, proposalID uint64, voterID string, inFavor bool) error {
	return b.Relay.Submit(ctx, chainbridge.OperationVote, map[string]any{
		"proposal_id": proposalID,
		"voter_id":    voterID,
		"in_favor":    inFavor,
	})
}

func (b Bridge) ExecuteOnChain(ctx context.Context, proposal entities.Proposal) error {
	return b.Relay.Submit(ctx, chainbridge.OperationExecute, map[string]any{
		"proposal_id": proposal.ProposalID,
		"amount":      proposal.AmountRequested,
		"beneficiary": proposal.Beneficiary,
	})
}

var _ ports.ChainBridge = Bridge{}
