package ports

import (
	"context"
	"time"

	"wishpact/contexts/impact-governance/proposal-governor/domain/entities"
	contractsv1 "wishpact/contracts/gen/events/v1"
)

type Repository interface {
	// CreateProposal assigns the next sequential proposal id.
	CreateProposal(ctx context.Context, proposal entities.Proposal) (entities.Proposal, error)
	GetProposal(ctx context.Context, proposalID uint64) (entities.Proposal, error)
	ListProposals(ctx context.Context, status entities.ProposalStatus, limit int) ([]entities.Proposal, error)
	// RecordBallot stores the ballot and applies it to the counters in one
	// operation guarded by status = active and deadline >= at. It fails with
	// ErrDuplicateBallot on a second ballot from the same voter.
	RecordBallot(ctx context.Context, ballot entities.Ballot, quorum int, at time.Time) (entities.Proposal, error)
	// TransitionStatus is a compare-and-set on status.
	TransitionStatus(ctx context.Context, proposalID uint64, from entities.ProposalStatus, to entities.ProposalStatus, at time.Time) (bool, error)
	// MarkExecuted moves a passed proposal to executed and stamps the
	// execution exactly once.
	MarkExecuted(ctx context.Context, proposalID uint64, executorID string, at time.Time) (bool, error)
	ListExpiredActive(ctx context.Context, now time.Time, limit int) ([]entities.Proposal, error)
	CountByStatus(ctx context.Context) (entities.StatusCounts, error)
}

// Treasury funds executed proposals. Allocate reports insufficient funds and
// repeated allocations through the shared error kinds.
type Treasury interface {
	AvailableFunds(ctx context.Context) (int64, error)
	Allocate(ctx context.Context, proposalID uint64, amount int64, beneficiary string) error
}

// ChainBridge mirrors proposal activity to the settlement chain. Calls are
// best effort.
type ChainBridge interface {
	ProposeOnChain(ctx context.Context, proposal entities.Proposal) error
	VoteOnChain(ctx context.Context, proposalID uint64, voterID string, inFavor bool) error
	ExecuteOnChain(ctx context.Context, proposal entities.Proposal) error
}

type Sanitizer interface {
	Sanitize(text string) string
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = contractsv1.Envelope

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}
