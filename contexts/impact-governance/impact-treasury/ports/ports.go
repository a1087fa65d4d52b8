package ports

import (
	"context"
	"time"

	"wishpact/contexts/impact-governance/impact-treasury/domain/entities"
	contractsv1 "wishpact/contracts/gen/events/v1"
)

// Repository writes ledger rows and the account totals in one storage
// operation.
type Repository interface {
	// RecordCredit fails with ErrAlreadyCredited when the wish already has a
	// credit row.
	RecordCredit(ctx context.Context, credit entities.Credit) error
	// RecordAllocation fails with ErrInsufficientFunds when available funds
	// are below the amount and with ErrAlreadyAllocated on a second
	// allocation for the same proposal.
	RecordAllocation(ctx context.Context, allocation entities.Allocation) error
	GetAccount(ctx context.Context) (entities.Account, error)
	ListCredits(ctx context.Context, limit int) ([]entities.Credit, error)
}

// ProposalCounter reports proposal totals for the stats view.
type ProposalCounter interface {
	CountByStatus(ctx context.Context) (entities.ProposalCounts, error)
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
