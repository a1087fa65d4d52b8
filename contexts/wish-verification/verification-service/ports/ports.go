package ports

import (
	"context"
	"time"

	"wishpact/contexts/wish-verification/verification-service/domain/entities"
	contractsv1 "wishpact/contracts/gen/events/v1"
)

// WishRepository is the storage boundary. Every state-changing method is a
// single conditional write so concurrent callers in separate processes agree
// on one winner.
type WishRepository interface {
	CreateWish(ctx context.Context, wish entities.Wish) error
	GetWish(ctx context.Context, wishID string) (entities.Wish, error)
	// ListWishesByStatus pages by wish id; pass the last seen id as afterID.
	ListWishesByStatus(ctx context.Context, status entities.WishStatus, afterID string, limit int) ([]entities.Wish, error)
	ListOverdueWishes(ctx context.Context, status entities.WishStatus, now time.Time, limit int) ([]entities.Wish, error)

	// RecordPledge stores the pledge and increments the wish totals only while
	// the wish still accepts pledges. It returns the updated wish.
	RecordPledge(ctx context.Context, pledge entities.Pledge) (entities.Wish, error)
	HasPledge(ctx context.Context, wishID string, supporterID string) (bool, error)

	// SubmitProof stores the proof and moves the wish from active to
	// pending_verification in one operation.
	SubmitProof(ctx context.Context, proof entities.Proof, at time.Time) error
	GetLatestProof(ctx context.Context, wishID string) (entities.Proof, error)

	// InsertVote fails with ErrDuplicateVote on the (wish, voter) unique
	// constraint and with ErrWishNotPendingVerification when the wish left
	// verification. A stored vote increments the wish vote count.
	InsertVote(ctx context.Context, vote entities.Vote) error
	ListVotes(ctx context.Context, wishID string) ([]entities.Vote, error)

	// TransitionWishStatus is a compare-and-set on status. It reports whether
	// this caller performed the transition.
	TransitionWishStatus(ctx context.Context, wishID string, from entities.WishStatus, to entities.WishStatus, at time.Time) (bool, error)

	// SettleWish moves a wish out of pending_verification only while its
	// stored vote count still equals voteCount. The winner gets the row as
	// written, with pledge totals frozen by the same write.
	SettleWish(ctx context.Context, wishID string, voteCount int, to entities.WishStatus, at time.Time) (entities.Wish, bool, error)
}

type TreasuryCredit struct {
	WishID      string
	Amount      int64
	Beneficiary string
}

// TreasuryCreditor credits the impact treasury once per wish. It reports
// false without error when the wish was already credited.
type TreasuryCreditor interface {
	Credit(ctx context.Context, credit TreasuryCredit) (bool, error)
}

type RewardDistributor interface {
	DistributeRewards(ctx context.Context, wish entities.Wish) error
}

type Notifier interface {
	Notify(ctx context.Context, userID string, kind string, message string) error
}

type Monitor interface {
	Audit(ctx context.Context, event string, data map[string]any)
	Error(ctx context.Context, message string, err error, data map[string]any)
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
