package bootstrap

import (
	"context"
	"errors"

	"wishpact/contexts/community-experience/ranking-service/domain/ranking"
	treasuryapp "wishpact/contexts/impact-governance/impact-treasury/application"
	treasuryentities "wishpact/contexts/impact-governance/impact-treasury/domain/entities"
	treasuryerrors "wishpact/contexts/impact-governance/impact-treasury/domain/errors"
	governorports "wishpact/contexts/impact-governance/proposal-governor/ports"
	verificationentities "wishpact/contexts/wish-verification/verification-service/domain/entities"
	verificationports "wishpact/contexts/wish-verification/verification-service/ports"
)

// treasuryCreditor lets verification credit the impact share of a failed wish.
type treasuryCreditor struct {
	treasury treasuryapp.Service
}

func (c treasuryCreditor) Credit(ctx context.Context, credit verificationports.TreasuryCredit) (bool, error) {
	_, err := c.treasury.Credit(ctx, treasuryapp.CreditInput{
		WishID:      credit.WishID,
		Amount:      credit.Amount,
		Beneficiary: credit.Beneficiary,
	})
	if errors.Is(err, treasuryerrors.ErrAlreadyCredited) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// governorTreasury funds executed proposals.
type governorTreasury struct {
	treasury treasuryapp.Service
}

func (t governorTreasury) AvailableFunds(ctx context.Context) (int64, error) {
	return t.treasury.AvailableFunds(ctx)
}

func (t governorTreasury) Allocate(ctx context.Context, proposalID uint64, amount int64, beneficiary string) error {
	_, err := t.treasury.Allocate(ctx, treasuryapp.AllocateInput{
		ProposalID:  proposalID,
		Amount:      amount,
		Beneficiary: beneficiary,
	})
	return err
}

// proposalCounter reports governor totals to the treasury stats view.
type proposalCounter struct {
	proposals governorports.Repository
}

func (c proposalCounter) CountByStatus(ctx context.Context) (treasuryentities.ProposalCounts, error) {
	counts, err := c.proposals.CountByStatus(ctx)
	if err != nil {
		return treasuryentities.ProposalCounts{}, err
	}
	return treasuryentities.ProposalCounts{
		Active:   counts.Active,
		Passed:   counts.Passed,
		Failed:   counts.Failed,
		Executed: counts.Executed,
		Total:    counts.Total,
	}, nil
}

type wishLister interface {
	ListWishes(ctx context.Context) ([]verificationentities.Wish, error)
	ListPledges(ctx context.Context) ([]verificationentities.Pledge, error)
}

// wishSnapshot builds leaderboard snapshots from the verification store.
type wishSnapshot struct {
	wishes wishLister
}

func (s wishSnapshot) LoadSnapshot(ctx context.Context) (ranking.Snapshot, error) {
	wishes, err := s.wishes.ListWishes(ctx)
	if err != nil {
		return ranking.Snapshot{}, err
	}
	pledges, err := s.wishes.ListPledges(ctx)
	if err != nil {
		return ranking.Snapshot{}, err
	}

	snapshot := ranking.Snapshot{
		Wishes:  make([]ranking.WishRecord, 0, len(wishes)),
		Pledges: make([]ranking.PledgeRecord, 0, len(pledges)),
	}
	for _, wish := range wishes {
		snapshot.Wishes = append(snapshot.Wishes, ranking.WishRecord{
			WishID:    wish.WishID,
			CreatorID: wish.CreatorID,
			Status:    string(wish.Status),
		})
	}
	for _, pledge := range pledges {
		snapshot.Pledges = append(snapshot.Pledges, ranking.PledgeRecord{
			SupporterID: pledge.SupporterID,
			Amount:      pledge.Amount,
		})
	}
	snapshot.Users = ranking.CollectUsers(snapshot.Wishes, snapshot.Pledges)
	return snapshot, nil
}
