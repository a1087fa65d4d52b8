package rewards

import (
	"context"

	"wishpact/contexts/wish-verification/verification-service/domain/entities"
	"wishpact/contexts/wish-verification/verification-service/ports"
	"wishpact/internal/platform/chainbridge"
)

// Distributor asks the settlement relay to release the stake and pledges of
// a verified wish to its creator.
type Distributor struct {
	Relay chainbridge.Submitter
}

func (d Distributor) DistributeRewards(ctx context.Context, wish entities.Wish) error {
	return d.Relay.Submit(ctx, chainbridge.OperationDistribute, map[string]any{
		"wish_id":      wish.WishID,
		"creator_id":   wish.CreatorID,
		"stake_amount": wish.StakeAmount,
		"pledge_total": wish.PledgeTotal,
	})
}

var _ ports.RewardDistributor = Distributor{}
