package services

import (
	"math"
	"math/big"
	"time"

	"wishpact/contexts/wish-verification/verification-service/domain/entities"
)

const (
	DefaultQuorum = 10

	BaseVoteWeight     = 1
	PledgerVoteBonus   = 2
	MaxImpactPercent   = 100
	percentDenominator = 100
)

// VoteWeight is advisory only. Quorum and majority use raw vote counts.
func VoteWeight(hasPledge bool) int {
	if hasPledge {
		return BaseVoteWeight + PledgerVoteBonus
	}
	return BaseVoteWeight
}

type Tally struct {
	Total       int
	Yes         int
	No          int
	WeightedYes int
	WeightedNo  int
}

func CountVotes(votes []entities.Vote) Tally {
	var tally Tally
	for _, vote := range votes {
		switch vote.Choice {
		case entities.VoteChoiceYes:
			tally.Yes++
			tally.WeightedYes += vote.Weight
		case entities.VoteChoiceNo:
			tally.No++
			tally.WeightedNo += vote.Weight
		default:
			continue
		}
		tally.Total++
	}
	return tally
}

type Evaluation struct {
	Tally
	QuorumReached bool
	TimeExpired   bool
	Decision      entities.Decision
}

// Evaluate applies the quorum/deadline rule to a wish in verification.
func Evaluate(tally Tally, deadline time.Time, quorum int, now time.Time) Evaluation {
	if quorum <= 0 {
		quorum = DefaultQuorum
	}
	evaluation := Evaluation{
		Tally:         tally,
		QuorumReached: tally.Total >= quorum,
		TimeExpired:   now.After(deadline),
		Decision:      entities.DecisionPending,
	}
	if evaluation.QuorumReached || evaluation.TimeExpired {
		if tally.Yes > tally.No {
			evaluation.Decision = entities.DecisionApproved
		} else {
			evaluation.Decision = entities.DecisionRejected
		}
	}
	return evaluation
}

// DecisionForStatus reports the settled decision of a wish outside
// verification.
func DecisionForStatus(status entities.WishStatus) entities.Decision {
	switch status {
	case entities.WishStatusVerified:
		return entities.DecisionApproved
	case entities.WishStatusFailed:
		return entities.DecisionRejected
	case entities.WishStatusPendingVerification:
		return entities.DecisionPending
	default:
		return entities.DecisionNone
	}
}

// StatusForDecision maps a final decision onto its terminal wish status.
func StatusForDecision(decision entities.Decision) (entities.WishStatus, bool) {
	switch decision {
	case entities.DecisionApproved:
		return entities.WishStatusVerified, true
	case entities.DecisionRejected:
		return entities.WishStatusFailed, true
	default:
		return "", false
	}
}

// ImpactAmount is floor((stake + pledgeTotal) * percent / 100). The product is
// computed in big integers so large pools cannot overflow.
func ImpactAmount(stake int64, pledgeTotal int64, percent int) int64 {
	if percent <= 0 {
		return 0
	}
	if percent > MaxImpactPercent {
		percent = MaxImpactPercent
	}
	pool := new(big.Int).Add(big.NewInt(stake), big.NewInt(pledgeTotal))
	pool.Mul(pool, big.NewInt(int64(percent)))
	pool.Quo(pool, big.NewInt(percentDenominator))
	if pool.Sign() <= 0 {
		return 0
	}
	if !pool.IsInt64() {
		return math.MaxInt64
	}
	return pool.Int64()
}
