package services

import (
	"time"

	"wishpact/contexts/impact-governance/proposal-governor/domain/entities"
)

const (
	DefaultQuorum       = 10
	DefaultVotingPeriod = 7 * 24 * time.Hour
)

// ApplyBallot adds one ballot to the counters. Reaching quorum settles the
// proposal: passed on a strict majority in favor, failed otherwise.
func ApplyBallot(proposal entities.Proposal, inFavor bool, quorum int, at time.Time) entities.Proposal {
	if quorum <= 0 {
		quorum = DefaultQuorum
	}
	if inFavor {
		proposal.VotesFor++
	} else {
		proposal.VotesAgainst++
	}
	proposal.TotalVotes++
	if proposal.TotalVotes >= quorum {
		proposal.QuorumReached = true
		if proposal.VotesFor > proposal.VotesAgainst {
			proposal.Status = entities.ProposalStatusPassed
		} else {
			proposal.Status = entities.ProposalStatusFailed
		}
	}
	proposal.UpdatedAt = at
	return proposal
}

// AcceptsBallots reports whether a ballot cast at now may be counted. The
// deadline itself is still inside the voting window.
func AcceptsBallots(proposal entities.Proposal, now time.Time) bool {
	return proposal.Status == entities.ProposalStatusActive && !now.After(proposal.VotingDeadline)
}

// Executable reports whether execution may be attempted at now.
func Executable(proposal entities.Proposal, now time.Time) bool {
	return proposal.Status == entities.ProposalStatusPassed && now.After(proposal.VotingDeadline)
}
