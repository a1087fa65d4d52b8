package services

import (
	"testing"
	"time"

	"wishpact/contexts/impact-governance/proposal-governor/domain/entities"
)

func TestApplyBallotResolvesAtQuorum(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	proposal := entities.Proposal{Status: entities.ProposalStatusActive, VotingDeadline: now.Add(time.Hour)}
	for i := 0; i < 9; i++ {
		proposal = ApplyBallot(proposal, i%3 != 0, DefaultQuorum, now)
		if proposal.Status != entities.ProposalStatusActive || proposal.QuorumReached {
			t.Fatalf("ballot %d: proposal settled early: %+v", i, proposal)
		}
	}
	proposal = ApplyBallot(proposal, true, DefaultQuorum, now)
	if proposal.Status != entities.ProposalStatusPassed || !proposal.QuorumReached {
		t.Fatalf("expected passed with quorum, got %+v", proposal)
	}
	if proposal.VotesFor+proposal.VotesAgainst != proposal.TotalVotes {
		t.Fatalf("counters out of balance: %+v", proposal)
	}
}

func TestApplyBallotTieFails(t *testing.T) {
	proposal := entities.Proposal{Status: entities.ProposalStatusActive}
	for i := 0; i < 4; i++ {
		proposal = ApplyBallot(proposal, i%2 == 0, 4, time.Now())
	}
	if proposal.Status != entities.ProposalStatusFailed || !proposal.QuorumReached {
		t.Fatalf("expected failed on tie, got %+v", proposal)
	}
}

func TestVotingWindow(t *testing.T) {
	deadline := time.Date(2026, 5, 8, 0, 0, 0, 0, time.UTC)
	proposal := entities.Proposal{Status: entities.ProposalStatusActive, VotingDeadline: deadline}
	if !AcceptsBallots(proposal, deadline) {
		t.Fatalf("deadline instant must accept ballots")
	}
	if AcceptsBallots(proposal, deadline.Add(time.Nanosecond)) {
		t.Fatalf("ballot after deadline must be refused")
	}

	proposal.Status = entities.ProposalStatusPassed
	if Executable(proposal, deadline) {
		t.Fatalf("execution at the deadline must be refused")
	}
	if !Executable(proposal, deadline.Add(time.Second)) {
		t.Fatalf("execution after the deadline must be allowed")
	}
}
