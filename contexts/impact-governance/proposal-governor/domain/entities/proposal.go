package entities

import "time"

type ProposalStatus string

const (
	ProposalStatusActive   ProposalStatus = "active"
	ProposalStatusPassed   ProposalStatus = "passed"
	ProposalStatusFailed   ProposalStatus = "failed"
	ProposalStatusExecuted ProposalStatus = "executed"
)

func (s ProposalStatus) Valid() bool {
	switch s {
	case ProposalStatusActive, ProposalStatusPassed, ProposalStatusFailed, ProposalStatusExecuted:
		return true
	default:
		return false
	}
}

type Proposal struct {
	ProposalID      uint64
	ProposerID      string
	Title           string
	PlanRef         string
	AmountRequested int64
	Beneficiary     string
	Status          ProposalStatus
	VotesFor        int
	VotesAgainst    int
	TotalVotes      int
	QuorumReached   bool
	VotingDeadline  time.Time
	ExecutedAt      *time.Time
	ExecutedBy      string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Ballot is a single voter's choice on a proposal.
type Ballot struct {
	BallotID   string
	ProposalID uint64
	VoterID    string
	InFavor    bool
	CreatedAt  time.Time
}

type StatusCounts struct {
	Active   int
	Passed   int
	Failed   int
	Executed int
	Total    int
}

func (c *StatusCounts) Add(status ProposalStatus, n int) {
	switch status {
	case ProposalStatusActive:
		c.Active += n
	case ProposalStatusPassed:
		c.Passed += n
	case ProposalStatusFailed:
		c.Failed += n
	case ProposalStatusExecuted:
		c.Executed += n
	}
	c.Total += n
}
