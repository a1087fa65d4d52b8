package entities

import "time"

type VoteChoice string

const (
	VoteChoiceYes VoteChoice = "yes"
	VoteChoiceNo  VoteChoice = "no"
)

func (c VoteChoice) Valid() bool {
	return c == VoteChoiceYes || c == VoteChoiceNo
}

type Vote struct {
	VoteID    string
	WishID    string
	VoterID   string
	Choice    VoteChoice
	Weight    int
	CreatedAt time.Time
}

type Decision string

const (
	DecisionPending  Decision = "pending"
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
	// DecisionNone is reported for wishes that never entered verification.
	DecisionNone Decision = "none"
)
