package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateProposalRequest struct {
	Title           string `json:"title"`
	AmountRequested int64  `json:"amount_requested"`
	Beneficiary     string `json:"beneficiary"`
	PlanRef         string `json:"plan_ref,omitempty"`
}

type ProposalDTO struct {
	ProposalID      uint64 `json:"proposal_id"`
	ProposerID      string `json:"proposer_id"`
	Title           string `json:"title"`
	PlanRef         string `json:"plan_ref,omitempty"`
	AmountRequested int64  `json:"amount_requested"`
	Beneficiary     string `json:"beneficiary"`
	Status          string `json:"status"`
	VotesFor        int    `json:"votes_for"`
	VotesAgainst    int    `json:"votes_against"`
	TotalVotes      int    `json:"total_votes"`
	QuorumReached   bool   `json:"quorum_reached"`
	VotingDeadline  string `json:"voting_deadline"`
	ExecutedAt      string `json:"executed_at,omitempty"`
	ExecutedBy      string `json:"executed_by,omitempty"`
	CreatedAt       string `json:"created_at"`
}

type ProposalResponse struct {
	Status string      `json:"status"`
	Data   ProposalDTO `json:"data"`
}

type ListProposalsResponse struct {
	Status string        `json:"status"`
	Data   []ProposalDTO `json:"data"`
}

type VoteProposalRequest struct {
	InFavor bool `json:"in_favor"`
}
