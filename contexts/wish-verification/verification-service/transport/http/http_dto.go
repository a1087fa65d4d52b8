package http

import "encoding/json"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type CreateWishRequest struct {
	Title         string `json:"title"`
	StakeAmount   int64  `json:"stake_amount"`
	Deadline      string `json:"deadline"`
	ProofMethod   string `json:"proof_method"`
	ImpactPercent int    `json:"impact_percent"`
	Beneficiary   string `json:"beneficiary,omitempty"`
}

type WishDTO struct {
	WishID        string `json:"wish_id"`
	CreatorID     string `json:"creator_id"`
	Title         string `json:"title"`
	StakeAmount   int64  `json:"stake_amount"`
	PledgeTotal   int64  `json:"pledge_total"`
	PledgeCount   int    `json:"pledge_count"`
	Deadline      string `json:"deadline"`
	ProofMethod   string `json:"proof_method"`
	Status        string `json:"status"`
	ImpactPercent int    `json:"impact_percent"`
	Beneficiary   string `json:"beneficiary,omitempty"`
	CreatedAt     string `json:"created_at"`
	ResolvedAt    string `json:"resolved_at,omitempty"`
}

type WishResponse struct {
	Status string  `json:"status"`
	Data   WishDTO `json:"data"`
}

type RecordPledgeRequest struct {
	Amount int64 `json:"amount"`
}

type PledgeResponse struct {
	Status string `json:"status"`
	Data   struct {
		PledgeID    string `json:"pledge_id"`
		WishID      string `json:"wish_id"`
		SupporterID string `json:"supporter_id"`
		Amount      int64  `json:"amount"`
		PledgeTotal int64  `json:"pledge_total"`
		PledgeCount int    `json:"pledge_count"`
		CreatedAt   string `json:"created_at"`
	} `json:"data"`
}

// SubmitProofRequest carries the proof payload as raw JSON. Its shape depends
// on the wish's proof method.
type SubmitProofRequest struct {
	Payload json.RawMessage `json:"payload"`
}

type SubmitProofResponse struct {
	Status string `json:"status"`
	Data   struct {
		ProofID    string `json:"proof_id"`
		WishID     string `json:"wish_id"`
		WishStatus string `json:"wish_status"`
	} `json:"data"`
}

type CastVoteRequest struct {
	Choice string `json:"choice"`
}

type CastVoteResponse struct {
	Status string `json:"status"`
	Data   struct {
		VoteID     string `json:"vote_id"`
		Weight     int    `json:"weight"`
		WishStatus string `json:"wish_status"`
		Decision   string `json:"decision"`
		TotalVotes int    `json:"total_votes"`
	} `json:"data"`
}

type TallyDTO struct {
	Total       int `json:"total"`
	Yes         int `json:"yes"`
	No          int `json:"no"`
	WeightedYes int `json:"weighted_yes"`
	WeightedNo  int `json:"weighted_no"`
}

type VerificationStatusDTO struct {
	WishID        string   `json:"wish_id"`
	WishStatus    string   `json:"wish_status"`
	Decision      string   `json:"decision"`
	QuorumReached bool     `json:"quorum_reached"`
	TimeExpired   bool     `json:"time_expired"`
	Deadline      string   `json:"deadline"`
	Votes         TallyDTO `json:"votes"`
}

type VerificationStatusResponse struct {
	Status string                `json:"status"`
	Data   VerificationStatusDTO `json:"data"`
}

type ResolveResponse struct {
	Status string `json:"status"`
	Data   struct {
		WishID           string                `json:"wish_id"`
		WishStatus       string                `json:"wish_status"`
		Decision         string                `json:"decision"`
		Transitioned     bool                  `json:"transitioned"`
		ImpactAmount     int64                 `json:"impact_amount"`
		TreasuryCredited bool                  `json:"treasury_credited"`
		Verification     VerificationStatusDTO `json:"verification"`
	} `json:"data"`
}
