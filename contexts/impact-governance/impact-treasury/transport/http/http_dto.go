package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ProposalCountsDTO struct {
	Active   int `json:"active"`
	Passed   int `json:"passed"`
	Failed   int `json:"failed"`
	Executed int `json:"executed"`
	Total    int `json:"total"`
}

type TreasuryStatsResponse struct {
	Status string `json:"status"`
	Data   struct {
		TotalFunds     int64             `json:"total_funds"`
		AllocatedFunds int64             `json:"allocated_funds"`
		AvailableFunds int64             `json:"available_funds"`
		Credits        int               `json:"credits"`
		Proposals      ProposalCountsDTO `json:"proposals"`
	} `json:"data"`
}

type CreditDTO struct {
	WishID      string `json:"wish_id"`
	Amount      int64  `json:"amount"`
	Beneficiary string `json:"beneficiary,omitempty"`
	CreditedAt  string `json:"credited_at"`
}

type ListCreditsResponse struct {
	Status string      `json:"status"`
	Data   []CreditDTO `json:"data"`
}
