package entities

import "time"

type Credit struct {
	WishID      string
	Amount      int64
	Beneficiary string
	CreditedAt  time.Time
}

type Allocation struct {
	ProposalID  uint64
	Amount      int64
	Beneficiary string
	AllocatedAt time.Time
}

type Account struct {
	TotalFunds     int64
	AllocatedFunds int64
	CreditCount    int
}

func (a Account) AvailableFunds() int64 {
	return a.TotalFunds - a.AllocatedFunds
}

type ProposalCounts struct {
	Active   int
	Passed   int
	Failed   int
	Executed int
	Total    int
}

type Stats struct {
	TotalFunds     int64
	AllocatedFunds int64
	AvailableFunds int64
	Credits        int
	Proposals      ProposalCounts
}
