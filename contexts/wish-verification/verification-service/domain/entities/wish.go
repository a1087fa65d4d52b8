package entities

import "time"

type WishStatus string

const (
	WishStatusActive              WishStatus = "active"
	WishStatusPendingVerification WishStatus = "pending_verification"
	WishStatusVerified            WishStatus = "verified"
	WishStatusFailed              WishStatus = "failed"
	WishStatusCancelled           WishStatus = "cancelled"
)

// Terminal reports whether no further transition is possible.
func (s WishStatus) Terminal() bool {
	switch s {
	case WishStatusVerified, WishStatusFailed, WishStatusCancelled:
		return true
	default:
		return false
	}
}

// AcceptsPledges reports whether pledge totals may still grow.
func (s WishStatus) AcceptsPledges() bool {
	return s == WishStatusActive || s == WishStatusPendingVerification
}

type ProofMethod string

const (
	ProofMethodMedia            ProofMethod = "media"
	ProofMethodGeolocation      ProofMethod = "geolocation"
	ProofMethodExternalActivity ProofMethod = "external_activity"
	ProofMethodRepositoryCommit ProofMethod = "repository_commit"
	ProofMethodCustom           ProofMethod = "custom"
)

func (m ProofMethod) Valid() bool {
	switch m {
	case ProofMethodMedia,
		ProofMethodGeolocation,
		ProofMethodExternalActivity,
		ProofMethodRepositoryCommit,
		ProofMethodCustom:
		return true
	default:
		return false
	}
}

type Wish struct {
	WishID        string
	CreatorID     string
	Title         string
	StakeAmount   int64
	PledgeTotal   int64
	PledgeCount   int
	VoteCount     int
	Deadline      time.Time
	ProofMethod   ProofMethod
	Status        WishStatus
	ImpactPercent int
	Beneficiary   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ResolvedAt    *time.Time
}

type Pledge struct {
	PledgeID    string
	WishID      string
	SupporterID string
	Amount      int64
	CreatedAt   time.Time
}

type Proof struct {
	ProofID     string
	WishID      string
	SubmitterID string
	Method      ProofMethod
	Payload     []byte
	CreatedAt   time.Time
}
