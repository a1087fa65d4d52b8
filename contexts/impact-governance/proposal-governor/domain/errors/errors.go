package errors

import "wishpact/contracts/apperrors"

var (
	ErrInvalidProposalInput = apperrors.New(apperrors.KindValidation, "invalid proposal input")
	ErrInvalidBallotInput   = apperrors.New(apperrors.KindValidation, "invalid proposal vote input")
	ErrProposalNotFound     = apperrors.New(apperrors.KindNotFound, "proposal not found")
	ErrProposalNotActive    = apperrors.New(apperrors.KindState, "proposal is not open for voting")
	ErrProposalNotPassed    = apperrors.New(apperrors.KindState, "proposal has not passed")
	ErrVotingStillOpen      = apperrors.New(apperrors.KindState, "proposal voting period has not ended")
	ErrDuplicateBallot      = apperrors.New(apperrors.KindConflict, "voter has already voted on this proposal")
	ErrExecutionConflict    = apperrors.New(apperrors.KindConflict, "proposal execution already in progress")
)
