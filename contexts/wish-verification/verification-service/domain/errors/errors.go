package errors

import "wishpact/contracts/apperrors"

var (
	ErrInvalidWishInput           = apperrors.New(apperrors.KindValidation, "invalid wish input")
	ErrInvalidPledgeInput         = apperrors.New(apperrors.KindValidation, "invalid pledge input")
	ErrInvalidVoteInput           = apperrors.New(apperrors.KindValidation, "invalid vote input")
	ErrInvalidProofInput          = apperrors.New(apperrors.KindValidation, "invalid proof input")
	ErrWishNotFound               = apperrors.New(apperrors.KindNotFound, "wish not found")
	ErrProofNotFound              = apperrors.New(apperrors.KindNotFound, "proof not found")
	ErrNotWishCreator             = apperrors.New(apperrors.KindAuthorization, "only the wish creator may submit proof")
	ErrCancelForbidden            = apperrors.New(apperrors.KindAuthorization, "only the wish creator or an admin may cancel")
	ErrWishNotActive              = apperrors.New(apperrors.KindState, "wish is not active")
	ErrWishNotPendingVerification = apperrors.New(apperrors.KindState, "wish is not pending verification")
	ErrWishFinalized              = apperrors.New(apperrors.KindState, "wish is finalized")
	ErrWishNotFailed              = apperrors.New(apperrors.KindState, "wish has not failed")
	ErrDuplicateVote              = apperrors.New(apperrors.KindConflict, "voter has already voted on this wish")
	ErrConflict                   = apperrors.New(apperrors.KindConflict, "wish conflict")
)
