package errors

import "wishpact/contracts/apperrors"

var (
	ErrInvalidCreditInput     = apperrors.New(apperrors.KindValidation, "invalid treasury credit input")
	ErrInvalidAllocationInput = apperrors.New(apperrors.KindValidation, "invalid treasury allocation input")
	ErrAlreadyCredited        = apperrors.New(apperrors.KindConflict, "wish already credited to the treasury")
	ErrAlreadyAllocated       = apperrors.New(apperrors.KindConflict, "proposal already funded from the treasury")
	ErrInsufficientFunds      = apperrors.New(apperrors.KindInsufficientFunds, "treasury has insufficient available funds")
)
