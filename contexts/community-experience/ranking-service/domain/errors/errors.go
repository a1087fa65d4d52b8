package errors

import "wishpact/contracts/apperrors"

var (
	ErrInvalidLeaderboardQuery = apperrors.New(apperrors.KindValidation, "invalid leaderboard query")
)
