package bracket

import "errors"

var (
	// ErrFeedUnavailable is returned when the league snapshot cannot be fetched.
	ErrFeedUnavailable = errors.New("league feed unavailable")
	// ErrInsufficientData signals that the regular season has not reached the cutoff.
	ErrInsufficientData = errors.New("regular season not complete")
	// ErrLiveFetchFailed signals missing live data for the current week. Never fatal.
	ErrLiveFetchFailed = errors.New("live scores unavailable")
	// ErrInvalidSettings signals a bracket configuration that breaks its invariants.
	ErrInvalidSettings = errors.New("invalid bracket settings")
)
