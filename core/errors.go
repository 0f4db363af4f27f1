package core

import "errors"

var (
	// ErrInvalidCoordinate marks a latitude or longitude outside the
	// valid degree range.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrDegenerateInterval marks a fix pair whose elapsed time is zero
	// or negative, from which no speed can be derived.
	ErrDegenerateInterval = errors.New("degenerate time interval")
)
