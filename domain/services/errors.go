package services

import "errors"

var (
	// ErrInvalidGuessCap is returned when a guess cap is outside 1..3
	ErrInvalidGuessCap = errors.New("guess cap must be between 1 and 3")

	// ErrTierRequired is returned when a feature needs a higher subscription tier
	ErrTierRequired = errors.New("feature not available on current tier")

	// ErrInvalidVeil is returned when veil content fails validation
	ErrInvalidVeil = errors.New("invalid veil")
)
