package aggregate

import "errors"

// Sentinel kinds for aggregation errors.
var (
	ErrInvalidInput = errors.New("invalid input")
)
