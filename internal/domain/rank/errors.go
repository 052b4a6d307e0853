package rank

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrMissingMetric = errors.New("missing metric")
)
