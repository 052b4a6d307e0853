package config

import (
	"errors"
)

// Sentinel kinds raised while loading or validating configuration.
// Callers match them with errors.Is.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
