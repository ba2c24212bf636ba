package config

import (
	"errors"
)

// Sentinel error kinds for this package. Load wraps provider and
// validation failures with these so callers can match with errors.Is.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
