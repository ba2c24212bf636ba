package metrics

import (
	"errors"
)

// Sentinel kinds for metrics errors.
var (
	// ErrObserveFailed reports a failed observation, e.g. a label
	// cardinality mismatch surfaced by a collector.
	ErrObserveFailed = errors.New("metrics observe failed")
)
