package round

import "errors"

var (
	// ErrInvalidState is returned when an operation is invoked in a state
	// that forbids it (advancing a round that is not running, asking an idle
	// engine for its remaining time).
	ErrInvalidState = errors.New("round: invalid state")

	// ErrConfig is returned by Config.Validate and NewEngine.
	ErrConfig = errors.New("round: invalid configuration")
)
