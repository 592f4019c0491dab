package transit

import "errors"

var (
	// ErrInvalidInput indicates a malformed edge submission (missing stop name or distance).
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownStop indicates a stop name that was never registered.
	ErrUnknownStop = errors.New("unknown stop")
	// ErrNoPath indicates both stops exist but no route connects them.
	ErrNoPath = errors.New("no path")
	// ErrInconsistentSuccessors indicates the successor matrix could not be walked to its end.
	ErrInconsistentSuccessors = errors.New("inconsistent successor matrix")
)
