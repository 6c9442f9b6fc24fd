package batch

import "errors"

var (
	ErrFileNotFound        = errors.New("batch file not found")
	ErrSessionNotFound     = errors.New("batch session not found")
	ErrTerminalState       = errors.New("batch file is in a terminal state; only retry_processing may reopen it")
	ErrUnsupportedDecision = errors.New("unsupported decision type")
	// ErrDecisionConflict means another decision won the compare-and-set
	// race; the caller must re-fetch current state.
	ErrDecisionConflict = errors.New("batch file was modified concurrently")
)
