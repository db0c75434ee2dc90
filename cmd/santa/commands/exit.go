package commands

import (
	"errors"
	"fmt"

	"github.com/dyluth/santa/internal/config"
	"github.com/dyluth/santa/internal/draw"
	"github.com/dyluth/santa/internal/notify"
)

// Exit codes
const (
	ExitSuccess    = 0
	ExitFailure    = 1 // anything not listed below
	ExitConfig     = 2 // config not found or malformed, bad settings
	ExitExhausted  = 3 // no valid draw within the attempt limit
	ExitDelivery   = 4 // at least one notification failed
	exitCodeMaxNum = ExitDelivery
)

// ExitError carries the process exit code for an error.
type ExitError struct {
	Code    int    // Exit code
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// ExitCode maps an error returned by Execute to a process exit code.
// An explicit ExitError wins; otherwise well-known causes are classified.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code > ExitSuccess && exitErr.Code <= exitCodeMaxNum {
		return exitErr.Code
	}

	switch {
	case errors.Is(err, config.ErrConfigNotFound),
		errors.Is(err, config.ErrConfigMalformed),
		errors.Is(err, draw.ErrDuplicateParticipant),
		errors.Is(err, draw.ErrTooFewParticipants):
		return ExitConfig
	case errors.Is(err, draw.ErrSearchExhausted):
		return ExitExhausted
	case errors.Is(err, notify.ErrDeliveryFailed):
		return ExitDelivery
	default:
		return ExitFailure
	}
}
