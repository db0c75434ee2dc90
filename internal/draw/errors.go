package draw

import (
	"errors"
	"fmt"
)

var (
	// ErrTooFewParticipants is returned by New when fewer than two names are given.
	ErrTooFewParticipants = errors.New("a draw needs at least 2 participants")

	// ErrDuplicateParticipant matches any *DuplicateParticipantError.
	ErrDuplicateParticipant = errors.New("duplicate participant")

	// ErrSearchExhausted matches any *SearchExhaustedError.
	ErrSearchExhausted = errors.New("search exhausted")
)

// DuplicateParticipantError reports a name that appears more than once.
type DuplicateParticipantError struct {
	Name string
}

func (e *DuplicateParticipantError) Error() string {
	return fmt.Sprintf("duplicate participant '%s'", e.Name)
}

func (e *DuplicateParticipantError) Is(target error) bool {
	return target == ErrDuplicateParticipant
}

// SearchExhaustedError is returned by Run when no attempt within the budget
// produced a valid cycle.
type SearchExhaustedError struct {
	Attempts     int
	Participants int
	Exclusions   int
}

func (e *SearchExhaustedError) Error() string {
	return fmt.Sprintf("no valid assignment found after %d attempts (%d participants, %d exclusions)",
		e.Attempts, e.Participants, e.Exclusions)
}

func (e *SearchExhaustedError) Is(target error) bool {
	return target == ErrSearchExhausted
}
