package notify

import (
	"errors"
	"fmt"
)

// ErrDeliveryFailed matches any *DeliveryError.
var ErrDeliveryFailed = errors.New("delivery failed")

// DeliveryError reports a notification that could not be rendered or sent.
type DeliveryError struct {
	Giver string
	Email string
	Err   error
}

func (e *DeliveryError) Error() string {
	if e.Email == "" {
		return fmt.Sprintf("notification for '%s' failed: %v", e.Giver, e.Err)
	}
	return fmt.Sprintf("notification for '%s' <%s> failed: %v", e.Giver, e.Email, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

func (e *DeliveryError) Is(target error) bool {
	return target == ErrDeliveryFailed
}
