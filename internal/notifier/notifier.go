package notifier

import (
	"context"
	"fmt"
)

// Notifier defines the interface for delivering a notification message
type Notifier interface {
	// Notify delivers the message and returns nil only once it was accepted
	Notify(ctx context.Context, message string) error
}

// DeliveryError reports a message the receiving service did not accept
type DeliveryError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("posting notification (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("posting notification: unexpected status code: %d", e.StatusCode)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
