package predictor

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// DefaultFailureMessage is used when a service reports failure without a reason.
const DefaultFailureMessage = "Prediction failed"

// TransportError means no usable answer came back: the endpoint was
// unreachable, timed out, or replied with something that is not a
// prediction envelope.
type TransportError struct {
	URL    string
	Status int // 0 when no response was received
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("prediction transport %s (status %d): %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("prediction transport %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the request gave up waiting for the service.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// ApplicationError carries the reason a service answered success:false.
type ApplicationError struct {
	Message string
	Status  int
}

func (e *ApplicationError) Error() string {
	return e.Message
}
