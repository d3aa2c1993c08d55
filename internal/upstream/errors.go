package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Error is returned when a collaborator answers with a non-200 status or
// cannot be reached at all. StatusCode is 0 for network and timeout failures.
type Error struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: upstream returned HTTP %d", e.Service, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: upstream request failed: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("%s: upstream request failed", e.Service)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was the outbound deadline expiring
func (e *Error) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}
