package delivery

import "fmt"

// Reason classifies a delivery failure. Configuration failures are never
// retried; everything else gets the single scheduled retry.
type Reason string

const (
	ReasonConfiguration Reason = "configuration"
	ReasonUnreachable   Reason = "destination_unreachable"
	ReasonTransport     Reason = "transport"
	ReasonAuthorization Reason = "authorization"
)

type Error struct {
	Reason  Reason
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure class can succeed on a plain
// re-attempt. Authorization failures count as transport for retry purposes;
// credential refresh is not this pipeline's job.
func (e *Error) Retryable() bool {
	return e.Reason != ReasonConfiguration
}
