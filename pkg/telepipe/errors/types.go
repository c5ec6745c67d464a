package errors

import "fmt"

// FieldError indicates a missing or out-of-contract event/report field.
type FieldError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("field %s: %s", e.Field, e.Message)
	}
	return e.Message
}

// SinkError indicates an outbound sink call failed.
type SinkError struct {
	Sink string
	Err  error
}

// Error implements the error interface.
func (e *SinkError) Error() string {
	return fmt.Sprintf("sink %s: %v", e.Sink, e.Err)
}

// Unwrap returns the underlying error.
func (e *SinkError) Unwrap() error {
	return e.Err
}

// PreconditionError indicates a telemetry send precondition was not met,
// e.g. consent withdrawn or an attestation check failing.
type PreconditionError struct {
	Precondition string
}

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	return fmt.Sprintf("telemetry precondition not met: %s", e.Precondition)
}
