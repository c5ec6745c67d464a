// Package errors provides the error taxonomy for the telemetry pipeline.
//
// The pipeline distinguishes three failure classes:
//   - Validation: malformed or missing event/report fields, recovered
//     locally by skipping enrichment or using the default handler
//   - Backend: an outbound sink failed, logged and swallowed
//   - Security: a precondition for sending telemetry was not met,
//     treated as "skip this send"
//
// None of these are ever visible to the feature code that triggered the
// event; they exist so logging, metrics, and the spool can react correctly.
package errors

import (
	"errors"
	"fmt"
)

// Class represents how a pipeline failure should be handled.
type Class int

const (
	// ClassUnknown is the fail-safe for unclassified errors.
	ClassUnknown Class = iota

	// ClassValidation indicates malformed or missing fields.
	ClassValidation

	// ClassBackend indicates an outbound collaborator failed.
	ClassBackend

	// ClassSecurity indicates a telemetry precondition was not met.
	ClassSecurity
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ClassValidation:
		return "validation"
	case ClassBackend:
		return "backend"
	case ClassSecurity:
		return "security"
	default:
		return "unknown"
	}
}

// ClassifiedError wraps an error with its class and context.
type ClassifiedError struct {
	// Err is the underlying error.
	Err error

	// Class indicates how this error should be handled.
	Class Class

	// Context describes what operation was being attempted.
	Context string
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s (class: %s)", e.Context, e.Err, e.Class)
	}
	return fmt.Sprintf("%s (class: %s)", e.Err, e.Class)
}

// Unwrap returns the underlying error.
func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// Validation creates a validation-class error.
func Validation(err error, context string) *ClassifiedError {
	return &ClassifiedError{Err: err, Class: ClassValidation, Context: context}
}

// Backend creates a backend-class error.
func Backend(err error, context string) *ClassifiedError {
	return &ClassifiedError{Err: err, Class: ClassBackend, Context: context}
}

// Security creates a security-class error.
func Security(err error, context string) *ClassifiedError {
	return &ClassifiedError{Err: err, Class: ClassSecurity, Context: context}
}

// Classify determines how a pipeline error should be handled.
func Classify(err error) Class {
	if err == nil {
		return ClassUnknown
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Class
	}

	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		return ClassValidation
	}

	var sinkErr *SinkError
	if errors.As(err, &sinkErr) {
		return ClassBackend
	}

	var precondErr *PreconditionError
	if errors.As(err, &precondErr) {
		return ClassSecurity
	}

	return ClassUnknown
}

// IsValidation reports whether the error is validation-class.
func IsValidation(err error) bool {
	return Classify(err) == ClassValidation
}

// IsBackend reports whether the error is backend-class.
func IsBackend(err error) bool {
	return Classify(err) == ClassBackend
}

// IsSecurity reports whether the error is security-class.
func IsSecurity(err error) bool {
	return Classify(err) == ClassSecurity
}
