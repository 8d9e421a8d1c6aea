// Package shared contains common error types and utilities.
package shared

import (
	"context"
	"errors"
	"fmt"
)

// Common domain errors that can be used across the application
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates that input validation failed
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates that the request conflicts with current state
	ErrConflict = errors.New("conflict")

	// ErrInternal indicates an internal error
	ErrInternal = errors.New("internal error")
)

// Kind represents a category of error for easier classification and handling.
type Kind int

const (
	// KindUnknown represents an unclassified error
	KindUnknown Kind = iota
	// KindNotFound represents resource not found errors
	KindNotFound
	// KindValidation represents input validation errors
	KindValidation
	// KindConflict represents resource conflict errors
	KindConflict
	// KindInternal represents internal errors
	KindInternal
	// KindCanceled represents context cancellation
	KindCanceled
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindValidation:
		return "Validation"
	case KindConflict:
		return "Conflict"
	case KindInternal:
		return "Internal"
	case KindCanceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

// kindPriorities defines the deterministic order for error classification.
var kindPriorities = []struct {
	kind Kind
	err  error
}{
	{KindCanceled, context.Canceled},
	{KindNotFound, ErrNotFound},
	{KindValidation, ErrValidation},
	{KindConflict, ErrConflict},
	{KindInternal, ErrInternal},
}

// KindOf returns the Kind of the given error by checking against known sentinel errors.
// For errors created with errors.Join, the first matching kind in priority order is returned.
// Returns KindUnknown for unrecognized errors.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	for _, p := range kindPriorities {
		if errors.Is(err, p.err) {
			return p.kind
		}
	}
	return KindUnknown
}

// SentinelOf returns the sentinel error for the given Kind.
// For KindUnknown and KindCanceled, it returns nil.
func SentinelOf(kind Kind) error {
	switch kind {
	case KindNotFound:
		return ErrNotFound
	case KindValidation:
		return ErrValidation
	case KindConflict:
		return ErrConflict
	case KindInternal:
		return ErrInternal
	default:
		return nil
	}
}

// MarkKind wraps an error with the sentinel error for the given kind,
// preserving the original error through error wrapping.
// If err is nil, returns the sentinel error for the kind (or nil for unsupported kinds).
// Marking an error with a kind it already has returns the error unchanged.
func MarkKind(err error, kind Kind) error {
	sentinel := SentinelOf(kind)
	if err == nil {
		return sentinel
	}
	if sentinel == nil || KindOf(err) == kind {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// Wrap wraps an error with additional context.
// If err is nil, Wrap returns nil. If context is empty, returns the original error.
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	if context == "" {
		return err
	}
	return fmt.Errorf("%s: %w", context, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// IsNotFound reports whether the error indicates a resource not found condition.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether the error indicates input validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsConflict reports whether the error indicates a resource conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
