// Package errors provides the error classification used throughout the signal-flow
// runtime. It includes error classes, standard error variables, and helper functions
// for consistent error wrapping and classification.
package errors

import (
	"errors"
	"fmt"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorInvalid represents structural or configuration errors detected while a
	// graph is being built (duplicate names, missing ports, bad channel indices).
	ErrorInvalid ErrorClass = iota
	// ErrorUsage represents errors detected at first use that the caller could have
	// avoided through the provided query operations.
	ErrorUsage
	// ErrorInternal represents broken internal consistency, usually a defect in
	// registration or bookkeeping code.
	ErrorInternal
	// ErrorFatal represents a failure during block processing that aborts the run.
	ErrorFatal
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorInvalid:
		return "invalid"
	case ErrorUsage:
		return "usage"
	case ErrorInternal:
		return "internal"
	case ErrorFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	// Structure and naming errors
	ErrDuplicateName = errors.New("duplicate name")
	ErrNotFound      = errors.New("not found")
	ErrDirection     = errors.New("invalid port direction")
	ErrCycle         = errors.New("cyclic dependency")
	ErrForeignPort   = errors.New("port belongs neither to the composite nor to a direct child")

	// Channel addressing errors
	ErrInvalidRange      = errors.New("invalid channel range")
	ErrLengthMismatch    = errors.New("channel list length mismatch")
	ErrWidthMismatch     = errors.New("port width mismatch")
	ErrChannelOutOfRange = errors.New("channel index out of range")

	// Type and registry errors
	ErrUnregisteredType        = errors.New("no such type")
	ErrConflictingRegistration = errors.New("conflicting registration")
	ErrRegistrySealed          = errors.New("registry sealed")
	ErrTypeMismatch            = errors.New("type mismatch")

	// Protocol and endpoint errors
	ErrEndpointMismatch = errors.New("endpoint type does not match protocol")
	ErrAlreadyConnected = errors.New("already connected")
	ErrNotConnected     = errors.New("not connected")
	ErrEmptyQueue       = errors.New("queue is empty")

	// Port state errors
	ErrPortBound     = errors.New("port is bound")
	ErrMissingConfig = errors.New("missing parameter configuration")
	ErrConfigFrozen  = errors.New("parameter configuration is frozen")
	ErrClosed        = errors.New("component is closed")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

func hasClass(err error, class ErrorClass) bool {
	if err == nil {
		return false
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == class
	}
	return false
}

// IsInvalid checks if an error is a structural or configuration error
func IsInvalid(err error) bool {
	if hasClass(err, ErrorInvalid) {
		return true
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return false
	}

	// Unclassified errors carrying a structural sentinel
	return errors.Is(err, ErrDuplicateName) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDirection) ||
		errors.Is(err, ErrForeignPort) ||
		errors.Is(err, ErrCycle) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrLengthMismatch) ||
		errors.Is(err, ErrWidthMismatch) ||
		errors.Is(err, ErrChannelOutOfRange) ||
		errors.Is(err, ErrUnregisteredType) ||
		errors.Is(err, ErrEndpointMismatch) ||
		errors.Is(err, ErrAlreadyConnected) ||
		errors.Is(err, ErrInvalidConfig)
}

// IsUsage checks if an error is a usage error detected at first use
func IsUsage(err error) bool {
	if hasClass(err, ErrorUsage) {
		return true
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return false
	}
	return errors.Is(err, ErrEmptyQueue) || errors.Is(err, ErrNotConnected) || errors.Is(err, ErrPortBound)
}

// IsInternal checks if an error reports an internal consistency defect
func IsInternal(err error) bool {
	if hasClass(err, ErrorInternal) {
		return true
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return false
	}
	return errors.Is(err, ErrConflictingRegistration) || errors.Is(err, ErrRegistrySealed)
}

// IsFatal checks if an error aborted block processing
func IsFatal(err error) bool {
	return hasClass(err, ErrorFatal)
}

// Classify returns the error class for an error.
// Unclassified errors without a known sentinel are treated as fatal: nothing in the
// runtime recovers from an error it cannot place.
func Classify(err error) ErrorClass {
	switch {
	case err == nil:
		return ErrorInvalid
	case IsInvalid(err):
		return ErrorInvalid
	case IsUsage(err):
		return ErrorUsage
	case IsInternal(err):
		return ErrorInternal
	default:
		return ErrorFatal
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}

// newClassified creates a new classified error
// This is an internal helper - use WrapInvalid(), WrapUsage(), WrapInternal() or WrapFatal() instead.
func newClassified(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapInvalid wraps an error as a structural/configuration error with context
func WrapInvalid(err error, component, method, action string) error {
	return wrapClassified(ErrorInvalid, err, component, method, action)
}

// WrapUsage wraps an error as a usage error with context
func WrapUsage(err error, component, method, action string) error {
	return wrapClassified(ErrorUsage, err, component, method, action)
}

// WrapInternal wraps an error as an internal consistency error with context
func WrapInternal(err error, component, method, action string) error {
	return wrapClassified(ErrorInternal, err, component, method, action)
}

// WrapFatal wraps an error as fatal with context
func WrapFatal(err error, component, method, action string) error {
	return wrapClassified(ErrorFatal, err, component, method, action)
}

func wrapClassified(class ErrorClass, err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(class, wrappedErr, component, method, wrappedErr.Error())
}

// Invalidf creates a structural error that wraps sentinel with a formatted detail,
// e.g. Invalidf(ErrNotFound, "Composite", "ConnectAudio", "component %q", name).
func Invalidf(sentinel error, component, method, format string, args ...any) error {
	return WrapInvalid(detail(sentinel, format, args...), component, method, "validation")
}

// Usagef creates a usage error that wraps sentinel with a formatted detail.
func Usagef(sentinel error, component, method, format string, args ...any) error {
	return WrapUsage(detail(sentinel, format, args...), component, method, "precondition")
}

// Internalf creates an internal consistency error that wraps sentinel with a formatted detail.
func Internalf(sentinel error, component, method, format string, args ...any) error {
	return WrapInternal(detail(sentinel, format, args...), component, method, "consistency check")
}

func detail(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), sentinel)
}
