// Package errors provides centralized error definitions and error handling
// utilities for the onelane codebase. It defines the two fatal error kinds
// the bridge core can produce, the validation errors the driver layers use,
// error constructors with context, and classification helpers.
//
// # Error Types
//
// The core produces exactly two fatal kinds:
//   - ConsistencyError: an admission or departure computation observed the
//     bridge invariants to be false, or the shared-state discipline itself
//     failed. Fatal to the calling actor, never retried.
//   - ResourceError: bridge construction or teardown failed. Fatal to the
//     whole run.
//
// The driver layers (config, scenario, CLI) additionally use:
//   - ValidationError: invalid input or parameters. Never fatal.
//
// There is no transient/retryable class: all waiting in the core is
// expressed as condition-variable suspension, never as error+retry.
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewConsistency("arrive", "capacity exceeded after admission").
//		WithCar("car 07").
//		WithState("north", 4, 3)
//
//	err := errors.NewResource("close", errors.ErrBridgeBusy)
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrConsistency) { ... }
//
//	var cerr *errors.ConsistencyError
//	if errors.As(err, &cerr) { ... }
//
//	if errors.IsFatal(err) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that mean shared state can no longer be trusted.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Bridge-related sentinel errors
var (
	// ErrConsistency indicates that the bridge invariants were observed false
	// under the lock. Any error matching this sentinel means the shared-state
	// contract is broken and the actor must abort.
	ErrConsistency = New("bridge state consistency violated")
	// ErrResource indicates that bridge construction or teardown failed.
	ErrResource = New("bridge resource failure")
	// ErrBridgeClosed indicates an admission was attempted on a closed bridge.
	ErrBridgeClosed = New("bridge is closed")
	// ErrBridgeBusy indicates the bridge was closed while cars were still
	// on the span or waiting.
	ErrBridgeBusy = New("bridge still has traffic")
	// ErrInvalidDirection indicates a direction outside {north, south}.
	ErrInvalidDirection = New("invalid direction")
	// ErrInvalidCapacity indicates a capacity below 1.
	ErrInvalidCapacity = New("capacity must be at least 1")
)

// General sentinel errors
var (
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// LaneError is the base interface for all onelane errors.
// It extends the standard error interface with additional methods for
// error handling and classification.
type LaneError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	// This is used by errors.Is() for error comparison.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// Fatal returns true if the error ends the actor or the run; fatal
	// errors are surfaced, logged, and never retried.
	Fatal() bool

	// UserFacing returns true if the error message is safe to display
	// to end users.
	UserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	fatal      bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// Fatal returns whether the error ends the actor or run.
func (e *baseError) Fatal() bool {
	return e.fatal
}

// UserFacing returns whether the error is safe to show users.
func (e *baseError) UserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Domain Errors
// -----------------------------------------------------------------------------

// ConsistencyError reports that an admission or departure computation
// observed the bridge invariants to be false after the wait loop exited,
// or that a synchronization step failed outright. It is always fatal to
// the calling actor: the shared-state contract is broken and no further
// result from this bridge can be trusted.
//
// Example:
//
//	err := errors.NewConsistency("arrive", "occupants at capacity after admission").
//		WithCar("car 03").
//		WithState("north", 4, 3)
//	fmt.Println(err) // "consistency violation [op=arrive, car=car 03, direction=north, occupants=4, capacity=3]: occupants at capacity after admission"
type ConsistencyError struct {
	baseError
	Op        string // "arrive" or "depart"
	Car       string // actor label, if known
	Direction string // direction observed when the violation was caught
	Occupants int
	Capacity  int
}

// NewConsistency creates a new ConsistencyError.
func NewConsistency(op, message string) *ConsistencyError {
	return &ConsistencyError{
		baseError: baseError{
			message:    message,
			severity:   SeverityCritical,
			fatal:      true,
			userFacing: true,
		},
		Op:        op,
		Occupants: -1,
		Capacity:  -1,
	}
}

// WithCar adds the actor label to the error context.
func (e *ConsistencyError) WithCar(label string) *ConsistencyError {
	e.Car = label
	return e
}

// WithState records the bridge state observed when the violation was caught.
func (e *ConsistencyError) WithState(direction string, occupants, capacity int) *ConsistencyError {
	e.Direction = direction
	e.Occupants = occupants
	e.Capacity = capacity
	return e
}

// WithCause adds an underlying cause to the error.
func (e *ConsistencyError) WithCause(cause error) *ConsistencyError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ConsistencyError) Error() string {
	var parts []string
	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.Car != "" {
		parts = append(parts, fmt.Sprintf("car=%s", e.Car))
	}
	if e.Direction != "" {
		parts = append(parts, fmt.Sprintf("direction=%s", e.Direction))
	}
	if e.Occupants >= 0 {
		parts = append(parts, fmt.Sprintf("occupants=%d", e.Occupants))
	}
	if e.Capacity >= 0 {
		parts = append(parts, fmt.Sprintf("capacity=%d", e.Capacity))
	}

	prefix := "consistency violation"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("consistency violation [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ConsistencyError) Is(target error) bool {
	if _, ok := target.(*ConsistencyError); ok {
		return true
	}
	if errors.Is(target, ErrConsistency) {
		return true
	}
	return e.baseError.Is(target)
}

// ResourceError reports that bridge construction or teardown failed.
// It is fatal to the whole run. Teardown is best-effort: Close gathers
// one error per leaked group and joins them into a single ResourceError
// cause rather than stopping at the first problem.
//
// Example:
//
//	err := errors.NewResource("create", errors.ErrInvalidCapacity)
//	fmt.Println(err) // "resource error [op=create]: capacity must be at least 1"
type ResourceError struct {
	baseError
	Op string // "create" or "close"
}

// NewResource creates a new ResourceError.
func NewResource(op string, cause error) *ResourceError {
	return &ResourceError{
		baseError: baseError{
			message:    "bridge " + op + " failed",
			cause:      cause,
			severity:   SeverityCritical,
			fatal:      true,
			userFacing: true,
		},
		Op: op,
	}
}

// Error returns the formatted error message.
func (e *ResourceError) Error() string {
	prefix := "resource error"
	if e.Op != "" {
		prefix = fmt.Sprintf("resource error [op=%s]", e.Op)
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %v", prefix, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ResourceError) Is(target error) bool {
	if _, ok := target.(*ResourceError); ok {
		return true
	}
	if errors.Is(target, ErrResource) {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input or parameters from the driver
// layers (flags, config, scenario files). Never fatal in the §7 sense:
// the run simply refuses to start.
//
// Example:
//
//	err := errors.NewValidation("car count cannot be zero").WithField("sim.cars").WithValue(0)
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidation creates a new ValidationError.
func NewValidation(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			fatal:      false,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsFatal returns true if the error ends the calling actor or the run.
// This checks for:
//   - Errors implementing LaneError with Fatal() returning true
//   - Errors wrapping ErrConsistency or ErrResource
//
// Example:
//
//	if errors.IsFatal(err) {
//	    logger.Error("aborting", "err", err)
//	    return err
//	}
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var laneErr LaneError
	if As(err, &laneErr) {
		return laneErr.Fatal()
	}

	return Is(err, ErrConsistency) || Is(err, ErrResource)
}

// IsConsistency returns true if the error is, or wraps, a consistency
// violation.
func IsConsistency(err error) bool {
	if err == nil {
		return false
	}

	var cerr *ConsistencyError
	return As(err, &cerr) || Is(err, ErrConsistency)
}

// IsResource returns true if the error is, or wraps, a resource failure.
func IsResource(err error) bool {
	if err == nil {
		return false
	}

	var rerr *ResourceError
	return As(err, &rerr) || Is(err, ErrResource)
}

// IsUserFacing returns true if the error message is safe to display to end
// users. Errors that don't implement LaneError default to not user-facing.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var laneErr LaneError
	if As(err, &laneErr) {
		return laneErr.UserFacing()
	}

	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement LaneError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var laneErr LaneError
	if As(err, &laneErr) {
		return laneErr.Severity()
	}

	return SeverityError
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "loading scenario")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
//
// Example:
//
//	err := errors.Wrapf(baseErr, "car %d failed to cross", id)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
