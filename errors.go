package fmodel

import (
	"errors"
	"fmt"
)

var (
	// ErrConcurrencyConflict is matched by every error a repository returns
	// when a save is attempted against a stale version.
	ErrConcurrencyConflict = errors.New("concurrency conflict")

	// ErrBusinessRuleViolation is matched by errors returned when a decider
	// rejects a command.
	ErrBusinessRuleViolation = errors.New("business rule violation")

	// ErrUnknownVariant marks a programming error: an evolve function got a
	// variant it cannot interpret.
	ErrUnknownVariant = errors.New("unknown variant")

	ErrStreamNotFound = errors.New("stream not found")
	ErrInvalidVersion = errors.New("invalid version")
)

// VersionConflictError is returned by repositories when the stored version
// differs from the version the caller read. A nil Expected or Actual means
// "no stream/state".
type VersionConflictError struct {
	Stream   string
	Expected any
	Actual   any
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("concurrency conflict on stream %q: (expected version %s, actual %s)",
		e.Stream, describeVersion(e.Expected), describeVersion(e.Actual))
}

func (e *VersionConflictError) Is(target error) bool {
	return target == ErrConcurrencyConflict
}

func describeVersion(v any) string {
	if v == nil {
		return "none"
	}
	return fmt.Sprint(v)
}

// NewVersionConflictError builds a VersionConflictError from optional versions.
func NewVersionConflictError[V any](stream string, expected, actual *V) *VersionConflictError {
	err := &VersionConflictError{Stream: stream}
	if expected != nil {
		err.Expected = *expected
	}
	if actual != nil {
		err.Actual = *actual
	}
	return err
}

// DomainError wraps the error a decider returned when rejecting a command.
type DomainError struct {
	Err error
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("business rule violation: %v", e.Err)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) Is(target error) bool {
	return target == ErrBusinessRuleViolation
}

func asDomainError(err error) error {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return &DomainError{Err: err}
}

// Unreachable panics with ErrUnknownVariant. Evolve functions call it from
// the default branch of their type switch.
func Unreachable(v any) {
	panic(fmt.Errorf("%w: %T", ErrUnknownVariant, v))
}
