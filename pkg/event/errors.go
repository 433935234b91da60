package event

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrValidation matches every *ValidationError through errors.Is.
	ErrValidation = errors.New("validation failed")
	// ErrConflict matches every *ConflictError through errors.Is.
	ErrConflict = errors.New("event conflict")
	// ErrNotFound matches every *NotFoundError through errors.Is.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports a malformed or missing field. No state is changed when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid event: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ConflictError names the already stored event that the candidate overlaps.
type ConflictError struct {
	Candidate Event
	Existing  Event
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%q (%s - %s) conflicts with %q (%s - %s)",
		e.Candidate.Subject, e.Candidate.StartTime.Format(DateTimeLayout), e.Candidate.EndTime.Format(DateTimeLayout),
		e.Existing.Subject, e.Existing.StartTime.Format(DateTimeLayout), e.Existing.EndTime.Format(DateTimeLayout))
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NotFoundError is returned for unknown event selectors and calendar names.
type NotFoundError struct {
	What string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.What, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// EventNotFound builds the NotFoundError used for event selectors.
func EventNotFound(subject string, start time.Time) *NotFoundError {
	key := subject
	if !start.IsZero() {
		key = fmt.Sprintf("%s at %s", subject, start.Format(DateTimeLayout))
	}
	return &NotFoundError{What: "event", Key: key}
}
