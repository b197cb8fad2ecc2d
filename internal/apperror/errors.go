// Package apperror holds the typed failures returned by pipeline commands.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can decide how to surface it.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindStageBlocked       Kind = "stage_blocked"
	KindSlotConflict       Kind = "slot_conflict"
	KindPrematureFeedback  Kind = "premature_feedback"
	KindOutOfSequence      Kind = "out_of_sequence"
	KindCapacityExceeded   Kind = "capacity_exceeded"
	KindNotFound           Kind = "not_found"
	KindInvariantViolation Kind = "invariant_violation"
)

// Sentinels usable with errors.Is.
var (
	ErrValidation         = &Error{Kind: KindValidation}
	ErrStageBlocked       = &Error{Kind: KindStageBlocked}
	ErrSlotConflict       = &Error{Kind: KindSlotConflict}
	ErrPrematureFeedback  = &Error{Kind: KindPrematureFeedback}
	ErrOutOfSequence      = &Error{Kind: KindOutOfSequence}
	ErrCapacityExceeded   = &Error{Kind: KindCapacityExceeded}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrInvariantViolation = &Error{Kind: KindInvariantViolation}
)

// Error is a structured failure with a kind and a human readable reason.
// Details carries machine readable context such as a list of blockers.
type Error struct {
	Kind    Kind
	Code    string
	Reason  string
	Details any
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Is matches on Kind only, so any *Error of the same kind equals its sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return newf(KindValidation, format, args...)
}

// StageBlocked reports an unmet transition precondition identified by code.
func StageBlocked(code, format string, args ...any) *Error {
	e := newf(KindStageBlocked, format, args...)
	e.Code = code
	return e
}

func SlotConflict(format string, args ...any) *Error {
	return newf(KindSlotConflict, format, args...)
}

func PrematureFeedback(format string, args ...any) *Error {
	return newf(KindPrematureFeedback, format, args...)
}

func OutOfSequence(format string, args ...any) *Error {
	return newf(KindOutOfSequence, format, args...)
}

func CapacityExceeded(format string, args ...any) *Error {
	return newf(KindCapacityExceeded, format, args...)
}

func NotFound(entity string, id any) *Error {
	return newf(KindNotFound, "%s %v not found", entity, id)
}

func InvariantViolation(format string, args ...any) *Error {
	return newf(KindInvariantViolation, format, args...)
}

// WithDetails attaches details and returns the same error.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

// KindOf extracts the kind of err, or "" for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
