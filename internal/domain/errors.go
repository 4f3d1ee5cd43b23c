package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per error kind. Typed errors below unwrap to these so
// callers can branch with errors.Is and read details with errors.As.
var (
	ErrNotFound        = errors.New("not found")
	ErrRoomOccupied    = errors.New("room is occupied in the selected dates")
	ErrActiveStay      = errors.New("cannot delete an active stay: guest is checked in")
	ErrHasPayments     = errors.New("cannot delete a stay with payments")
	ErrPeriodClosed    = errors.New("month is closed")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInterval = errors.New("invalid interval")
	ErrConflict        = errors.New("conflict")
	ErrInvalidInput    = errors.New("invalid input")
)

// NotFoundError is returned when an entity is absent or belongs to another tenant.
type NotFoundError struct {
	Kind EntityKind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// RoomOccupiedError names the blocking stay that conflicts with a proposed interval.
type RoomOccupiedError struct {
	RoomID        string
	ConflictingID string
}

func (e *RoomOccupiedError) Error() string {
	return fmt.Sprintf("room %q is occupied in the selected dates (stay %q)", e.RoomID, e.ConflictingID)
}

func (e *RoomOccupiedError) Unwrap() error { return ErrRoomOccupied }

// PeriodClosedError is returned when a non-admin mutates a record dated inside a closed month.
type PeriodClosedError struct {
	Month Month
}

func (e *PeriodClosedError) Error() string {
	return fmt.Sprintf("month %s is closed", e.Month)
}

func (e *PeriodClosedError) Unwrap() error { return ErrPeriodClosed }

// ForbiddenError is returned when a role or ownership check fails.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return "forbidden: " + e.Reason
}

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// ConflictError is returned when a unique key is already taken.
type ConflictError struct {
	Kind EntityKind
	Key  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Kind, e.Key)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// ValidationError wraps ErrInvalidInterval or ErrInvalidInput with a message.
type ValidationError struct {
	Kind    error
	Message string
}

func (e *ValidationError) Error() string {
	return e.Kind.Error() + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return e.Kind }

func invalidInterval(msg string) error {
	return &ValidationError{Kind: ErrInvalidInterval, Message: msg}
}

func invalidInput(msg string) error {
	return &ValidationError{Kind: ErrInvalidInput, Message: msg}
}

// TransitionError is returned when a period state transition is not allowed.
type TransitionError struct {
	Event   PeriodEvent
	Current PeriodState
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from state %q", e.Event, e.Current)
}
