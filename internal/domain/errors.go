package domain

import (
	"errors"
	"fmt"
)

// Domain error kinds. Services return these wrapped with context; callers
// classify with errors.Is and the HTTP layer maps them to status codes.
var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidState           = errors.New("invalid state")
	ErrEscrowExpired          = errors.New("escrow confirmation window expired")
	ErrDiscountNotEligible    = errors.New("discount not eligible")
	ErrDiscountAlreadyApplied = errors.New("discount already applied")
	ErrInvalidSignature       = errors.New("invalid webhook signature")
	ErrConflict               = errors.New("concurrent modification conflict")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrValidation             = errors.New("validation failed")
)

// NewInvalidTransitionError reports an illegal escrow transition attempt.
func NewInvalidTransitionError(bookingID int64, from EscrowStatus, attempted string) error {
	current := string(from)
	if from == EscrowStatusNone {
		current = "NONE"
	}
	return fmt.Errorf("booking %d: cannot %s from escrow status %s: %w", bookingID, attempted, current, ErrInvalidState)
}
