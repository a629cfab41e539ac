package repository

import (
	"context"
	"time"

	"tutorlink-backend/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByExternalReference(ctx context.Context, ref string) (*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error

	// SetConfirmation records one party's completion confirmation, writing
	// only that party's column, and returns both flags as stored after the
	// write. Two concurrent confirmations therefore never erase each other.
	SetConfirmation(ctx context.Context, id int64, party domain.UserRole) (studentConfirmed, tutorConfirmed bool, err error)

	// TransitionEscrow persists the booking's escrow fields only if the
	// stored escrow status still equals from (EscrowStatusNone matches a
	// NULL column). Returns domain.ErrConflict when the row was moved by a
	// concurrent transition.
	TransitionEscrow(ctx context.Context, booking *domain.Booking, from domain.EscrowStatus) error

	// ListEscrowPendingExpired returns bookings whose pending hold is past
	// its confirmation deadline at the given instant.
	ListEscrowPendingExpired(ctx context.Context, now time.Time) ([]domain.Booking, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	GetByID(ctx context.Context, id int64) (*domain.Transaction, error)
	// GetByGatewayID returns (nil, nil) when no transaction carries the
	// gateway id; it is the webhook replay lookup.
	GetByGatewayID(ctx context.Context, gatewayID string) (*domain.Transaction, error)
	GetByExternalReference(ctx context.Context, ref string) (*domain.Transaction, error)
	GetLatestApprovedByBooking(ctx context.Context, bookingID int64) (*domain.Transaction, error)
	// UpdateStatus changes the transaction status in place, stamping
	// processed_on when the new status is terminal.
	UpdateStatus(ctx context.Context, id int64, status domain.TransactionStatus, statusDetail string) error
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.Transaction, error)
	ListByUser(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Transaction, int32, error)
	// ListStalePending returns non-terminal transactions created before the
	// cutoff, for gateway reconciliation.
	ListStalePending(ctx context.Context, olderThan time.Time) ([]domain.Transaction, error)
}

type DiscountRepository interface {
	// GetUsage returns (nil, nil) when the student never used a discount in
	// the category.
	GetUsage(ctx context.Context, studentID int64, category string) (*domain.DiscountUsage, error)
	// RecordUsage consumes the student's eligibility in the category. One
	// row is kept per (student, category); the write succeeds only when no
	// usage exists or the previous usage is at or before cutoff, so two
	// concurrent applications cannot both consume the same eligibility.
	// Returns domain.ErrDiscountNotEligible otherwise.
	RecordUsage(ctx context.Context, usage *domain.DiscountUsage, cutoff time.Time) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// CreditBalance adds amountCents to the user's payout balance.
	CreditBalance(ctx context.Context, userID int64, amountCents int64) error
}
