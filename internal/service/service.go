package service

import (
	"context"
	"time"

	"tutorlink-backend/internal/domain"
	"tutorlink-backend/internal/gateway"
)

// EscrowService drives the hold-and-release lifecycle of a paid booking.
// Transitions follow the escrow state machine: a hold is PENDING and moves
// to RELEASED, REFUNDED, DISPUTED or EXPIRED; a dispute is settled by
// Resolve. RELEASED, REFUNDED and EXPIRED are terminal.
type EscrowService interface {
	CreateHold(ctx context.Context, bookingID, transactionID int64) (*domain.Booking, error)
	Release(ctx context.Context, bookingID int64, confirmedBy string) (*domain.Booking, error)
	Refund(ctx context.Context, bookingID int64, reason string) (*domain.Booking, error)
	Dispute(ctx context.Context, bookingID int64, initiator, reason string) (*domain.Booking, error)
	Resolve(ctx context.Context, bookingID int64, decision domain.ResolutionDecision, resolvedBy string) (*domain.Booking, error)
	// SweepExpired force-expires every pending hold past its confirmation
	// deadline and returns how many rows it moved. Safe to run repeatedly
	// and concurrently.
	SweepExpired(ctx context.Context, now time.Time) (int, error)
	Info(ctx context.Context, bookingID int64) (*EscrowInfo, error)
}

// EscrowInfo is a read-only snapshot of a booking's escrow state.
type EscrowInfo struct {
	BookingID       int64                `json:"booking_id"`
	Status          domain.EscrowStatus  `json:"status"`
	AmountCents     int64                `json:"amount_cents"`
	CommissionCents int64                `json:"commission_cents"`
	AmountNetCents  int64                `json:"amount_net_cents"`
	CreatedAt       *time.Time           `json:"created_at,omitempty"`
	ExpiresAt       *time.Time           `json:"expires_at,omitempty"`
	ReleasedAt      *time.Time           `json:"released_at,omitempty"`
	RefundedAt      *time.Time           `json:"refunded_at,omitempty"`
	DisputedAt      *time.Time           `json:"disputed_at,omitempty"`
	ExpiredAt       *time.Time           `json:"expired_at,omitempty"`
	TimeRemaining   time.Duration        `json:"time_remaining"`
}

// DiscountService decides promotional discount eligibility and applies the
// discount to a booking.
type DiscountService interface {
	// Evaluate is a pure read: it never consumes eligibility.
	Evaluate(ctx context.Context, studentID, tutorID int64, category string) (*domain.DiscountEvaluation, error)
	Apply(ctx context.Context, bookingID, studentID, tutorID int64, category string) (*domain.Booking, error)
}

type CreateBookingRequest struct {
	StudentID       int64     `json:"student_id"`
	TutorID         int64     `json:"tutor_id"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationHours   int32     `json:"duration_hours"`
	HourlyRateCents int64     `json:"hourly_rate_cents"`
}

type BookingService interface {
	Create(ctx context.Context, req *CreateBookingRequest) (*domain.Booking, error)
	Get(ctx context.Context, id int64) (*domain.Booking, error)
	// ConfirmCompletion records the calling party's completion confirmation.
	// When both parties have confirmed, the booking auto-completes and the
	// escrow hold is released.
	ConfirmCompletion(ctx context.Context, bookingID, userID int64) (*domain.Booking, error)
	Cancel(ctx context.Context, bookingID, cancelledBy int64, reason string) (*domain.Booking, error)
}

// WebhookEvent is the inbound gateway notification body. Only Data.ID is
// used; full payment details are always re-fetched from the gateway.
type WebhookEvent struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
}

type WebhookService interface {
	Handle(ctx context.Context, event *WebhookEvent, sig gateway.SignatureHeader) error
	// ProcessPayment re-fetches a payment by gateway id and applies it to
	// the ledger and booking. Used by Handle and by the reconciliation job.
	ProcessPayment(ctx context.Context, paymentID string) error
}

// LedgerService is pure data access over recorded transactions; all
// business rules live in the escrow and webhook services.
type LedgerService interface {
	GetTransaction(ctx context.Context, id int64) (*domain.Transaction, error)
	GetByGatewayID(ctx context.Context, gatewayID string) (*domain.Transaction, error)
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.Transaction, error)
	ListByUser(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Transaction, int32, error)
}

// NotificationService triggers outbound emails. Every call site is
// fire-and-forget: a failed send is logged and never fails the financial
// transition that triggered it.
type NotificationService interface {
	SendPaymentApproved(ctx context.Context, email, name string, bookingID, amountCents int64) error
	SendEscrowReleased(ctx context.Context, email, name string, bookingID, amountNetCents int64) error
	SendEscrowRefunded(ctx context.Context, email, name string, bookingID int64, reason string) error
	SendDisputeOpened(ctx context.Context, email, name string, bookingID int64, openedBy, reason string) error
	SendDisputeResolved(ctx context.Context, email, name string, bookingID int64, decision string) error
	SendBookingCancelled(ctx context.Context, email, name string, bookingID int64, reason string) error
}

// PaymentGateway is the outbound payment processor client.
type PaymentGateway interface {
	GetPayment(ctx context.Context, id string) (*gateway.PaymentInfo, error)
	CreateCharge(ctx context.Context, charge *gateway.ChargeRequest) (*gateway.PaymentInfo, error)
}
