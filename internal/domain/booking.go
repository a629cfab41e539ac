package domain

import "time"

type BookingStatus string

const (
	BookingStatusRequested BookingStatus = "REQUESTED"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusRejected  BookingStatus = "REJECTED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "UNPAID"
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRejected PaymentStatus = "REJECTED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
	PaymentStatusReleased PaymentStatus = "RELEASED"
)

type EscrowStatus string

const (
	// EscrowStatusNone means no payment transaction exists yet; stored as NULL.
	EscrowStatusNone     EscrowStatus = ""
	EscrowStatusPending  EscrowStatus = "PENDING"
	EscrowStatusReleased EscrowStatus = "RELEASED"
	EscrowStatusRefunded EscrowStatus = "REFUNDED"
	EscrowStatusDisputed EscrowStatus = "DISPUTED"
	EscrowStatusExpired  EscrowStatus = "EXPIRED"
)

// IsTerminal reports whether no further escrow transition is legal.
func (s EscrowStatus) IsTerminal() bool {
	return s == EscrowStatusReleased || s == EscrowStatusRefunded || s == EscrowStatusExpired
}

type DiscountAbsorber string

const (
	DiscountAbsorberTutor    DiscountAbsorber = "TUTOR"
	DiscountAbsorberPlatform DiscountAbsorber = "PLATFORM"
)

type ResolutionDecision string

const (
	ResolutionDecisionRelease ResolutionDecision = "RELEASE"
	ResolutionDecisionRefund  ResolutionDecision = "REFUND"
)

// Discount captures the promotional discount applied to a booking.
// AmountCents is derived from Percentage and the booking subtotal.
type Discount struct {
	Applied     bool             `json:"applied"`
	Percentage  int32            `json:"percentage"`
	AmountCents int64            `json:"amount_cents"`
	Category    string           `json:"category"`
	AbsorbedBy  DiscountAbsorber `json:"absorbed_by,omitempty"`
}

type Booking struct {
	ID                int64     `json:"id"`
	ExternalReference string    `json:"external_reference"`
	StudentID         int64     `json:"student_id"`
	TutorID           int64     `json:"tutor_id"`
	ScheduledAt       time.Time `json:"scheduled_at"`
	DurationHours     int32     `json:"duration_hours"`

	HourlyRateCents int64    `json:"hourly_rate_cents"`
	SubtotalCents   int64    `json:"subtotal_cents"`
	Discount        Discount `json:"discount"`
	TotalCents      int64    `json:"total_cents"`

	Status        BookingStatus `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	EscrowStatus  EscrowStatus  `json:"escrow_status,omitempty"`

	ConfirmedByStudent bool `json:"confirmed_by_student"`
	ConfirmedByTutor   bool `json:"confirmed_by_tutor"`

	EscrowCreatedAt  *time.Time `json:"escrow_created_at,omitempty"`
	EscrowExpiresAt  *time.Time `json:"escrow_expires_at,omitempty"`
	EscrowReleasedAt *time.Time `json:"escrow_released_at,omitempty"`
	EscrowRefundedAt *time.Time `json:"escrow_refunded_at,omitempty"`
	EscrowDisputedAt *time.Time `json:"escrow_disputed_at,omitempty"`
	EscrowExpiredAt  *time.Time `json:"escrow_expired_at,omitempty"`
	EscrowReleasedBy string     `json:"escrow_released_by,omitempty"`

	RefundReason  string `json:"refund_reason,omitempty"`
	DisputedBy    string `json:"disputed_by,omitempty"`
	DisputeReason string `json:"dispute_reason,omitempty"`

	ResolutionDecision ResolutionDecision `json:"resolution_decision,omitempty"`
	ResolvedBy         string             `json:"resolved_by,omitempty"`
	ResolvedAt         *time.Time         `json:"resolved_at,omitempty"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// RecalculateTotals re-derives subtotal and total from the pricing inputs.
// Total is never stored independently of rate, duration and discount.
func (b *Booking) RecalculateTotals() {
	b.SubtotalCents = b.HourlyRateCents * int64(b.DurationHours)
	if b.Discount.Applied {
		b.Discount.AmountCents = b.SubtotalCents * int64(b.Discount.Percentage) / 100
	} else {
		b.Discount.AmountCents = 0
	}
	b.TotalCents = b.SubtotalCents - b.Discount.AmountCents
}

// CanBeCancelled reports whether either party may still cancel: only while
// the booking is requested or confirmed, and more than leadTime before the
// scheduled start.
func (b *Booking) CanBeCancelled(now time.Time, leadTime time.Duration) bool {
	if b.Status != BookingStatusRequested && b.Status != BookingStatusConfirmed {
		return false
	}
	return now.Before(b.ScheduledAt.Add(-leadTime))
}

// BothPartiesConfirmed reports whether the dual-confirmation rule is met.
func (b *Booking) BothPartiesConfirmed() bool {
	return b.ConfirmedByStudent && b.ConfirmedByTutor
}

// HasEscrow reports whether a payment hold was ever created for the booking.
func (b *Booking) HasEscrow() bool {
	return b.EscrowStatus != EscrowStatusNone
}

// EscrowTimeRemaining returns the time left in the confirmation window,
// or zero once past the deadline or when no deadline is set.
func (b *Booking) EscrowTimeRemaining(now time.Time) time.Duration {
	if b.EscrowExpiresAt == nil {
		return 0
	}
	remaining := b.EscrowExpiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}
