package domain

import "time"

type TransactionType string

const (
	TransactionTypeBookingPayment TransactionType = "BOOKING_PAYMENT"
	TransactionTypeTutorPayout    TransactionType = "TUTOR_PAYOUT"
	TransactionTypeRefund         TransactionType = "REFUND"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusApproved  TransactionStatus = "APPROVED"
	TransactionStatusRejected  TransactionStatus = "REJECTED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
	TransactionStatusInProcess TransactionStatus = "IN_PROCESS"
)

// IsTerminal reports whether the gateway will not move the payment again.
// A replayed webhook for a transaction in a terminal status is a no-op.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusApproved || s == TransactionStatusRejected || s == TransactionStatusCancelled
}

// Transaction mirrors one financial movement reported by the payment
// gateway. GatewayID is unique and anchors webhook replay detection.
// Transactions are never deleted; only Status, StatusDetail and
// ProcessedAt change after creation.
type Transaction struct {
	ID                int64             `json:"id"`
	ExternalReference string            `json:"external_reference"`
	GatewayID         string            `json:"gateway_id"`
	Type              TransactionType   `json:"type"`
	Status            TransactionStatus `json:"status"`
	AmountCents       int64             `json:"amount_cents"`
	CommissionCents   int64             `json:"commission_cents"`
	AmountNetCents    int64             `json:"amount_net_cents"`
	BookingID         int64             `json:"booking_id"`
	StudentID         int64             `json:"student_id"`
	TutorID           int64             `json:"tutor_id"`
	StatusDetail      string            `json:"status_detail,omitempty"`
	ProcessedAt       *time.Time        `json:"processed_at,omitempty"`
	CreatedOn         time.Time         `json:"created_on"`
	UpdatedOn         time.Time         `json:"updated_on"`
}

// CalculateCommission splits a gross amount by the given percentage,
// returning the platform commission and the net amount owed to the tutor.
func CalculateCommission(amountCents int64, pct int32) (commissionCents, netCents int64) {
	commissionCents = amountCents * int64(pct) / 100
	return commissionCents, amountCents - commissionCents
}

// NewBookingPayment builds a booking payment transaction for a gateway
// charge, applying the commission schedule so that AmountNetCents always
// equals AmountCents minus CommissionCents.
func NewBookingPayment(booking *Booking, gatewayID, externalReference string, amountCents int64, commissionPct int32, status TransactionStatus) *Transaction {
	commission, net := CalculateCommission(amountCents, commissionPct)
	return &Transaction{
		ExternalReference: externalReference,
		GatewayID:         gatewayID,
		Type:              TransactionTypeBookingPayment,
		Status:            status,
		AmountCents:       amountCents,
		CommissionCents:   commission,
		AmountNetCents:    net,
		BookingID:         booking.ID,
		StudentID:         booking.StudentID,
		TutorID:           booking.TutorID,
	}
}
