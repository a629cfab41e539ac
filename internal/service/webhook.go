package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tutorlink-backend/internal/config"
	"tutorlink-backend/internal/domain"
	"tutorlink-backend/internal/gateway"
	"tutorlink-backend/internal/logger"
	"tutorlink-backend/internal/repository"
)

const webhookEventTypePayment = "payment"

type webhookService struct {
	bookingRepo       repository.BookingRepository
	txRepo            repository.TransactionRepository
	userRepo          repository.UserRepository
	escrowSvc         EscrowService
	payments          PaymentGateway
	validator         *gateway.SignatureValidator
	notifier          NotificationService
	commission        config.CommissionConfig
	enforceSignatures bool
	log               *slog.Logger
}

func NewWebhookService(
	bookingRepo repository.BookingRepository,
	txRepo repository.TransactionRepository,
	userRepo repository.UserRepository,
	escrowSvc EscrowService,
	payments PaymentGateway,
	validator *gateway.SignatureValidator,
	notifier NotificationService,
	commission config.CommissionConfig,
	enforceSignatures bool,
) WebhookService {
	return &webhookService{
		bookingRepo:       bookingRepo,
		txRepo:            txRepo,
		userRepo:          userRepo,
		escrowSvc:         escrowSvc,
		payments:          payments,
		validator:         validator,
		notifier:          notifier,
		commission:        commission,
		enforceSignatures: enforceSignatures,
		log:               logger.WithService("webhook"),
	}
}

func (s *webhookService) Handle(ctx context.Context, event *WebhookEvent, sig gateway.SignatureHeader) error {
	if s.enforceSignatures {
		if err := s.validator.Validate(event.Data.ID, sig); err != nil {
			return err
		}
	} else {
		s.log.Debug("Webhook signature verification bypassed", "data_id", event.Data.ID)
	}

	// Gateways send event types this system does not consume; those are
	// acknowledged, not failed, or the gateway would retry them forever.
	if event.Type != webhookEventTypePayment {
		s.log.Info("Ignoring webhook event type", "type", event.Type, "action", event.Action)
		return nil
	}
	if event.Data.ID == "" {
		return fmt.Errorf("webhook event has no data id: %w", domain.ErrValidation)
	}

	return s.ProcessPayment(ctx, event.Data.ID)
}

func (s *webhookService) ProcessPayment(ctx context.Context, paymentID string) error {
	// Never trust the webhook body: re-fetch the payment from the gateway.
	payment, err := s.payments.GetPayment(ctx, paymentID)
	if err != nil {
		return err
	}

	existing, err := s.txRepo.GetByGatewayID(ctx, payment.ID)
	if err != nil {
		return err
	}
	if existing != nil && existing.Status.IsTerminal() {
		// Replayed delivery of an already-settled payment. Success, no
		// side effects: this is what keeps retries from double-charging.
		s.log.Info("Webhook replay detected, skipping", "gateway_id", payment.ID, "status", existing.Status)
		return nil
	}

	booking, err := s.bookingRepo.GetByExternalReference(ctx, payment.ExternalReference)
	if err != nil {
		return err
	}

	switch status := payment.TransactionStatus(); status {
	case domain.TransactionStatusApproved:
		return s.applyApproved(ctx, booking, payment, existing)
	case domain.TransactionStatusRejected, domain.TransactionStatusCancelled:
		return s.applyDeclined(ctx, booking, payment, existing, status)
	case domain.TransactionStatusPending, domain.TransactionStatusInProcess:
		return s.applyPending(ctx, booking, payment, existing, status)
	default:
		s.log.Info("Ignoring unknown payment status", "gateway_id", payment.ID, "status", payment.Status)
		return nil
	}
}

func (s *webhookService) applyApproved(ctx context.Context, booking *domain.Booking, payment *gateway.PaymentInfo, existing *domain.Transaction) error {
	tx, err := s.recordTransaction(ctx, booking, payment, existing, domain.TransactionStatusApproved)
	if err != nil {
		return err
	}

	booking.PaymentStatus = domain.PaymentStatusPaid
	booking.Status = domain.BookingStatusConfirmed
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return err
	}

	if _, err := s.escrowSvc.CreateHold(ctx, booking.ID, tx.ID); err != nil {
		if errors.Is(err, domain.ErrInvalidState) || errors.Is(err, domain.ErrConflict) {
			// A concurrent delivery of the same payment created the hold
			// first; nothing left to do.
			s.log.Info("Escrow hold already present, treating delivery as replay", "booking_id", booking.ID)
			return nil
		}
		return err
	}

	s.log.Info("Payment approved",
		"booking_id", booking.ID,
		"gateway_id", payment.ID,
		"amount_cents", tx.AmountCents,
		"commission_cents", tx.CommissionCents)

	if student, lookupErr := s.userRepo.GetByID(ctx, booking.StudentID); lookupErr == nil {
		if err := s.notifier.SendPaymentApproved(ctx, student.Email, student.Name, booking.ID, tx.AmountCents); err != nil {
			s.log.Warn("Failed to send payment notification", "booking_id", booking.ID, "error", err)
		}
	}
	return nil
}

func (s *webhookService) applyDeclined(ctx context.Context, booking *domain.Booking, payment *gateway.PaymentInfo, existing *domain.Transaction, status domain.TransactionStatus) error {
	if _, err := s.recordTransaction(ctx, booking, payment, existing, status); err != nil {
		return err
	}

	// A decline from an abandoned payment attempt must not cancel a booking
	// that a different attempt already settled; the ledger row above is
	// enough of a trace.
	switch booking.PaymentStatus {
	case domain.PaymentStatusPaid, domain.PaymentStatusReleased, domain.PaymentStatusRefunded:
		s.log.Info("Ignoring decline for a settled booking",
			"booking_id", booking.ID,
			"gateway_id", payment.ID,
			"payment_status", booking.PaymentStatus)
		return nil
	}

	booking.PaymentStatus = domain.PaymentStatusRejected
	booking.Status = domain.BookingStatusCancelled
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return err
	}

	s.log.Info("Payment declined", "booking_id", booking.ID, "gateway_id", payment.ID, "status", status)
	return nil
}

func (s *webhookService) applyPending(ctx context.Context, booking *domain.Booking, payment *gateway.PaymentInfo, existing *domain.Transaction, status domain.TransactionStatus) error {
	if _, err := s.recordTransaction(ctx, booking, payment, existing, status); err != nil {
		return err
	}

	// Only an unpaid booking moves to PENDING; a later pending event must
	// not demote one that is already paid.
	if booking.PaymentStatus == domain.PaymentStatusUnpaid || booking.PaymentStatus == domain.PaymentStatusPending {
		booking.PaymentStatus = domain.PaymentStatusPending
		if err := s.bookingRepo.Update(ctx, booking); err != nil {
			return err
		}
	}

	s.log.Info("Payment pending", "booking_id", booking.ID, "gateway_id", payment.ID, "status", status)
	return nil
}

// recordTransaction appends or updates the ledger row for a gateway
// payment, applying the commission schedule on first sight.
func (s *webhookService) recordTransaction(ctx context.Context, booking *domain.Booking, payment *gateway.PaymentInfo, existing *domain.Transaction, status domain.TransactionStatus) (*domain.Transaction, error) {
	if existing != nil {
		if err := s.txRepo.UpdateStatus(ctx, existing.ID, status, payment.StatusDetail); err != nil {
			return nil, err
		}
		existing.Status = status
		existing.StatusDetail = payment.StatusDetail
		return existing, nil
	}

	pct, err := s.commissionPct(ctx, booking)
	if err != nil {
		return nil, err
	}
	tx := domain.NewBookingPayment(booking, payment.ID, payment.ExternalReference, payment.AmountCents, pct, status)
	tx.StatusDetail = payment.StatusDetail
	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *webhookService) commissionPct(ctx context.Context, booking *domain.Booking) (int32, error) {
	tutor, err := s.userRepo.GetByID(ctx, booking.TutorID)
	if err != nil {
		return 0, err
	}
	if tutor.IsPremiumActive(time.Now().UTC()) {
		return s.commission.PremiumPct, nil
	}
	return s.commission.StandardPct, nil
}
