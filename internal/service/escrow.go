package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tutorlink-backend/internal/domain"
	"tutorlink-backend/internal/logger"
	"tutorlink-backend/internal/repository"
)

type escrowService struct {
	bookingRepo        repository.BookingRepository
	txRepo             repository.TransactionRepository
	userRepo           repository.UserRepository
	notifier           NotificationService
	confirmationWindow time.Duration
	log                *slog.Logger
}

func NewEscrowService(
	bookingRepo repository.BookingRepository,
	txRepo repository.TransactionRepository,
	userRepo repository.UserRepository,
	notifier NotificationService,
	confirmationWindow time.Duration,
) EscrowService {
	return &escrowService{
		bookingRepo:        bookingRepo,
		txRepo:             txRepo,
		userRepo:           userRepo,
		notifier:           notifier,
		confirmationWindow: confirmationWindow,
		log:                logger.WithService("escrow"),
	}
}

func (s *escrowService) CreateHold(ctx context.Context, bookingID, transactionID int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	tx, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.BookingID != booking.ID {
		return nil, fmt.Errorf("transaction %d does not belong to booking %d: %w", transactionID, bookingID, domain.ErrValidation)
	}
	if booking.HasEscrow() {
		return nil, domain.NewInvalidTransitionError(bookingID, booking.EscrowStatus, "create hold")
	}
	if tx.Status != domain.TransactionStatusApproved {
		return nil, fmt.Errorf("transaction %d is %s, not approved: %w", transactionID, tx.Status, domain.ErrInvalidState)
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.confirmationWindow)
	booking.EscrowStatus = domain.EscrowStatusPending
	booking.EscrowCreatedAt = &now
	booking.EscrowExpiresAt = &expiresAt

	if err := s.bookingRepo.TransitionEscrow(ctx, booking, domain.EscrowStatusNone); err != nil {
		return nil, err
	}

	s.log.Info("Escrow hold created",
		"booking_id", booking.ID,
		"transaction_id", tx.ID,
		"amount_cents", tx.AmountCents,
		"expires_at", expiresAt)
	return booking, nil
}

func (s *escrowService) Release(ctx context.Context, bookingID int64, confirmedBy string) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.EscrowStatus != domain.EscrowStatusPending {
		return nil, domain.NewInvalidTransitionError(bookingID, booking.EscrowStatus, "release")
	}
	if booking.EscrowExpiresAt != nil && time.Now().UTC().After(*booking.EscrowExpiresAt) {
		return nil, fmt.Errorf("booking %d: %w", bookingID, domain.ErrEscrowExpired)
	}
	return s.release(ctx, booking, domain.EscrowStatusPending, confirmedBy)
}

func (s *escrowService) Refund(ctx context.Context, bookingID int64, reason string) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.EscrowStatus != domain.EscrowStatusPending {
		return nil, domain.NewInvalidTransitionError(bookingID, booking.EscrowStatus, "refund")
	}
	return s.refund(ctx, booking, domain.EscrowStatusPending, reason)
}

func (s *escrowService) Dispute(ctx context.Context, bookingID int64, initiator, reason string) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.EscrowStatus != domain.EscrowStatusPending {
		return nil, domain.NewInvalidTransitionError(bookingID, booking.EscrowStatus, "dispute")
	}

	now := time.Now().UTC()
	booking.EscrowStatus = domain.EscrowStatusDisputed
	booking.EscrowDisputedAt = &now
	booking.DisputedBy = initiator
	booking.DisputeReason = reason

	if err := s.bookingRepo.TransitionEscrow(ctx, booking, domain.EscrowStatusPending); err != nil {
		return nil, err
	}

	s.log.Info("Escrow disputed", "booking_id", booking.ID, "initiator", initiator)
	s.notifyBothParties(ctx, booking, func(user *domain.User) error {
		return s.notifier.SendDisputeOpened(ctx, user.Email, user.Name, booking.ID, initiator, reason)
	})
	return booking, nil
}

func (s *escrowService) Resolve(ctx context.Context, bookingID int64, decision domain.ResolutionDecision, resolvedBy string) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.EscrowStatus != domain.EscrowStatusDisputed {
		return nil, domain.NewInvalidTransitionError(bookingID, booking.EscrowStatus, "resolve")
	}

	now := time.Now().UTC()
	booking.ResolutionDecision = decision
	booking.ResolvedBy = resolvedBy
	booking.ResolvedAt = &now

	var resolved *domain.Booking
	switch decision {
	case domain.ResolutionDecisionRelease:
		resolved, err = s.release(ctx, booking, domain.EscrowStatusDisputed, resolvedBy)
	case domain.ResolutionDecisionRefund:
		resolved, err = s.refund(ctx, booking, domain.EscrowStatusDisputed, booking.DisputeReason)
	default:
		return nil, fmt.Errorf("unknown resolution decision %q: %w", decision, domain.ErrValidation)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("Dispute resolved", "booking_id", booking.ID, "decision", decision, "resolved_by", resolvedBy)
	s.notifyBothParties(ctx, resolved, func(user *domain.User) error {
		return s.notifier.SendDisputeResolved(ctx, user.Email, user.Name, resolved.ID, string(decision))
	})
	return resolved, nil
}

func (s *escrowService) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	bookings, err := s.bookingRepo.ListEscrowPendingExpired(ctx, now)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range bookings {
		booking := &bookings[i]
		expiredAt := now
		booking.EscrowStatus = domain.EscrowStatusExpired
		booking.EscrowExpiredAt = &expiredAt

		err := s.bookingRepo.TransitionEscrow(ctx, booking, domain.EscrowStatusPending)
		if err != nil {
			// A concurrent sweep or a user transition got there first; the
			// row is no longer pending and needs nothing from us.
			s.log.Warn("Skipping escrow expiration", "booking_id", booking.ID, "error", err)
			continue
		}
		expired++
		s.log.Info("Escrow hold expired", "booking_id", booking.ID, "expired_at", expiredAt)
	}
	return expired, nil
}

func (s *escrowService) Info(ctx context.Context, bookingID int64) (*EscrowInfo, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.HasEscrow() {
		return nil, fmt.Errorf("booking %d has no escrow: %w", bookingID, domain.ErrNotFound)
	}
	tx, err := s.txRepo.GetLatestApprovedByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	return &EscrowInfo{
		BookingID:       booking.ID,
		Status:          booking.EscrowStatus,
		AmountCents:     tx.AmountCents,
		CommissionCents: tx.CommissionCents,
		AmountNetCents:  tx.AmountNetCents,
		CreatedAt:       booking.EscrowCreatedAt,
		ExpiresAt:       booking.EscrowExpiresAt,
		ReleasedAt:      booking.EscrowReleasedAt,
		RefundedAt:      booking.EscrowRefundedAt,
		DisputedAt:      booking.EscrowDisputedAt,
		ExpiredAt:       booking.EscrowExpiredAt,
		TimeRemaining:   booking.EscrowTimeRemaining(time.Now().UTC()),
	}, nil
}

// release moves a hold out of from into RELEASED, completes the booking
// and credits the tutor the net amount.
func (s *escrowService) release(ctx context.Context, booking *domain.Booking, from domain.EscrowStatus, confirmedBy string) (*domain.Booking, error) {
	tx, err := s.txRepo.GetLatestApprovedByBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	booking.EscrowStatus = domain.EscrowStatusReleased
	booking.EscrowReleasedAt = &now
	booking.EscrowReleasedBy = confirmedBy
	booking.Status = domain.BookingStatusCompleted
	booking.PaymentStatus = domain.PaymentStatusReleased

	if err := s.bookingRepo.TransitionEscrow(ctx, booking, from); err != nil {
		return nil, err
	}

	if err := s.userRepo.CreditBalance(ctx, booking.TutorID, tx.AmountNetCents); err != nil {
		// The hold is already released; surface the failed credit rather
		// than pretending the release did not happen.
		return nil, fmt.Errorf("escrow released but tutor credit failed for booking %d: %w", booking.ID, err)
	}

	s.log.Info("Escrow released",
		"booking_id", booking.ID,
		"confirmed_by", confirmedBy,
		"amount_net_cents", tx.AmountNetCents)

	if tutor, lookupErr := s.userRepo.GetByID(ctx, booking.TutorID); lookupErr == nil {
		if err := s.notifier.SendEscrowReleased(ctx, tutor.Email, tutor.Name, booking.ID, tx.AmountNetCents); err != nil {
			s.log.Warn("Failed to send escrow release notification", "booking_id", booking.ID, "error", err)
		}
	}
	return booking, nil
}

// refund moves a hold out of from into REFUNDED and cancels the booking.
// Refunds are always for the full amount.
func (s *escrowService) refund(ctx context.Context, booking *domain.Booking, from domain.EscrowStatus, reason string) (*domain.Booking, error) {
	now := time.Now().UTC()
	booking.EscrowStatus = domain.EscrowStatusRefunded
	booking.EscrowRefundedAt = &now
	booking.RefundReason = reason
	booking.Status = domain.BookingStatusCancelled
	booking.PaymentStatus = domain.PaymentStatusRefunded

	if err := s.bookingRepo.TransitionEscrow(ctx, booking, from); err != nil {
		return nil, err
	}

	s.log.Info("Escrow refunded", "booking_id", booking.ID, "reason", reason)

	if student, lookupErr := s.userRepo.GetByID(ctx, booking.StudentID); lookupErr == nil {
		if err := s.notifier.SendEscrowRefunded(ctx, student.Email, student.Name, booking.ID, reason); err != nil {
			s.log.Warn("Failed to send refund notification", "booking_id", booking.ID, "error", err)
		}
	}
	return booking, nil
}

func (s *escrowService) notifyBothParties(ctx context.Context, booking *domain.Booking, send func(*domain.User) error) {
	for _, id := range []int64{booking.StudentID, booking.TutorID} {
		user, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			s.log.Warn("Failed to look up party for notification", "booking_id", booking.ID, "user_id", id, "error", err)
			continue
		}
		if err := send(user); err != nil {
			s.log.Warn("Failed to send notification", "booking_id", booking.ID, "user_id", id, "error", err)
		}
	}
}
