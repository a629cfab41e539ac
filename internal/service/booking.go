package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tutorlink-backend/internal/domain"
	"tutorlink-backend/internal/logger"
	"tutorlink-backend/internal/repository"
)

const (
	minDurationHours = 1
	maxDurationHours = 8
)

type bookingService struct {
	bookingRepo repository.BookingRepository
	userRepo    repository.UserRepository
	escrowSvc   EscrowService
	notifier    NotificationService
	leadTime    time.Duration
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	userRepo repository.UserRepository,
	escrowSvc EscrowService,
	notifier NotificationService,
	cancellationLeadTime time.Duration,
) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		escrowSvc:   escrowSvc,
		notifier:    notifier,
		leadTime:    cancellationLeadTime,
	}
}

func (s *bookingService) Create(ctx context.Context, req *CreateBookingRequest) (*domain.Booking, error) {
	if req.DurationHours < minDurationHours || req.DurationHours > maxDurationHours {
		return nil, fmt.Errorf("duration must be between %d and %d hours: %w", minDurationHours, maxDurationHours, domain.ErrValidation)
	}
	if req.HourlyRateCents <= 0 {
		return nil, fmt.Errorf("hourly rate must be positive: %w", domain.ErrValidation)
	}
	if _, err := s.userRepo.GetByID(ctx, req.StudentID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, req.TutorID); err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		ExternalReference: uuid.New().String(),
		StudentID:         req.StudentID,
		TutorID:           req.TutorID,
		ScheduledAt:       req.ScheduledAt,
		DurationHours:     req.DurationHours,
		HourlyRateCents:   req.HourlyRateCents,
		Status:            domain.BookingStatusRequested,
		PaymentStatus:     domain.PaymentStatusUnpaid,
	}
	booking.RecalculateTotals()

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	logger.Info("Booking created",
		"booking_id", booking.ID,
		"student_id", booking.StudentID,
		"tutor_id", booking.TutorID,
		"total_cents", booking.TotalCents)
	return booking, nil
}

func (s *bookingService) Get(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

func (s *bookingService) ConfirmCompletion(ctx context.Context, bookingID, userID int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingStatusConfirmed {
		return nil, fmt.Errorf("booking %d is %s, not confirmed: %w", bookingID, booking.Status, domain.ErrInvalidState)
	}
	if time.Now().UTC().Before(booking.ScheduledAt) {
		return nil, fmt.Errorf("booking %d has not started yet: %w", bookingID, domain.ErrInvalidState)
	}

	var party domain.UserRole
	switch userID {
	case booking.StudentID:
		party = domain.UserRoleStudent
	case booking.TutorID:
		party = domain.UserRoleTutor
	default:
		return nil, fmt.Errorf("user %d is not a party of booking %d: %w", userID, bookingID, domain.ErrUnauthorized)
	}

	// The stored flag pair, not this in-memory copy, decides completion:
	// the other party may have confirmed since the read above.
	studentConfirmed, tutorConfirmed, err := s.bookingRepo.SetConfirmation(ctx, booking.ID, party)
	if err != nil {
		return nil, err
	}
	booking.ConfirmedByStudent = studentConfirmed
	booking.ConfirmedByTutor = tutorConfirmed

	if !booking.BothPartiesConfirmed() {
		return booking, nil
	}

	// Dual confirmation met: completing the booking releases the hold,
	// which also flips the booking to COMPLETED.
	if booking.EscrowStatus == domain.EscrowStatusPending {
		return s.escrowSvc.Release(ctx, booking.ID, string(party))
	}

	booking.Status = domain.BookingStatusCompleted
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}
	logger.Info("Booking completed by dual confirmation without escrow", "booking_id", booking.ID)
	return booking, nil
}

func (s *bookingService) Cancel(ctx context.Context, bookingID, cancelledBy int64, reason string) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if cancelledBy != booking.StudentID && cancelledBy != booking.TutorID {
		return nil, fmt.Errorf("user %d is not a party of booking %d: %w", cancelledBy, bookingID, domain.ErrUnauthorized)
	}
	if !booking.CanBeCancelled(time.Now().UTC(), s.leadTime) {
		return nil, fmt.Errorf("booking %d cannot be cancelled less than %s before start: %w", bookingID, s.leadTime, domain.ErrInvalidState)
	}

	// A pending hold must be refunded, never left dangling on a cancelled
	// booking. The refund itself cancels the booking.
	if booking.EscrowStatus == domain.EscrowStatusPending {
		return s.escrowSvc.Refund(ctx, booking.ID, reason)
	}

	booking.Status = domain.BookingStatusCancelled
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	logger.Info("Booking cancelled", "booking_id", booking.ID, "cancelled_by", cancelledBy)

	counterpartyID := booking.TutorID
	if cancelledBy == booking.TutorID {
		counterpartyID = booking.StudentID
	}
	if counterparty, lookupErr := s.userRepo.GetByID(ctx, counterpartyID); lookupErr == nil {
		if err := s.notifier.SendBookingCancelled(ctx, counterparty.Email, counterparty.Name, booking.ID, reason); err != nil {
			logger.Warn("Failed to send cancellation notification", "booking_id", booking.ID, "error", err)
		}
	}
	return booking, nil
}
