package service

import (
	"context"
	"fmt"
	"time"

	"tutorlink-backend/internal/domain"
	"tutorlink-backend/internal/logger"
	"tutorlink-backend/internal/repository"
)

type discountService struct {
	bookingRepo  repository.BookingRepository
	discountRepo repository.DiscountRepository
	userRepo     repository.UserRepository
	percentage   int32
	cooldown     time.Duration
}

func NewDiscountService(
	bookingRepo repository.BookingRepository,
	discountRepo repository.DiscountRepository,
	userRepo repository.UserRepository,
	percentage int32,
	cooldown time.Duration,
) DiscountService {
	return &discountService{
		bookingRepo:  bookingRepo,
		discountRepo: discountRepo,
		userRepo:     userRepo,
		percentage:   percentage,
		cooldown:     cooldown,
	}
}

func (s *discountService) Evaluate(ctx context.Context, studentID, tutorID int64, category string) (*domain.DiscountEvaluation, error) {
	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	tutor, err := s.userRepo.GetByID(ctx, tutorID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	eval := &domain.DiscountEvaluation{
		Percentage: s.percentage,
		AbsorbedBy: domain.DiscountAbsorberTutor,
	}
	// The platform only absorbs the discount when both sides are paying
	// premium members; otherwise the tutor carries it.
	if student.IsPremiumActive(now) && tutor.IsPremiumActive(now) {
		eval.AbsorbedBy = domain.DiscountAbsorberPlatform
	}

	usage, err := s.discountRepo.GetUsage(ctx, studentID, category)
	if err != nil {
		return nil, err
	}
	eval.Eligible = usage == nil || now.Sub(usage.UsedAt) >= s.cooldown
	return eval, nil
}

func (s *discountService) Apply(ctx context.Context, bookingID, studentID, tutorID int64, category string) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Discount.Applied {
		return nil, fmt.Errorf("booking %d: %w", bookingID, domain.ErrDiscountAlreadyApplied)
	}

	eval, err := s.Evaluate(ctx, studentID, tutorID, category)
	if err != nil {
		return nil, err
	}
	if !eval.Eligible {
		return nil, fmt.Errorf("student %d already used a %s discount within the cooldown window: %w",
			studentID, category, domain.ErrDiscountNotEligible)
	}

	// Consume the eligibility first. The conditional write also arbitrates
	// concurrent applications in the same category: exactly one caller gets
	// past it, so a booking never carries a discount whose usage was not
	// recorded.
	now := time.Now().UTC()
	usage := &domain.DiscountUsage{
		StudentID: studentID,
		Category:  category,
		UsedAt:    now,
	}
	if err := s.discountRepo.RecordUsage(ctx, usage, now.Add(-s.cooldown)); err != nil {
		return nil, err
	}

	booking.Discount.Applied = true
	booking.Discount.Percentage = eval.Percentage
	booking.Discount.Category = category
	booking.Discount.AbsorbedBy = eval.AbsorbedBy
	booking.RecalculateTotals()

	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	logger.Info("Discount applied",
		"booking_id", booking.ID,
		"category", category,
		"percentage", eval.Percentage,
		"absorbed_by", eval.AbsorbedBy,
		"amount_cents", booking.Discount.AmountCents)
	return booking, nil
}
