package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tutorlink-backend/internal/domain"
	"tutorlink-backend/internal/repository"
)

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `id, external_reference, student_id, tutor_id, scheduled_at, duration_hours,
	hourly_rate_cents, subtotal_cents, total_cents,
	discount_applied, discount_pct, discount_amount_cents, COALESCE(discount_category, ''), COALESCE(discount_absorbed_by, ''),
	status, payment_status, COALESCE(escrow_status, ''),
	confirmed_by_student, confirmed_by_tutor,
	escrow_created_at, escrow_expires_at, escrow_released_at, escrow_refunded_at, escrow_disputed_at, escrow_expired_at,
	COALESCE(escrow_released_by, ''), COALESCE(refund_reason, ''), COALESCE(disputed_by, ''), COALESCE(dispute_reason, ''),
	COALESCE(resolution_decision, ''), COALESCE(resolved_by, ''), resolved_at,
	created_on, updated_on`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var escrowCreated, escrowExpires, escrowReleased, escrowRefunded, escrowDisputed, escrowExpired, resolvedAt sql.NullTime
	err := row.Scan(
		&b.ID, &b.ExternalReference, &b.StudentID, &b.TutorID, &b.ScheduledAt, &b.DurationHours,
		&b.HourlyRateCents, &b.SubtotalCents, &b.TotalCents,
		&b.Discount.Applied, &b.Discount.Percentage, &b.Discount.AmountCents, &b.Discount.Category, &b.Discount.AbsorbedBy,
		&b.Status, &b.PaymentStatus, &b.EscrowStatus,
		&b.ConfirmedByStudent, &b.ConfirmedByTutor,
		&escrowCreated, &escrowExpires, &escrowReleased, &escrowRefunded, &escrowDisputed, &escrowExpired,
		&b.EscrowReleasedBy, &b.RefundReason, &b.DisputedBy, &b.DisputeReason,
		&b.ResolutionDecision, &b.ResolvedBy, &resolvedAt,
		&b.CreatedOn, &b.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	b.EscrowCreatedAt = nullTimePtr(escrowCreated)
	b.EscrowExpiresAt = nullTimePtr(escrowExpires)
	b.EscrowReleasedAt = nullTimePtr(escrowReleased)
	b.EscrowRefundedAt = nullTimePtr(escrowRefunded)
	b.EscrowDisputedAt = nullTimePtr(escrowDisputed)
	b.EscrowExpiredAt = nullTimePtr(escrowExpired)
	b.ResolvedAt = nullTimePtr(resolvedAt)
	return &b, nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}

func (r *bookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `INSERT INTO bookings (external_reference, student_id, tutor_id, scheduled_at, duration_hours,
	              hourly_rate_cents, subtotal_cents, total_cents,
	              discount_applied, discount_pct, discount_amount_cents, discount_category, discount_absorbed_by,
	              status, payment_status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''), NULLIF($13, ''), $14, $15, NOW(), NOW())
	          RETURNING id, created_on, updated_on`
	return r.db.QueryRowContext(ctx, query,
		booking.ExternalReference, booking.StudentID, booking.TutorID, booking.ScheduledAt, booking.DurationHours,
		booking.HourlyRateCents, booking.SubtotalCents, booking.TotalCents,
		booking.Discount.Applied, booking.Discount.Percentage, booking.Discount.AmountCents,
		booking.Discount.Category, string(booking.Discount.AbsorbedBy),
		booking.Status, booking.PaymentStatus,
	).Scan(&booking.ID, &booking.CreatedOn, &booking.UpdatedOn)
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking %d: %w", id, domain.ErrNotFound)
	}
	return booking, err
}

func (r *bookingRepository) GetByExternalReference(ctx context.Context, ref string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE external_reference = $1`
	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, ref))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking %s: %w", ref, domain.ErrNotFound)
	}
	return booking, err
}

// Update never writes the confirmation columns; SetConfirmation owns them,
// so a confirmation landing between a read and this write is not erased.
func (r *bookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	query := `UPDATE bookings
	          SET scheduled_at = $2, duration_hours = $3,
	              hourly_rate_cents = $4, subtotal_cents = $5, total_cents = $6,
	              discount_applied = $7, discount_pct = $8, discount_amount_cents = $9,
	              discount_category = NULLIF($10, ''), discount_absorbed_by = NULLIF($11, ''),
	              status = $12, payment_status = $13,
	              updated_on = NOW()
	          WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query,
		booking.ID, booking.ScheduledAt, booking.DurationHours,
		booking.HourlyRateCents, booking.SubtotalCents, booking.TotalCents,
		booking.Discount.Applied, booking.Discount.Percentage, booking.Discount.AmountCents,
		booking.Discount.Category, string(booking.Discount.AbsorbedBy),
		booking.Status, booking.PaymentStatus,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("booking %d: %w", booking.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *bookingRepository) SetConfirmation(ctx context.Context, id int64, party domain.UserRole) (bool, bool, error) {
	var column string
	switch party {
	case domain.UserRoleStudent:
		column = "confirmed_by_student"
	case domain.UserRoleTutor:
		column = "confirmed_by_tutor"
	default:
		return false, false, fmt.Errorf("confirmation party %s: %w", party, domain.ErrValidation)
	}
	query := fmt.Sprintf(`UPDATE bookings SET %s = TRUE, updated_on = NOW() WHERE id = $1
	          RETURNING confirmed_by_student, confirmed_by_tutor`, column)
	var studentConfirmed, tutorConfirmed bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(&studentConfirmed, &tutorConfirmed)
	if errors.Is(err, sql.ErrNoRows) {
		return false, false, fmt.Errorf("booking %d: %w", id, domain.ErrNotFound)
	}
	return studentConfirmed, tutorConfirmed, err
}

func (r *bookingRepository) TransitionEscrow(ctx context.Context, booking *domain.Booking, from domain.EscrowStatus) error {
	// IS NOT DISTINCT FROM makes the guard match a NULL column when from is
	// EscrowStatusNone, so hold creation uses the same conditional write.
	query := `UPDATE bookings
	          SET status = $2, payment_status = $3, escrow_status = NULLIF($4, ''),
	              escrow_created_at = $5, escrow_expires_at = $6,
	              escrow_released_at = $7, escrow_refunded_at = $8, escrow_disputed_at = $9, escrow_expired_at = $10,
	              escrow_released_by = NULLIF($11, ''), refund_reason = NULLIF($12, ''),
	              disputed_by = NULLIF($13, ''), dispute_reason = NULLIF($14, ''),
	              resolution_decision = NULLIF($15, ''), resolved_by = NULLIF($16, ''), resolved_at = $17,
	              updated_on = NOW()
	          WHERE id = $1 AND escrow_status IS NOT DISTINCT FROM NULLIF($18, '')`
	result, err := r.db.ExecContext(ctx, query,
		booking.ID, booking.Status, booking.PaymentStatus, string(booking.EscrowStatus),
		booking.EscrowCreatedAt, booking.EscrowExpiresAt,
		booking.EscrowReleasedAt, booking.EscrowRefundedAt, booking.EscrowDisputedAt, booking.EscrowExpiredAt,
		booking.EscrowReleasedBy, booking.RefundReason,
		booking.DisputedBy, booking.DisputeReason,
		string(booking.ResolutionDecision), booking.ResolvedBy, booking.ResolvedAt,
		string(from),
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("booking %d escrow no longer %s: %w", booking.ID, from, domain.ErrConflict)
	}
	return nil
}

func (r *bookingRepository) ListEscrowPendingExpired(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE escrow_status = $1 AND escrow_expires_at < $2
	          ORDER BY escrow_expires_at`
	rows, err := r.db.QueryContext(ctx, query, domain.EscrowStatusPending, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}
	return bookings, rows.Err()
}
