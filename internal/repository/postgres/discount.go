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

type discountRepository struct {
	db *sql.DB
}

func NewDiscountRepository(db *sql.DB) repository.DiscountRepository {
	return &discountRepository{db: db}
}

func (r *discountRepository) GetUsage(ctx context.Context, studentID int64, category string) (*domain.DiscountUsage, error) {
	var usage domain.DiscountUsage
	query := `SELECT id, student_id, category, used_on FROM discount_usages
	          WHERE student_id = $1 AND category = $2
	          ORDER BY used_on DESC LIMIT 1`
	err := r.db.QueryRowContext(ctx, query, studentID, category).
		Scan(&usage.ID, &usage.StudentID, &usage.Category, &usage.UsedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &usage, nil
}

// RecordUsage relies on the unique (student_id, category) index: the upsert
// refreshes used_on only when the previous usage is outside the cooldown, so
// a row comes back exactly when this caller won the eligibility.
func (r *discountRepository) RecordUsage(ctx context.Context, usage *domain.DiscountUsage, cutoff time.Time) error {
	query := `INSERT INTO discount_usages (student_id, category, used_on)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (student_id, category) DO UPDATE SET used_on = EXCLUDED.used_on
	          WHERE discount_usages.used_on <= $4
	          RETURNING id`
	err := r.db.QueryRowContext(ctx, query, usage.StudentID, usage.Category, usage.UsedAt, cutoff).Scan(&usage.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("student %d already used a %s discount: %w", usage.StudentID, usage.Category, domain.ErrDiscountNotEligible)
	}
	return err
}
