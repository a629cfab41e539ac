package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tutorlink-backend/internal/domain"
	"tutorlink-backend/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	var premiumUntil sql.NullTime
	query := `SELECT id, name, email, role, premium, premium_until, balance_cents, created_on, updated_on
	          FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.Role, &user.Premium, &premiumUntil,
		&user.BalanceCents, &user.CreatedOn, &user.UpdatedOn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	user.PremiumUntil = nullTimePtr(premiumUntil)
	return &user, nil
}

func (r *userRepository) CreditBalance(ctx context.Context, userID int64, amountCents int64) error {
	query := `UPDATE users SET balance_cents = balance_cents + $2, updated_on = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, userID, amountCents)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	return nil
}
