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

type transactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, external_reference, gateway_id, type, status,
	amount_cents, commission_cents, amount_net_cents,
	booking_id, student_id, tutor_id, COALESCE(status_detail, ''), processed_on, created_on, updated_on`

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var tx domain.Transaction
	var processedOn sql.NullTime
	err := row.Scan(
		&tx.ID, &tx.ExternalReference, &tx.GatewayID, &tx.Type, &tx.Status,
		&tx.AmountCents, &tx.CommissionCents, &tx.AmountNetCents,
		&tx.BookingID, &tx.StudentID, &tx.TutorID, &tx.StatusDetail, &processedOn, &tx.CreatedOn, &tx.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	tx.ProcessedAt = nullTimePtr(processedOn)
	return &tx, nil
}

func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `INSERT INTO transactions (external_reference, gateway_id, type, status,
	              amount_cents, commission_cents, amount_net_cents,
	              booking_id, student_id, tutor_id, status_detail, processed_on, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''),
	                  CASE WHEN $12 THEN NOW() ELSE NULL END, NOW(), NOW())
	          RETURNING id, created_on, updated_on`
	err := r.db.QueryRowContext(ctx, query,
		tx.ExternalReference, tx.GatewayID, tx.Type, tx.Status,
		tx.AmountCents, tx.CommissionCents, tx.AmountNetCents,
		tx.BookingID, tx.StudentID, tx.TutorID, tx.StatusDetail,
		tx.Status.IsTerminal(),
	).Scan(&tx.ID, &tx.CreatedOn, &tx.UpdatedOn)
	if err != nil {
		return err
	}
	if tx.Status.IsTerminal() {
		now := tx.CreatedOn
		tx.ProcessedAt = &now
	}
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %d: %w", id, domain.ErrNotFound)
	}
	return tx, err
}

func (r *transactionRepository) GetByGatewayID(ctx context.Context, gatewayID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE gateway_id = $1`
	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, gatewayID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return tx, err
}

func (r *transactionRepository) GetByExternalReference(ctx context.Context, ref string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE external_reference = $1`
	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, ref))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", ref, domain.ErrNotFound)
	}
	return tx, err
}

func (r *transactionRepository) GetLatestApprovedByBooking(ctx context.Context, bookingID int64) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
	          WHERE booking_id = $1 AND status = $2 AND type = $3
	          ORDER BY created_on DESC LIMIT 1`
	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, bookingID, domain.TransactionStatusApproved, domain.TransactionTypeBookingPayment))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("approved payment for booking %d: %w", bookingID, domain.ErrNotFound)
	}
	return tx, err
}

func (r *transactionRepository) UpdateStatus(ctx context.Context, id int64, status domain.TransactionStatus, statusDetail string) error {
	query := `UPDATE transactions
	          SET status = $2, status_detail = NULLIF($3, ''),
	              processed_on = CASE WHEN $4 THEN COALESCE(processed_on, NOW()) ELSE processed_on END,
	              updated_on = NOW()
	          WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, statusDetail, status.IsTerminal())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("transaction %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *transactionRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE booking_id = $1 ORDER BY created_on`
	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	return txs, rows.Err()
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Transaction, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + transactionColumns + ` FROM transactions
	          WHERE student_id = $1 OR tutor_id = $1
	          ORDER BY created_on DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		txs = append(txs, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var count int32
	countQuery := `SELECT count(*) FROM transactions WHERE student_id = $1 OR tutor_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&count); err != nil {
		return nil, 0, err
	}
	return txs, count, nil
}

func (r *transactionRepository) ListStalePending(ctx context.Context, olderThan time.Time) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
	          WHERE status IN ($1, $2) AND created_on < $3
	          ORDER BY created_on`
	rows, err := r.db.QueryContext(ctx, query, domain.TransactionStatusPending, domain.TransactionStatusInProcess, olderThan)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	return txs, rows.Err()
}
