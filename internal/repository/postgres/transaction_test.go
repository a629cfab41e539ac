package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"tutorlink-backend/internal/domain"
)

var transactionTestColumns = []string{
	"id", "external_reference", "gateway_id", "type", "status",
	"amount_cents", "commission_cents", "amount_net_cents",
	"booking_id", "student_id", "tutor_id", "status_detail", "processed_on", "created_on", "updated_on",
}

func transactionRow(id int64, status string, processedOn interface{}) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(transactionTestColumns).AddRow(
		id, "ref-abc", "pay_123", "BOOKING_PAYMENT", status,
		int64(100000), int64(20000), int64(80000),
		int64(10), int64(1), int64(2), "", processedOn, now, now,
	)
}

func TestTransactionRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := NewTransactionRepository(db)

	now := time.Now().UTC()

	t.Run("Approved transaction is stamped processed", func(t *testing.T) {
		tx := &domain.Transaction{
			ExternalReference: "ref-abc",
			GatewayID:         "pay_123",
			Type:              domain.TransactionTypeBookingPayment,
			Status:            domain.TransactionStatusApproved,
			AmountCents:       100000,
			CommissionCents:   20000,
			AmountNetCents:    80000,
			BookingID:         10,
			StudentID:         1,
			TutorID:           2,
		}

		mock.ExpectQuery("INSERT INTO transactions").
			WithArgs("ref-abc", "pay_123", string(domain.TransactionTypeBookingPayment), string(domain.TransactionStatusApproved),
				int64(100000), int64(20000), int64(80000),
				int64(10), int64(1), int64(2), "", true).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_on", "updated_on"}).AddRow(int64(501), now, now))

		err := repo.Create(context.Background(), tx)

		assert.NoError(t, err)
		assert.Equal(t, int64(501), tx.ID)
		assert.NotNil(t, tx.ProcessedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Pending transaction is not stamped", func(t *testing.T) {
		tx := &domain.Transaction{
			ExternalReference: "ref-abc",
			GatewayID:         "pay_124",
			Type:              domain.TransactionTypeBookingPayment,
			Status:            domain.TransactionStatusPending,
			AmountCents:       100000,
			BookingID:         10,
			StudentID:         1,
			TutorID:           2,
		}

		mock.ExpectQuery("INSERT INTO transactions").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_on", "updated_on"}).AddRow(int64(502), now, now))

		err := repo.Create(context.Background(), tx)

		assert.NoError(t, err)
		assert.Nil(t, tx.ProcessedAt)
	})
}

func TestTransactionRepository_GetByGatewayID(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := NewTransactionRepository(db)

	t.Run("Returns the matching transaction", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM transactions WHERE gateway_id").
			WithArgs("pay_123").
			WillReturnRows(transactionRow(501, "APPROVED", time.Now().UTC()))

		tx, err := repo.GetByGatewayID(context.Background(), "pay_123")

		assert.NoError(t, err)
		assert.Equal(t, int64(501), tx.ID)
		assert.Equal(t, domain.TransactionStatusApproved, tx.Status)
		assert.NotNil(t, tx.ProcessedAt)
	})

	t.Run("No row means nil, not an error", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM transactions WHERE gateway_id").
			WithArgs("pay_unknown").
			WillReturnRows(sqlmock.NewRows(transactionTestColumns))

		tx, err := repo.GetByGatewayID(context.Background(), "pay_unknown")

		assert.NoError(t, err)
		assert.Nil(t, tx)
	})
}

func TestTransactionRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := NewTransactionRepository(db)

	t.Run("Terminal status stamps processed_on", func(t *testing.T) {
		mock.ExpectExec("UPDATE transactions").
			WithArgs(int64(501), string(domain.TransactionStatusApproved), "accredited", true).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatus(context.Background(), 501, domain.TransactionStatusApproved, "accredited")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Non-terminal status does not stamp", func(t *testing.T) {
		mock.ExpectExec("UPDATE transactions").
			WithArgs(int64(501), string(domain.TransactionStatusInProcess), "", false).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateStatus(context.Background(), 501, domain.TransactionStatusInProcess, ""))
	})

	t.Run("Missing transaction maps to not found", func(t *testing.T) {
		mock.ExpectExec("UPDATE transactions").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(context.Background(), 999, domain.TransactionStatusApproved, "")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestTransactionRepository_GetLatestApprovedByBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := NewTransactionRepository(db)

	t.Run("Returns the latest approved payment", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM transactions").
			WithArgs(int64(10), string(domain.TransactionStatusApproved), string(domain.TransactionTypeBookingPayment)).
			WillReturnRows(transactionRow(501, "APPROVED", time.Now().UTC()))

		tx, err := repo.GetLatestApprovedByBooking(context.Background(), 10)

		assert.NoError(t, err)
		assert.Equal(t, int64(80000), tx.AmountNetCents)
	})

	t.Run("No approved payment maps to not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM transactions").
			WillReturnRows(sqlmock.NewRows(transactionTestColumns))

		_, err := repo.GetLatestApprovedByBooking(context.Background(), 10)

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestUserRepository_CreditBalance(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := NewUserRepository(db)

	t.Run("Adds to the balance", func(t *testing.T) {
		mock.ExpectExec("UPDATE users SET balance_cents").
			WithArgs(int64(2), int64(80000)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.CreditBalance(context.Background(), 2, 80000))
	})

	t.Run("Missing user maps to not found", func(t *testing.T) {
		mock.ExpectExec("UPDATE users SET balance_cents").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.CreditBalance(context.Background(), 999, 80000)

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestDiscountRepository_GetUsage(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := NewDiscountRepository(db)

	t.Run("Returns the most recent usage", func(t *testing.T) {
		usedAt := time.Now().UTC().Add(-30 * 24 * time.Hour)
		mock.ExpectQuery("SELECT (.+) FROM discount_usages").
			WithArgs(int64(1), "math").
			WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "category", "used_on"}).
				AddRow(int64(7), int64(1), "math", usedAt))

		usage, err := repo.GetUsage(context.Background(), 1, "math")

		assert.NoError(t, err)
		assert.Equal(t, "math", usage.Category)
		assert.WithinDuration(t, usedAt, usage.UsedAt, time.Second)
	})

	t.Run("No usage means nil, not an error", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM discount_usages").
			WithArgs(int64(1), "science").
			WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "category", "used_on"}))

		usage, err := repo.GetUsage(context.Background(), 1, "science")

		assert.NoError(t, err)
		assert.Nil(t, usage)
	})
}

func TestDiscountRepository_RecordUsage(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := NewDiscountRepository(db)

	now := time.Now().UTC()
	cutoff := now.Add(-180 * 24 * time.Hour)

	t.Run("Consumes the eligibility and sets the row id", func(t *testing.T) {
		usage := &domain.DiscountUsage{StudentID: 1, Category: "math", UsedAt: now}
		mock.ExpectQuery("INSERT INTO discount_usages").
			WithArgs(int64(1), "math", now, cutoff).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

		err := repo.RecordUsage(context.Background(), usage, cutoff)

		assert.NoError(t, err)
		assert.Equal(t, int64(7), usage.ID)
	})

	t.Run("No row back means the eligibility was already consumed", func(t *testing.T) {
		usage := &domain.DiscountUsage{StudentID: 1, Category: "math", UsedAt: now}
		mock.ExpectQuery("INSERT INTO discount_usages").
			WithArgs(int64(1), "math", now, cutoff).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		err := repo.RecordUsage(context.Background(), usage, cutoff)

		assert.ErrorIs(t, err, domain.ErrDiscountNotEligible)
	})
}
