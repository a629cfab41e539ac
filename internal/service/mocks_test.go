package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"tutorlink-backend/internal/domain"
	"tutorlink-backend/internal/gateway"
)

type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, booking *domain.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *MockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) GetByExternalReference(ctx context.Context, ref string) (*domain.Booking, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) Update(ctx context.Context, booking *domain.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *MockBookingRepo) SetConfirmation(ctx context.Context, id int64, party domain.UserRole) (bool, bool, error) {
	args := m.Called(ctx, id, party)
	return args.Bool(0), args.Bool(1), args.Error(2)
}

func (m *MockBookingRepo) TransitionEscrow(ctx context.Context, booking *domain.Booking, from domain.EscrowStatus) error {
	return m.Called(ctx, booking, from).Error(0)
}

func (m *MockBookingRepo) ListEscrowPendingExpired(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) Create(ctx context.Context, tx *domain.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockTransactionRepo) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) GetByGatewayID(ctx context.Context, gatewayID string) (*domain.Transaction, error) {
	args := m.Called(ctx, gatewayID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) GetByExternalReference(ctx context.Context, ref string) (*domain.Transaction, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) GetLatestApprovedByBooking(ctx context.Context, bookingID int64) (*domain.Transaction, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) UpdateStatus(ctx context.Context, id int64, status domain.TransactionStatus, statusDetail string) error {
	return m.Called(ctx, id, status, statusDetail).Error(0)
}

func (m *MockTransactionRepo) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Transaction, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) ListByUser(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Transaction, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int32), args.Error(2)
	}
	return args.Get(0).([]domain.Transaction), args.Get(1).(int32), args.Error(2)
}

func (m *MockTransactionRepo) ListStalePending(ctx context.Context, olderThan time.Time) ([]domain.Transaction, error) {
	args := m.Called(ctx, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) CreditBalance(ctx context.Context, userID int64, amountCents int64) error {
	return m.Called(ctx, userID, amountCents).Error(0)
}

type MockDiscountRepo struct {
	mock.Mock
}

func (m *MockDiscountRepo) GetUsage(ctx context.Context, studentID int64, category string) (*domain.DiscountUsage, error) {
	args := m.Called(ctx, studentID, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DiscountUsage), args.Error(1)
}

func (m *MockDiscountRepo) RecordUsage(ctx context.Context, usage *domain.DiscountUsage, cutoff time.Time) error {
	return m.Called(ctx, usage, cutoff).Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendPaymentApproved(ctx context.Context, email, name string, bookingID, amountCents int64) error {
	return m.Called(ctx, email, name, bookingID, amountCents).Error(0)
}

func (m *MockNotifier) SendEscrowReleased(ctx context.Context, email, name string, bookingID, amountNetCents int64) error {
	return m.Called(ctx, email, name, bookingID, amountNetCents).Error(0)
}

func (m *MockNotifier) SendEscrowRefunded(ctx context.Context, email, name string, bookingID int64, reason string) error {
	return m.Called(ctx, email, name, bookingID, reason).Error(0)
}

func (m *MockNotifier) SendDisputeOpened(ctx context.Context, email, name string, bookingID int64, openedBy, reason string) error {
	return m.Called(ctx, email, name, bookingID, openedBy, reason).Error(0)
}

func (m *MockNotifier) SendDisputeResolved(ctx context.Context, email, name string, bookingID int64, decision string) error {
	return m.Called(ctx, email, name, bookingID, decision).Error(0)
}

func (m *MockNotifier) SendBookingCancelled(ctx context.Context, email, name string, bookingID int64, reason string) error {
	return m.Called(ctx, email, name, bookingID, reason).Error(0)
}

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) GetPayment(ctx context.Context, id string) (*gateway.PaymentInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.PaymentInfo), args.Error(1)
}

func (m *MockPaymentGateway) CreateCharge(ctx context.Context, charge *gateway.ChargeRequest) (*gateway.PaymentInfo, error) {
	args := m.Called(ctx, charge)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.PaymentInfo), args.Error(1)
}

type MockEscrowService struct {
	mock.Mock
}

func (m *MockEscrowService) CreateHold(ctx context.Context, bookingID, transactionID int64) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockEscrowService) Release(ctx context.Context, bookingID int64, confirmedBy string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, confirmedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockEscrowService) Refund(ctx context.Context, bookingID int64, reason string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockEscrowService) Dispute(ctx context.Context, bookingID int64, initiator, reason string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, initiator, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockEscrowService) Resolve(ctx context.Context, bookingID int64, decision domain.ResolutionDecision, resolvedBy string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, decision, resolvedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockEscrowService) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *MockEscrowService) Info(ctx context.Context, bookingID int64) (*EscrowInfo, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*EscrowInfo), args.Error(1)
}
