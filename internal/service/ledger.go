package service

import (
	"context"
	"fmt"

	"tutorlink-backend/internal/domain"
	"tutorlink-backend/internal/repository"
)

type ledgerService struct {
	txRepo repository.TransactionRepository
}

func NewLedgerService(txRepo repository.TransactionRepository) LedgerService {
	return &ledgerService{txRepo: txRepo}
}

func (s *ledgerService) GetTransaction(ctx context.Context, id int64) (*domain.Transaction, error) {
	return s.txRepo.GetByID(ctx, id)
}

func (s *ledgerService) GetByGatewayID(ctx context.Context, gatewayID string) (*domain.Transaction, error) {
	tx, err := s.txRepo.GetByGatewayID(ctx, gatewayID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction with gateway id %s: %w", gatewayID, domain.ErrNotFound)
	}
	return tx, nil
}

func (s *ledgerService) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Transaction, error) {
	return s.txRepo.ListByBooking(ctx, bookingID)
}

func (s *ledgerService) ListByUser(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Transaction, int32, error) {
	return s.txRepo.ListByUser(ctx, userID, page, pageSize)
}
