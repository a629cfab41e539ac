package postgres

import (
	"database/sql"

	"tutorlink-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.BookingRepository
	repository.TransactionRepository
	repository.DiscountRepository
	repository.UserRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                    db,
		BookingRepository:     NewBookingRepository(db),
		TransactionRepository: NewTransactionRepository(db),
		DiscountRepository:    NewDiscountRepository(db),
		UserRepository:        NewUserRepository(db),
	}
}
