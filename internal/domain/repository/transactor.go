package repository

import "context"

// Transactor выполняет fn атомарно. Репозитории и Ledger, вызванные с переданным
// контекстом, работают внутри одной транзакции; ошибка fn откатывает всё.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store объединяет хранилища одного бэкенда.
type Store struct {
	Jobs       JobRepository
	Bids       BidRepository
	Disputes   DisputeRepository
	Ratings    RatingRepository
	Ledger     Ledger
	Transactor Transactor
}
