package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
)

// Ledger: адаптер балансов. Каждый вызов выполняет ровно один перевод
// и записывает его в журнал в рамках текущей транзакции.
type Ledger interface {
	Balance(ctx context.Context, principal uuid.UUID) (uint64, error)
	// Debit возвращает apperror.ErrInsufficientFunds, если баланса не хватает.
	Debit(ctx context.Context, transfer entity.Transfer) error
	Credit(ctx context.Context, transfer entity.Transfer) error
	ListTransfers(ctx context.Context, jobID uint64) ([]entity.Transfer, error)
}
