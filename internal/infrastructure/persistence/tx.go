package persistence

import (
	"context"
	"fmt"
	"math"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/escrow-marketplace/internal/domain/repository"
	"github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"
)

type txKey struct{}

// TxManager открывает транзакцию PostgreSQL и передаёт её репозиториям через контекст.
type TxManager struct {
	db *sqlx.DB
}

func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось начать транзакцию")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось зафиксировать транзакцию")
	}
	return nil
}

// conn: общая часть адаптеров: выбирает транзакцию из контекста или пул.
type conn struct {
	db *sqlx.DB
}

func (c conn) ext(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return c.db
}

// lockClause блокирует строку до конца транзакции, чтобы операции над одним заказом шли по очереди.
func (c conn) lockClause(ctx context.Context) string {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return " FOR UPDATE"
	}
	return ""
}

// NewStore собирает хранилища домена поверх PostgreSQL.
func NewStore(db *sqlx.DB) repository.Store {
	c := conn{db: db}
	return repository.Store{
		Jobs:       &JobRepositoryAdapter{conn: c},
		Bids:       &BidRepositoryAdapter{conn: c},
		Disputes:   &DisputeRepositoryAdapter{conn: c},
		Ratings:    &RatingRepositoryAdapter{conn: c},
		Ledger:     &LedgerAdapter{conn: c},
		Transactor: NewTxManager(db),
	}
}

// toBigint проверяет, что сумма помещается в BIGINT.
func toBigint(field string, v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, apperror.New(apperror.ErrCodeValidation, "сумма превышает допустимый предел хранилища").
			WithDetail("field", field).
			WithDetail("value", v)
	}
	return int64(v), nil
}
