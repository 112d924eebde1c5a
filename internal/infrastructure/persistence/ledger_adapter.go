package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"
)

// LedgerAdapter хранит балансы в таблице accounts и журнал в ledger_transfers.
type LedgerAdapter struct {
	conn
}

type transferRow struct {
	ID        uuid.UUID `db:"id"`
	JobID     int64     `db:"job_id"`
	Principal uuid.UUID `db:"principal"`
	Kind      string    `db:"kind"`
	Amount    int64     `db:"amount"`
	CreatedAt time.Time `db:"created_at"`
}

func (l *LedgerAdapter) Balance(ctx context.Context, principal uuid.UUID) (uint64, error) {
	var balance int64
	err := sqlx.GetContext(ctx, l.ext(ctx), &balance, `SELECT balance FROM accounts WHERE principal = $1`, principal)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeLedger, "не удалось получить баланс")
	}
	return uint64(balance), nil
}

// Debit списывает средства одним условным UPDATE, поэтому баланс не уходит в минус при гонках.
func (l *LedgerAdapter) Debit(ctx context.Context, transfer entity.Transfer) error {
	if err := transfer.CheckDirection(false); err != nil {
		return err
	}
	amount, err := toBigint("amount", transfer.Amount)
	if err != nil {
		return err
	}

	ext := l.ext(ctx)
	result, err := ext.ExecContext(ctx, `
		UPDATE accounts SET balance = balance - $2, updated_at = NOW()
		WHERE principal = $1 AND balance >= $2
	`, transfer.Principal, amount)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeLedger, "не удалось списать средства")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeLedger, "не удалось проверить списание")
	}
	if rows == 0 {
		balance, err := l.Balance(ctx, transfer.Principal)
		if err != nil {
			return err
		}
		return apperror.ErrInsufficientFunds.
			WithDetail("balance", balance).
			WithDetail("required", transfer.Amount)
	}
	return l.journal(ctx, ext, transfer, amount)
}

func (l *LedgerAdapter) Credit(ctx context.Context, transfer entity.Transfer) error {
	if err := transfer.CheckDirection(true); err != nil {
		return err
	}
	amount, err := toBigint("amount", transfer.Amount)
	if err != nil {
		return err
	}

	ext := l.ext(ctx)
	_, err = ext.ExecContext(ctx, `
		INSERT INTO accounts (principal, balance, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (principal) DO UPDATE
		SET balance = accounts.balance + EXCLUDED.balance, updated_at = NOW()
	`, transfer.Principal, amount)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeLedger, "не удалось зачислить средства")
	}
	return l.journal(ctx, ext, transfer, amount)
}

func (l *LedgerAdapter) ListTransfers(ctx context.Context, jobID uint64) ([]entity.Transfer, error) {
	var rows []transferRow
	err := sqlx.SelectContext(ctx, l.ext(ctx), &rows, `
		SELECT id, job_id, principal, kind, amount, created_at
		FROM ledger_transfers WHERE job_id = $1 ORDER BY seq
	`, int64(jobID))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeLedger, "не удалось получить журнал переводов")
	}

	transfers := make([]entity.Transfer, 0, len(rows))
	for _, row := range rows {
		transfers = append(transfers, entity.Transfer{
			ID:        row.ID,
			JobID:     uint64(row.JobID),
			Principal: row.Principal,
			Kind:      valueobject.TransferKind(row.Kind),
			Amount:    uint64(row.Amount),
			CreatedAt: row.CreatedAt,
		})
	}
	return transfers, nil
}

func (l *LedgerAdapter) journal(ctx context.Context, ext sqlx.ExtContext, transfer entity.Transfer, amount int64) error {
	_, err := ext.ExecContext(ctx, `
		INSERT INTO ledger_transfers (id, job_id, principal, kind, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, transfer.ID, int64(transfer.JobID), transfer.Principal, string(transfer.Kind), amount, transfer.CreatedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeLedger, "не удалось записать перевод в журнал")
	}
	return nil
}
