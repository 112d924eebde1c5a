package kvstore

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"
)

type accountRecord struct {
	Balance   uint64    `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

type transferRecord struct {
	ID        uuid.UUID `json:"id"`
	JobID     uint64    `json:"job_id"`
	Principal uuid.UUID `json:"principal"`
	Kind      string    `json:"kind"`
	Amount    uint64    `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// Ledger хранит балансы и журнал переводов в том же хранилище, что и заказы,
// поэтому перевод и изменение заказа фиксируются одной пачкой.
type Ledger struct {
	store *Store
}

func accountKey(principal uuid.UUID) string {
	return "account/" + principal.String()
}

func (l *Ledger) Balance(ctx context.Context, principal uuid.UUID) (uint64, error) {
	var rec accountRecord
	if _, err := getJSON(l.store.reader(ctx), accountKey(principal), &rec); err != nil {
		return 0, err
	}
	return rec.Balance, nil
}

func (l *Ledger) Debit(ctx context.Context, transfer entity.Transfer) error {
	if err := transfer.CheckDirection(false); err != nil {
		return err
	}
	return l.store.run(ctx, func(t *tx) error {
		var rec accountRecord
		if _, err := getJSON(t, accountKey(transfer.Principal), &rec); err != nil {
			return err
		}
		if rec.Balance < transfer.Amount {
			return apperror.ErrInsufficientFunds.
				WithDetail("balance", rec.Balance).
				WithDetail("required", transfer.Amount)
		}
		rec.Balance -= transfer.Amount
		rec.UpdatedAt = time.Now().UTC()
		if err := t.putJSON(accountKey(transfer.Principal), rec); err != nil {
			return err
		}
		return l.journal(t, transfer)
	})
}

func (l *Ledger) Credit(ctx context.Context, transfer entity.Transfer) error {
	if err := transfer.CheckDirection(true); err != nil {
		return err
	}
	return l.store.run(ctx, func(t *tx) error {
		var rec accountRecord
		if _, err := getJSON(t, accountKey(transfer.Principal), &rec); err != nil {
			return err
		}
		if rec.Balance > math.MaxUint64-transfer.Amount {
			return apperror.New(apperror.ErrCodeLedger, "переполнение баланса").
				WithDetail("principal", transfer.Principal.String())
		}
		rec.Balance += transfer.Amount
		rec.UpdatedAt = time.Now().UTC()
		if err := t.putJSON(accountKey(transfer.Principal), rec); err != nil {
			return err
		}
		return l.journal(t, transfer)
	})
}

func (l *Ledger) ListTransfers(ctx context.Context, jobID uint64) ([]entity.Transfer, error) {
	transfers := make([]entity.Transfer, 0)
	err := iterateJSON(l.store.reader(ctx), transferPrefix(jobID), func(rec *transferRecord) {
		transfers = append(transfers, entity.Transfer{
			ID:        rec.ID,
			JobID:     rec.JobID,
			Principal: rec.Principal,
			Kind:      valueobject.TransferKind(rec.Kind),
			Amount:    rec.Amount,
			CreatedAt: rec.CreatedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return transfers, nil
}

func (l *Ledger) journal(t *tx, transfer entity.Transfer) error {
	seq, err := t.nextSequence("transfer")
	if err != nil {
		return err
	}
	key := fmt.Sprintf("%s%020d", transferPrefix(transfer.JobID), seq)
	return t.putJSON(key, transferRecord{
		ID:        transfer.ID,
		JobID:     transfer.JobID,
		Principal: transfer.Principal,
		Kind:      string(transfer.Kind),
		Amount:    transfer.Amount,
		CreatedAt: transfer.CreatedAt,
	})
}
