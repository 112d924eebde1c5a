package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/event"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/repository"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/escrow-marketplace/internal/logger"
	"github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"
)

type GetBalanceUseCase struct {
	ledger repository.Ledger
}

func NewGetBalanceUseCase(ledger repository.Ledger) *GetBalanceUseCase {
	return &GetBalanceUseCase{ledger: ledger}
}

func (uc *GetBalanceUseCase) Execute(ctx context.Context, principal uuid.UUID) (*entity.Account, error) {
	balance, err := uc.ledger.Balance(ctx, principal)
	if err != nil {
		return nil, apperror.Ensure(err, apperror.ErrCodeLedger, "не удалось получить баланс")
	}
	return &entity.Account{Principal: principal, Balance: balance}, nil
}

type DepositUseCase struct {
	ledger  repository.Ledger
	tx      repository.Transactor
	emitter event.Emitter
}

func NewDepositUseCase(ledger repository.Ledger, tx repository.Transactor, emitter event.Emitter) *DepositUseCase {
	return &DepositUseCase{ledger: ledger, tx: tx, emitter: emitter}
}

// Execute пополняет внешний баланс участника.
func (uc *DepositUseCase) Execute(ctx context.Context, principal uuid.UUID, amount uint64) (*entity.Account, error) {
	if amount == 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "сумма пополнения должна быть положительной")
	}

	var (
		balance uint64
		events  event.Buffer
	)
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.ledger.Credit(ctx, entity.NewTransfer(0, principal, valueobject.TransferDeposit, amount)); err != nil {
			return apperror.Ensure(err, apperror.ErrCodeLedger, "ошибка пополнения баланса")
		}
		var err error
		balance, err = uc.ledger.Balance(ctx, principal)
		if err != nil {
			return err
		}
		events.Add(event.Event{Type: event.TypeAccountDeposited, Principal: principal, Amount: amount})
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Funds(0, principal.String(), amount).Info("баланс пополнен")
	events.Flush(uc.emitter)
	return &entity.Account{Principal: principal, Balance: balance}, nil
}
