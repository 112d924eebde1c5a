package job

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/event"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/repository"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/escrow-marketplace/internal/logger"
	"github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/escrow-marketplace/internal/validation"
)

type PostJobInput struct {
	ClientID    uuid.UUID
	Title       string
	Description string
	Budget      uint64
	Milestones  []uint64
}

type PostJobUseCase struct {
	jobRepo repository.JobRepository
	ledger  repository.Ledger
	tx      repository.Transactor
	limits  validation.Limits
	emitter event.Emitter
}

func NewPostJobUseCase(
	jobRepo repository.JobRepository,
	ledger repository.Ledger,
	tx repository.Transactor,
	limits validation.Limits,
	emitter event.Emitter,
) *PostJobUseCase {
	return &PostJobUseCase{
		jobRepo: jobRepo,
		ledger:  ledger,
		tx:      tx,
		limits:  limits,
		emitter: emitter,
	}
}

// Execute создаёт заказ и блокирует весь бюджет клиента в escrow.
func (uc *PostJobUseCase) Execute(ctx context.Context, input PostJobInput) (*entity.Job, error) {
	if err := uc.limits.ValidateJob(input.Title, input.Description); err != nil {
		return nil, err
	}

	job, err := entity.NewJob(input.ClientID, input.Title, input.Description, input.Budget, input.Milestones, uc.limits.MaxMilestones)
	if err != nil {
		return nil, err
	}

	var events event.Buffer
	err = uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.jobRepo.Create(ctx, job); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать заказ")
		}
		lock := entity.NewTransfer(job.ID, job.ClientID, valueobject.TransferEscrowLock, job.Budget)
		if err := uc.ledger.Debit(ctx, lock); err != nil {
			return apperror.Ensure(err, apperror.ErrCodeLedger, "ошибка перевода средств")
		}
		events.Add(event.Event{Type: event.TypeJobPosted, JobID: job.ID, Principal: job.ClientID, Amount: job.Budget})
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Funds(job.ID, job.ClientID.String(), job.Budget).Info("бюджет заказа заблокирован в escrow")
	events.Flush(uc.emitter)
	return job, nil
}
