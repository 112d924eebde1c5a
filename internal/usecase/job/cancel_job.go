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
)

type CancelJobUseCase struct {
	jobRepo repository.JobRepository
	bidRepo repository.BidRepository
	ledger  repository.Ledger
	tx      repository.Transactor
	emitter event.Emitter
}

func NewCancelJobUseCase(
	jobRepo repository.JobRepository,
	bidRepo repository.BidRepository,
	ledger repository.Ledger,
	tx repository.Transactor,
	emitter event.Emitter,
) *CancelJobUseCase {
	return &CancelJobUseCase{
		jobRepo: jobRepo,
		bidRepo: bidRepo,
		ledger:  ledger,
		tx:      tx,
		emitter: emitter,
	}
}

// Execute отменяет открытый заказ, возвращает escrow клиенту и отклоняет ожидающие отклики.
func (uc *CancelJobUseCase) Execute(ctx context.Context, jobID uint64, callerID uuid.UUID) (*entity.Job, error) {
	var (
		job    *entity.Job
		refund uint64
		events event.Buffer
	)
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		job, err = uc.jobRepo.FindByID(ctx, jobID)
		if err != nil {
			return err
		}
		if !job.IsOwnedBy(callerID) {
			return apperror.ErrUnauthorized.WithDetail("caller", callerID.String())
		}

		refund, err = job.Cancel()
		if err != nil {
			return err
		}
		if refund > 0 {
			transfer := entity.NewTransfer(job.ID, job.ClientID, valueobject.TransferCancelRefund, refund)
			if err := uc.ledger.Credit(ctx, transfer); err != nil {
				return apperror.Ensure(err, apperror.ErrCodeLedger, "ошибка перевода средств")
			}
		}

		bids, err := uc.bidRepo.ListByJob(ctx, job.ID)
		if err != nil {
			return err
		}
		for _, b := range bids {
			if !b.IsPending() {
				continue
			}
			if err := b.Reject(); err != nil {
				return err
			}
			if err := uc.bidRepo.Update(ctx, b); err != nil {
				return err
			}
		}

		if err := uc.jobRepo.Update(ctx, job); err != nil {
			return err
		}
		events.Add(event.Event{Type: event.TypeJobCancelled, JobID: job.ID, Principal: callerID, Amount: refund})
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Funds(job.ID, job.ClientID.String(), refund).Info("заказ отменён, escrow возвращён клиенту")
	events.Flush(uc.emitter)
	return job, nil
}
