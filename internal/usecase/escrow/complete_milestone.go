package escrow

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/event"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/repository"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/escrow-marketplace/internal/logger"
	"github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"
)

type CompleteMilestoneInput struct {
	JobID    uint64
	CallerID uuid.UUID
}

type MilestoneResult struct {
	Job      *entity.Job
	Index    int
	Released uint64
}

type CompleteMilestoneUseCase struct {
	jobRepo repository.JobRepository
	ledger  repository.Ledger
	tx      repository.Transactor
	emitter event.Emitter
}

func NewCompleteMilestoneUseCase(
	jobRepo repository.JobRepository,
	ledger repository.Ledger,
	tx repository.Transactor,
	emitter event.Emitter,
) *CompleteMilestoneUseCase {
	return &CompleteMilestoneUseCase{
		jobRepo: jobRepo,
		ledger:  ledger,
		tx:      tx,
		emitter: emitter,
	}
}

// Execute выплачивает фрилансеру текущий этап. Перевод и сдвиг индекса фиксируются вместе.
func (uc *CompleteMilestoneUseCase) Execute(ctx context.Context, input CompleteMilestoneInput) (*MilestoneResult, error) {
	var (
		result MilestoneResult
		events event.Buffer
	)
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		job, err := uc.jobRepo.FindByID(ctx, input.JobID)
		if err != nil {
			return err
		}
		if !job.IsOwnedBy(input.CallerID) {
			return apperror.ErrUnauthorized.WithDetail("caller", input.CallerID.String())
		}

		index := job.CurrentMilestone
		amount, err := job.CompleteMilestone()
		if err != nil {
			return err
		}

		transfer := entity.NewTransfer(job.ID, *job.FreelancerID, valueobject.TransferMilestone, amount)
		if err := uc.ledger.Credit(ctx, transfer); err != nil {
			return apperror.Ensure(err, apperror.ErrCodeLedger, "ошибка перевода средств")
		}
		if err := uc.jobRepo.Update(ctx, job); err != nil {
			return err
		}

		events.Add(event.Event{
			Type:       event.TypeMilestoneReleased,
			JobID:      job.ID,
			Principal:  *job.FreelancerID,
			Amount:     amount,
			Attributes: map[string]string{"milestone": strconv.Itoa(index)},
		})
		if job.Status == valueobject.JobStatusCompleted {
			events.Add(event.Event{Type: event.TypeJobCompleted, JobID: job.ID, Principal: *job.FreelancerID})
		}
		result = MilestoneResult{Job: job, Index: index, Released: amount}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Funds(result.Job.ID, result.Job.FreelancerID.String(), result.Released).
		WithField("milestone", result.Index).
		Info("этап оплачен")
	events.Flush(uc.emitter)
	return &result, nil
}
