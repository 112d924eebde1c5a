package dispute

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/event"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/repository"
	"github.com/ignatzorin/escrow-marketplace/internal/logger"
	"github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/escrow-marketplace/internal/validation"
)

type RaiseDisputeInput struct {
	JobID    uint64
	CallerID uuid.UUID
	Reason   string
}

type RaiseDisputeUseCase struct {
	jobRepo     repository.JobRepository
	disputeRepo repository.DisputeRepository
	tx          repository.Transactor
	limits      validation.Limits
	emitter     event.Emitter
}

func NewRaiseDisputeUseCase(
	jobRepo repository.JobRepository,
	disputeRepo repository.DisputeRepository,
	tx repository.Transactor,
	limits validation.Limits,
	emitter event.Emitter,
) *RaiseDisputeUseCase {
	return &RaiseDisputeUseCase{
		jobRepo:     jobRepo,
		disputeRepo: disputeRepo,
		tx:          tx,
		limits:      limits,
		emitter:     emitter,
	}
}

// Execute открывает спор по заказу в работе. Открыть спор может клиент или назначенный фрилансер.
func (uc *RaiseDisputeUseCase) Execute(ctx context.Context, input RaiseDisputeInput) (*entity.Dispute, error) {
	if err := uc.limits.ValidateReason(input.Reason); err != nil {
		return nil, err
	}

	var (
		dispute *entity.Dispute
		events  event.Buffer
	)
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		job, err := uc.jobRepo.FindByID(ctx, input.JobID)
		if err != nil {
			return err
		}
		if !job.IsParticipant(input.CallerID) {
			return apperror.ErrUnauthorized.WithDetail("caller", input.CallerID.String())
		}
		if err := job.OpenDispute(); err != nil {
			return err
		}

		dispute = entity.NewDispute(job.ID, input.CallerID, input.Reason)
		if err := uc.disputeRepo.Create(ctx, dispute); err != nil {
			return err
		}
		if err := uc.jobRepo.Update(ctx, job); err != nil {
			return err
		}
		events.Add(event.Event{Type: event.TypeDisputeRaised, JobID: job.ID, Principal: input.CallerID, Amount: job.Escrowed()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.WithField("job_id", dispute.JobID).WithField("initiator", input.CallerID.String()).Info("открыт спор по заказу")
	events.Flush(uc.emitter)
	return dispute, nil
}

type GetDisputeUseCase struct {
	disputeRepo repository.DisputeRepository
}

func NewGetDisputeUseCase(disputeRepo repository.DisputeRepository) *GetDisputeUseCase {
	return &GetDisputeUseCase{disputeRepo: disputeRepo}
}

func (uc *GetDisputeUseCase) Execute(ctx context.Context, jobID uint64) (*entity.Dispute, error) {
	return uc.disputeRepo.FindByJobID(ctx, jobID)
}
