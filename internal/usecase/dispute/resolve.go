package dispute

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/event"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/policy"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/repository"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/escrow-marketplace/internal/logger"
	"github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"
)

type ResolveInput struct {
	JobID    uint64
	CallerID uuid.UUID
	// Если Outcome пуст, исход определяется подсчётом голосов.
	Outcome valueobject.DisputeOutcome
}

type ResolveUseCase struct {
	settlement
	tx         repository.Transactor
	resolution policy.Resolution
	emitter    event.Emitter
}

func NewResolveUseCase(
	jobRepo repository.JobRepository,
	disputeRepo repository.DisputeRepository,
	ledger repository.Ledger,
	tx repository.Transactor,
	resolution policy.Resolution,
	emitter event.Emitter,
) *ResolveUseCase {
	return &ResolveUseCase{
		settlement: settlement{jobRepo: jobRepo, disputeRepo: disputeRepo, ledger: ledger},
		tx:         tx,
		resolution: resolution,
		emitter:    emitter,
	}
}

// Execute закрывает спор решением уполномоченного участника.
func (uc *ResolveUseCase) Execute(ctx context.Context, input ResolveInput) (*entity.Dispute, error) {
	var (
		dispute *entity.Dispute
		res     settleResult
		events  event.Buffer
	)
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		dispute, err = uc.disputeRepo.FindByJobID(ctx, input.JobID)
		if err != nil {
			return err
		}
		if dispute.Resolved {
			return apperror.ErrDisputeResolved.WithDetail("job_id", dispute.JobID)
		}
		if !uc.resolution.CanResolve(input.CallerID) {
			return apperror.ErrUnauthorized.WithDetail("caller", input.CallerID.String())
		}

		job, err := uc.jobRepo.FindByID(ctx, input.JobID)
		if err != nil {
			return err
		}

		outcome := input.Outcome
		if outcome == valueobject.DisputeOutcomeNone {
			outcome = uc.resolution.Outcome(dispute)
		}
		caller := input.CallerID
		res, err = uc.settle(ctx, job, dispute, outcome, &caller, &events)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Funds(dispute.JobID, res.recipient.String(), res.amount).
		WithField("outcome", string(res.outcome)).
		WithField("resolved_by", input.CallerID.String()).
		Info("спор закрыт решением арбитра")
	events.Flush(uc.emitter)
	return dispute, nil
}
