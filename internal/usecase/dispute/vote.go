package dispute

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/event"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/policy"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/repository"
	"github.com/ignatzorin/escrow-marketplace/internal/logger"
	"github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"
)

type VoteInput struct {
	JobID      uint64
	VoterID    uuid.UUID
	ForRelease bool
}

type VoteUseCase struct {
	settlement
	tx          repository.Transactor
	eligibility policy.VoterEligibility
	resolution  policy.Resolution
	emitter     event.Emitter
}

func NewVoteUseCase(
	jobRepo repository.JobRepository,
	disputeRepo repository.DisputeRepository,
	ledger repository.Ledger,
	tx repository.Transactor,
	eligibility policy.VoterEligibility,
	resolution policy.Resolution,
	emitter event.Emitter,
) *VoteUseCase {
	return &VoteUseCase{
		settlement:  settlement{jobRepo: jobRepo, disputeRepo: disputeRepo, ledger: ledger},
		tx:          tx,
		eligibility: eligibility,
		resolution:  resolution,
		emitter:     emitter,
	}
}

// Execute учитывает голос. Если набран кворум, спор закрывается в той же транзакции.
func (uc *VoteUseCase) Execute(ctx context.Context, input VoteInput) (*entity.Dispute, error) {
	var (
		dispute *entity.Dispute
		settled *settleResult
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

		job, err := uc.jobRepo.FindByID(ctx, input.JobID)
		if err != nil {
			return err
		}
		if !uc.eligibility.CanVote(input.VoterID, job, dispute) {
			return apperror.ErrUnauthorized.WithDetail("voter", input.VoterID.String())
		}
		if err := dispute.CastVote(input.VoterID, input.ForRelease); err != nil {
			return err
		}
		events.Add(event.Event{
			Type:       event.TypeDisputeVoted,
			JobID:      job.ID,
			Principal:  input.VoterID,
			Attributes: map[string]string{"release": strconv.FormatBool(input.ForRelease)},
		})

		if !uc.resolution.QuorumReached(dispute) {
			return uc.disputeRepo.Update(ctx, dispute)
		}
		res, err := uc.settle(ctx, job, dispute, uc.resolution.Outcome(dispute), nil, &events)
		if err != nil {
			return err
		}
		settled = &res
		return nil
	})
	if err != nil {
		return nil, err
	}

	if settled != nil {
		logger.Funds(dispute.JobID, settled.recipient.String(), settled.amount).
			WithField("outcome", string(settled.outcome)).
			Info("спор закрыт по кворуму")
	}
	events.Flush(uc.emitter)
	return dispute, nil
}
