package bid

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/event"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/repository"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"
)

type AcceptBidInput struct {
	JobID        uint64
	ClientID     uuid.UUID
	FreelancerID uuid.UUID
}

type AcceptBidUseCase struct {
	jobRepo repository.JobRepository
	bidRepo repository.BidRepository
	tx      repository.Transactor
	emitter event.Emitter
}

func NewAcceptBidUseCase(
	jobRepo repository.JobRepository,
	bidRepo repository.BidRepository,
	tx repository.Transactor,
	emitter event.Emitter,
) *AcceptBidUseCase {
	return &AcceptBidUseCase{
		jobRepo: jobRepo,
		bidRepo: bidRepo,
		tx:      tx,
		emitter: emitter,
	}
}

// Execute принимает отклик фрилансера, отклоняет остальные ожидающие и переводит заказ в работу.
func (uc *AcceptBidUseCase) Execute(ctx context.Context, input AcceptBidInput) (*entity.Job, error) {
	var (
		job    *entity.Job
		events event.Buffer
	)
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		job, err = uc.jobRepo.FindByID(ctx, input.JobID)
		if err != nil {
			return err
		}
		if !job.IsOwnedBy(input.ClientID) {
			return apperror.ErrUnauthorized.WithDetail("caller", input.ClientID.String())
		}
		if job.Status != valueobject.JobStatusOpen {
			return apperror.ErrJobNotOpen.WithDetail("status", string(job.Status))
		}

		chosen, err := uc.bidRepo.FindByJobAndFreelancer(ctx, job.ID, input.FreelancerID)
		if err != nil {
			return err
		}
		if !chosen.IsPending() {
			return apperror.ErrBidNotFound.WithDetail("freelancer", input.FreelancerID.String())
		}

		bids, err := uc.bidRepo.ListByJob(ctx, job.ID)
		if err != nil {
			return err
		}
		for _, b := range bids {
			if !b.IsPending() {
				continue
			}
			if b.FreelancerID == input.FreelancerID {
				err = b.Accept()
			} else {
				err = b.Reject()
			}
			if err != nil {
				return err
			}
			if err := uc.bidRepo.Update(ctx, b); err != nil {
				return err
			}
		}

		if err := job.AssignFreelancer(input.FreelancerID); err != nil {
			return err
		}
		if err := uc.jobRepo.Update(ctx, job); err != nil {
			return err
		}
		events.Add(event.Event{Type: event.TypeBidAccepted, JobID: job.ID, Principal: input.FreelancerID, Amount: chosen.Amount})
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Flush(uc.emitter)
	return job, nil
}
