package bid

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/event"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/repository"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/escrow-marketplace/internal/validation"
)

type PlaceBidInput struct {
	JobID        uint64
	FreelancerID uuid.UUID
	Amount       uint64
	Proposal     string
}

type PlaceBidUseCase struct {
	jobRepo repository.JobRepository
	bidRepo repository.BidRepository
	tx      repository.Transactor
	limits  validation.Limits
	emitter event.Emitter
}

func NewPlaceBidUseCase(
	jobRepo repository.JobRepository,
	bidRepo repository.BidRepository,
	tx repository.Transactor,
	limits validation.Limits,
	emitter event.Emitter,
) *PlaceBidUseCase {
	return &PlaceBidUseCase{
		jobRepo: jobRepo,
		bidRepo: bidRepo,
		tx:      tx,
		limits:  limits,
		emitter: emitter,
	}
}

func (uc *PlaceBidUseCase) Execute(ctx context.Context, input PlaceBidInput) (*entity.Bid, error) {
	if err := uc.limits.ValidateProposal(input.Proposal); err != nil {
		return nil, err
	}

	var (
		bid    *entity.Bid
		events event.Buffer
	)
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		job, err := uc.jobRepo.FindByID(ctx, input.JobID)
		if err != nil {
			return err
		}
		if job.Status != valueobject.JobStatusOpen {
			return apperror.ErrJobNotOpen.WithDetail("status", string(job.Status))
		}
		if job.IsOwnedBy(input.FreelancerID) {
			return apperror.New(apperror.ErrCodeBadRequest, "нельзя откликнуться на собственный заказ")
		}

		existing, err := uc.bidRepo.FindByJobAndFreelancer(ctx, input.JobID, input.FreelancerID)
		if err != nil && !apperror.HasCode(err, apperror.ErrCodeBidNotFound) {
			return err
		}
		if existing != nil {
			return apperror.ErrAlreadyBidded.WithDetail("freelancer", input.FreelancerID.String())
		}

		bid, err = entity.NewBid(input.JobID, input.FreelancerID, input.Amount, input.Proposal)
		if err != nil {
			return err
		}
		if err := uc.bidRepo.Create(ctx, bid); err != nil {
			return apperror.Ensure(err, apperror.ErrCodeDatabaseError, "не удалось сохранить предложение")
		}
		events.Add(event.Event{Type: event.TypeBidPlaced, JobID: job.ID, Principal: input.FreelancerID, Amount: input.Amount})
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Flush(uc.emitter)
	return bid, nil
}
