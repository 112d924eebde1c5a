package bid

import (
	"context"

	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/repository"
)

type ListBidsUseCase struct {
	jobRepo repository.JobRepository
	bidRepo repository.BidRepository
}

func NewListBidsUseCase(jobRepo repository.JobRepository, bidRepo repository.BidRepository) *ListBidsUseCase {
	return &ListBidsUseCase{jobRepo: jobRepo, bidRepo: bidRepo}
}

// Execute возвращает все отклики заказа в порядке подачи.
func (uc *ListBidsUseCase) Execute(ctx context.Context, jobID uint64) ([]*entity.Bid, error) {
	if _, err := uc.jobRepo.FindByID(ctx, jobID); err != nil {
		return nil, err
	}
	return uc.bidRepo.ListByJob(ctx, jobID)
}
