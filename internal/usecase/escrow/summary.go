package escrow

import (
	"context"

	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/repository"
)

type GetEscrowSummaryUseCase struct {
	jobRepo repository.JobRepository
}

func NewGetEscrowSummaryUseCase(jobRepo repository.JobRepository) *GetEscrowSummaryUseCase {
	return &GetEscrowSummaryUseCase{jobRepo: jobRepo}
}

func (uc *GetEscrowSummaryUseCase) Execute(ctx context.Context, jobID uint64) (entity.EscrowSummary, error) {
	job, err := uc.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return entity.EscrowSummary{}, err
	}
	return entity.SummarizeEscrow(job), nil
}

type ListTransfersUseCase struct {
	jobRepo repository.JobRepository
	ledger  repository.Ledger
}

func NewListTransfersUseCase(jobRepo repository.JobRepository, ledger repository.Ledger) *ListTransfersUseCase {
	return &ListTransfersUseCase{jobRepo: jobRepo, ledger: ledger}
}

// Execute возвращает журнал переводов заказа в порядке выполнения.
func (uc *ListTransfersUseCase) Execute(ctx context.Context, jobID uint64) ([]entity.Transfer, error) {
	if _, err := uc.jobRepo.FindByID(ctx, jobID); err != nil {
		return nil, err
	}
	return uc.ledger.ListTransfers(ctx, jobID)
}
