package job

import (
	"context"

	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/repository"
)

type GetJobUseCase struct {
	jobRepo repository.JobRepository
}

func NewGetJobUseCase(jobRepo repository.JobRepository) *GetJobUseCase {
	return &GetJobUseCase{jobRepo: jobRepo}
}

func (uc *GetJobUseCase) Execute(ctx context.Context, id uint64) (*entity.Job, error) {
	return uc.jobRepo.FindByID(ctx, id)
}

type ListJobsUseCase struct {
	jobRepo repository.JobRepository
}

func NewListJobsUseCase(jobRepo repository.JobRepository) *ListJobsUseCase {
	return &ListJobsUseCase{jobRepo: jobRepo}
}

func (uc *ListJobsUseCase) Execute(ctx context.Context, filter repository.JobFilter) ([]*entity.Job, int, error) {
	return uc.jobRepo.List(ctx, filter.Normalized())
}
