package repository

import (
	"context"

	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
)

type DisputeRepository interface {
	Create(ctx context.Context, dispute *entity.Dispute) error
	Update(ctx context.Context, dispute *entity.Dispute) error
	FindByJobID(ctx context.Context, jobID uint64) (*entity.Dispute, error)
}
