package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
)

type BidRepository interface {
	Create(ctx context.Context, bid *entity.Bid) error
	Update(ctx context.Context, bid *entity.Bid) error
	// FindByJobAndFreelancer возвращает apperror.ErrBidNotFound, если отклика нет.
	FindByJobAndFreelancer(ctx context.Context, jobID uint64, freelancerID uuid.UUID) (*entity.Bid, error)
	ListByJob(ctx context.Context, jobID uint64) ([]*entity.Bid, error)
}
