package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
)

// JobRepository хранит заказы. Create назначает следующий ID из счётчика без пропусков.
type JobRepository interface {
	Create(ctx context.Context, job *entity.Job) error
	Update(ctx context.Context, job *entity.Job) error
	FindByID(ctx context.Context, id uint64) (*entity.Job, error)
	List(ctx context.Context, filter JobFilter) ([]*entity.Job, int, error)
}

type JobFilter struct {
	Status       string
	ClientID     *uuid.UUID
	FreelancerID *uuid.UUID
	Limit        int
	Offset       int
}

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Normalized приводит limit и offset к допустимым значениям.
func (f JobFilter) Normalized() JobFilter {
	if f.Limit <= 0 || f.Limit > MaxListLimit {
		f.Limit = DefaultListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
