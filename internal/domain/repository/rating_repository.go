package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
)

type RatingRepository interface {
	// FindByUserID возвращает пустой рейтинг для пользователя без оценок.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Rating, error)
	Save(ctx context.Context, rating *entity.Rating) error
}
