package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
	"github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"
)

type RatingRepositoryAdapter struct {
	conn
}

type ratingRow struct {
	Total     int64     `db:"total"`
	Count     int64     `db:"count"`
	UpdatedAt time.Time `db:"updated_at"`
}

const ensureRatingRowQuery = `
	INSERT INTO ratings (user_id, total, count, updated_at)
	VALUES ($1, 0, 0, NOW())
	ON CONFLICT (user_id) DO NOTHING
`

// readRatingQueries возвращает запросы чтения рейтинга. В транзакции строка сначала
// создаётся, иначе FOR UPDATE нечего блокировать при первой оценке и параллельные
// оценки перезаписывают друг друга.
func (r *RatingRepositoryAdapter) readRatingQueries(ctx context.Context) []string {
	lock := r.lockClause(ctx)
	selectQuery := `SELECT total, count, updated_at FROM ratings WHERE user_id = $1` + lock
	if lock == "" {
		return []string{selectQuery}
	}
	return []string{ensureRatingRowQuery, selectQuery}
}

func (r *RatingRepositoryAdapter) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Rating, error) {
	queries := r.readRatingQueries(ctx)
	ext := r.ext(ctx)
	for _, q := range queries[:len(queries)-1] {
		if _, err := ext.ExecContext(ctx, q, userID); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось подготовить рейтинг")
		}
	}

	var row ratingRow
	if err := sqlx.GetContext(ctx, ext, &row, queries[len(queries)-1], userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.NewRating(userID), nil
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить рейтинг")
	}
	return &entity.Rating{
		UserID:    userID,
		Total:     uint64(row.Total),
		Count:     uint64(row.Count),
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (r *RatingRepositoryAdapter) Save(ctx context.Context, rating *entity.Rating) error {
	query := `
		INSERT INTO ratings (user_id, total, count, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET total = EXCLUDED.total, count = EXCLUDED.count, updated_at = EXCLUDED.updated_at
	`
	_, err := r.ext(ctx).ExecContext(ctx, query, rating.UserID, int64(rating.Total), int64(rating.Count), rating.UpdatedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить рейтинг")
	}
	return nil
}
