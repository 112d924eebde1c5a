package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"
)

// uniqueViolation: код ошибки PostgreSQL для нарушения уникальности.
const uniqueViolation = "23505"

type BidRepositoryAdapter struct {
	conn
}

type bidRow struct {
	JobID        int64     `db:"job_id"`
	FreelancerID uuid.UUID `db:"freelancer_id"`
	Amount       int64     `db:"amount"`
	Proposal     string    `db:"proposal"`
	Status       string    `db:"status"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r bidRow) toEntity() *entity.Bid {
	return &entity.Bid{
		JobID:        uint64(r.JobID),
		FreelancerID: r.FreelancerID,
		Amount:       uint64(r.Amount),
		Proposal:     r.Proposal,
		Status:       valueobject.BidStatus(r.Status),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func (r *BidRepositoryAdapter) Create(ctx context.Context, bid *entity.Bid) error {
	amount, err := toBigint("amount", bid.Amount)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO bids (job_id, freelancer_id, amount, proposal, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.ext(ctx).ExecContext(ctx, query,
		int64(bid.JobID),
		bid.FreelancerID,
		amount,
		bid.Proposal,
		string(bid.Status),
		bid.CreatedAt,
		bid.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return apperror.ErrAlreadyBidded.WithDetail("freelancer", bid.FreelancerID.String())
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить предложение")
	}
	return nil
}

func (r *BidRepositoryAdapter) Update(ctx context.Context, bid *entity.Bid) error {
	query := `UPDATE bids SET status = $3, updated_at = $4 WHERE job_id = $1 AND freelancer_id = $2`
	_, err := r.ext(ctx).ExecContext(ctx, query, int64(bid.JobID), bid.FreelancerID, string(bid.Status), bid.UpdatedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить предложение")
	}
	return nil
}

func (r *BidRepositoryAdapter) FindByJobAndFreelancer(ctx context.Context, jobID uint64, freelancerID uuid.UUID) (*entity.Bid, error) {
	var row bidRow
	query := `
		SELECT job_id, freelancer_id, amount, proposal, status, created_at, updated_at
		FROM bids WHERE job_id = $1 AND freelancer_id = $2
	` + r.lockClause(ctx)
	if err := sqlx.GetContext(ctx, r.ext(ctx), &row, query, int64(jobID), freelancerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrBidNotFound.WithDetail("freelancer", freelancerID.String())
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить предложение")
	}
	return row.toEntity(), nil
}

func (r *BidRepositoryAdapter) ListByJob(ctx context.Context, jobID uint64) ([]*entity.Bid, error) {
	var rows []bidRow
	query := `
		SELECT job_id, freelancer_id, amount, proposal, status, created_at, updated_at
		FROM bids WHERE job_id = $1
		ORDER BY created_at, freelancer_id
	`
	if err := sqlx.SelectContext(ctx, r.ext(ctx), &rows, query, int64(jobID)); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить предложения")
	}

	bids := make([]*entity.Bid, 0, len(rows))
	for _, row := range rows {
		bids = append(bids, row.toEntity())
	}
	return bids, nil
}
