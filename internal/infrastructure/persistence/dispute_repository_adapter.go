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

type DisputeRepositoryAdapter struct {
	conn
}

type disputeRow struct {
	JobID        int64      `db:"job_id"`
	InitiatorID  uuid.UUID  `db:"initiator_id"`
	Reason       string     `db:"reason"`
	Resolved     bool       `db:"resolved"`
	VotesRelease int64      `db:"votes_release"`
	VotesRefund  int64      `db:"votes_refund"`
	Outcome      string     `db:"outcome"`
	ResolvedBy   *uuid.UUID `db:"resolved_by"`
	CreatedAt    time.Time  `db:"created_at"`
	ResolvedAt   *time.Time `db:"resolved_at"`
}

type voteRow struct {
	VoterID    uuid.UUID `db:"voter_id"`
	ForRelease bool      `db:"for_release"`
	CastAt     time.Time `db:"cast_at"`
}

func (r *DisputeRepositoryAdapter) Create(ctx context.Context, d *entity.Dispute) error {
	query := `
		INSERT INTO disputes (job_id, initiator_id, reason, resolved, votes_release, votes_refund, outcome, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.ext(ctx).ExecContext(ctx, query,
		int64(d.JobID),
		d.InitiatorID,
		d.Reason,
		d.Resolved,
		int64(d.VotesRelease),
		int64(d.VotesRefund),
		string(d.Outcome),
		d.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return apperror.ErrAlreadyDisputed.WithDetail("job_id", d.JobID)
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать спор")
	}
	return nil
}

// Update сохраняет счётчики и исход. Голоса только добавляются, поэтому вставляются с ON CONFLICT DO NOTHING.
func (r *DisputeRepositoryAdapter) Update(ctx context.Context, d *entity.Dispute) error {
	ext := r.ext(ctx)
	query := `
		UPDATE disputes
		SET resolved = $2, votes_release = $3, votes_refund = $4, outcome = $5, resolved_by = $6, resolved_at = $7
		WHERE job_id = $1
	`
	_, err := ext.ExecContext(ctx, query,
		int64(d.JobID),
		d.Resolved,
		int64(d.VotesRelease),
		int64(d.VotesRefund),
		string(d.Outcome),
		d.ResolvedBy,
		d.ResolvedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить спор")
	}

	for _, v := range d.Votes {
		_, err := ext.ExecContext(ctx, `
			INSERT INTO dispute_votes (job_id, voter_id, for_release, cast_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (job_id, voter_id) DO NOTHING
		`, int64(d.JobID), v.VoterID, v.ForRelease, v.CastAt)
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить голос")
		}
	}
	return nil
}

func (r *DisputeRepositoryAdapter) FindByJobID(ctx context.Context, jobID uint64) (*entity.Dispute, error) {
	ext := r.ext(ctx)

	var row disputeRow
	query := `
		SELECT job_id, initiator_id, reason, resolved, votes_release, votes_refund, outcome, resolved_by, created_at, resolved_at
		FROM disputes WHERE job_id = $1
	` + r.lockClause(ctx)
	if err := sqlx.GetContext(ctx, ext, &row, query, int64(jobID)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrDisputeNotFound.WithDetail("job_id", jobID)
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить спор")
	}

	var votes []voteRow
	err := sqlx.SelectContext(ctx, ext, &votes,
		`SELECT voter_id, for_release, cast_at FROM dispute_votes WHERE job_id = $1 ORDER BY cast_at, voter_id`, int64(jobID))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить голоса")
	}

	d := &entity.Dispute{
		JobID:        uint64(row.JobID),
		InitiatorID:  row.InitiatorID,
		Reason:       row.Reason,
		Resolved:     row.Resolved,
		VotesRelease: uint64(row.VotesRelease),
		VotesRefund:  uint64(row.VotesRefund),
		Outcome:      valueobject.DisputeOutcome(row.Outcome),
		ResolvedBy:   row.ResolvedBy,
		CreatedAt:    row.CreatedAt,
		ResolvedAt:   row.ResolvedAt,
		Votes:        make([]entity.Vote, 0, len(votes)),
	}
	for _, v := range votes {
		d.Votes = append(d.Votes, entity.Vote{VoterID: v.VoterID, ForRelease: v.ForRelease, CastAt: v.CastAt})
	}
	return d, nil
}
