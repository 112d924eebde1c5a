package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/repository"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"
)

type JobRepositoryAdapter struct {
	conn
}

type jobRow struct {
	ID               int64         `db:"id"`
	ClientID         uuid.UUID     `db:"client_id"`
	Title            string        `db:"title"`
	Description      string        `db:"description"`
	Budget           int64         `db:"budget"`
	Milestones       pq.Int64Array `db:"milestones"`
	CurrentMilestone int           `db:"current_milestone"`
	Status           string        `db:"status"`
	FreelancerID     *uuid.UUID    `db:"freelancer_id"`
	ReleasedAmount   int64         `db:"released_amount"`
	RefundedAmount   int64         `db:"refunded_amount"`
	CreatedAt        time.Time     `db:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at"`
}

func (r jobRow) toEntity() *entity.Job {
	milestones := make(valueobject.MilestoneSchedule, len(r.Milestones))
	for i, m := range r.Milestones {
		milestones[i] = uint64(m)
	}
	return &entity.Job{
		ID:               uint64(r.ID),
		ClientID:         r.ClientID,
		Title:            r.Title,
		Description:      r.Description,
		Budget:           uint64(r.Budget),
		Milestones:       milestones,
		CurrentMilestone: r.CurrentMilestone,
		Status:           valueobject.JobStatus(r.Status),
		FreelancerID:     r.FreelancerID,
		ReleasedAmount:   uint64(r.ReleasedAmount),
		RefundedAmount:   uint64(r.RefundedAmount),
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

const jobColumns = `id, client_id, title, description, budget, milestones, current_milestone, status,
	freelancer_id, released_amount, refunded_amount, created_at, updated_at`

// Create берёт следующий ID из job_counter. Строка счётчика блокируется до конца
// транзакции, поэтому откат не оставляет пропусков.
func (r *JobRepositoryAdapter) Create(ctx context.Context, job *entity.Job) error {
	budget, err := toBigint("budget", job.Budget)
	if err != nil {
		return err
	}
	milestones := make(pq.Int64Array, len(job.Milestones))
	for i, m := range job.Milestones {
		if milestones[i], err = toBigint("milestone", m); err != nil {
			return err
		}
	}

	ext := r.ext(ctx)
	var id int64
	if err := sqlx.GetContext(ctx, ext, &id, `UPDATE job_counter SET value = value + 1 RETURNING value`); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить ID заказа")
	}

	query := `
		INSERT INTO jobs (id, client_id, title, description, budget, milestones, current_milestone, status,
			freelancer_id, released_amount, refunded_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = ext.ExecContext(ctx, query,
		id,
		job.ClientID,
		job.Title,
		job.Description,
		budget,
		milestones,
		job.CurrentMilestone,
		string(job.Status),
		job.FreelancerID,
		int64(job.ReleasedAmount),
		int64(job.RefundedAmount),
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать заказ")
	}

	job.ID = uint64(id)
	return nil
}

func (r *JobRepositoryAdapter) Update(ctx context.Context, job *entity.Job) error {
	query := `
		UPDATE jobs
		SET current_milestone = $2, status = $3, freelancer_id = $4,
		    released_amount = $5, refunded_amount = $6, updated_at = $7
		WHERE id = $1
	`
	result, err := r.ext(ctx).ExecContext(ctx, query,
		int64(job.ID),
		job.CurrentMilestone,
		string(job.Status),
		job.FreelancerID,
		int64(job.ReleasedAmount),
		int64(job.RefundedAmount),
		job.UpdatedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить заказ")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить результат обновления")
	}
	if rows == 0 {
		return apperror.ErrJobNotFound.WithDetail("job_id", job.ID)
	}
	return nil
}

func (r *JobRepositoryAdapter) FindByID(ctx context.Context, id uint64) (*entity.Job, error) {
	if id == 0 || id > uint64(1<<63-1) {
		return nil, apperror.ErrJobNotFound.WithDetail("job_id", id)
	}

	var row jobRow
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1` + r.lockClause(ctx)
	if err := sqlx.GetContext(ctx, r.ext(ctx), &row, query, int64(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrJobNotFound.WithDetail("job_id", id)
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить заказ")
	}
	return row.toEntity(), nil
}

func (r *JobRepositoryAdapter) List(ctx context.Context, filter repository.JobFilter) ([]*entity.Job, int, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", len(args)))
	}
	if filter.FreelancerID != nil {
		args = append(args, *filter.FreelancerID)
		conditions = append(conditions, fmt.Sprintf("freelancer_id = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	ext := r.ext(ctx)
	var total int
	if err := sqlx.GetContext(ctx, ext, &total, `SELECT COUNT(*) FROM jobs`+where, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать заказы")
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM jobs%s ORDER BY id LIMIT $%d OFFSET $%d`, jobColumns, where, len(args)-1, len(args))

	var rows []jobRow
	if err := sqlx.SelectContext(ctx, ext, &rows, query, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить список заказов")
	}

	jobs := make([]*entity.Job, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, row.toEntity())
	}
	return jobs, total, nil
}
