package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/repository"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"
)

type jobRecord struct {
	ID               uint64     `json:"id"`
	ClientID         uuid.UUID  `json:"client_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Budget           uint64     `json:"budget"`
	Milestones       []uint64   `json:"milestones"`
	CurrentMilestone int        `json:"current_milestone"`
	Status           string     `json:"status"`
	FreelancerID     *uuid.UUID `json:"freelancer_id,omitempty"`
	ReleasedAmount   uint64     `json:"released_amount"`
	RefundedAmount   uint64     `json:"refunded_amount"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func newJobRecord(j *entity.Job) jobRecord {
	return jobRecord{
		ID:               j.ID,
		ClientID:         j.ClientID,
		Title:            j.Title,
		Description:      j.Description,
		Budget:           j.Budget,
		Milestones:       []uint64(j.Milestones),
		CurrentMilestone: j.CurrentMilestone,
		Status:           string(j.Status),
		FreelancerID:     j.FreelancerID,
		ReleasedAmount:   j.ReleasedAmount,
		RefundedAmount:   j.RefundedAmount,
		CreatedAt:        j.CreatedAt,
		UpdatedAt:        j.UpdatedAt,
	}
}

func (r jobRecord) toEntity() *entity.Job {
	return &entity.Job{
		ID:               r.ID,
		ClientID:         r.ClientID,
		Title:            r.Title,
		Description:      r.Description,
		Budget:           r.Budget,
		Milestones:       valueobject.MilestoneSchedule(r.Milestones),
		CurrentMilestone: r.CurrentMilestone,
		Status:           valueobject.JobStatus(r.Status),
		FreelancerID:     r.FreelancerID,
		ReleasedAmount:   r.ReleasedAmount,
		RefundedAmount:   r.RefundedAmount,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

type JobRepository struct {
	store *Store
}

func (r *JobRepository) Create(ctx context.Context, job *entity.Job) error {
	return r.store.run(ctx, func(t *tx) error {
		id, err := t.nextSequence("job")
		if err != nil {
			return err
		}
		job.ID = id
		return t.putJSON(jobKey(id), newJobRecord(job))
	})
}

func (r *JobRepository) Update(ctx context.Context, job *entity.Job) error {
	return r.store.run(ctx, func(t *tx) error {
		var existing jobRecord
		found, err := getJSON(t, jobKey(job.ID), &existing)
		if err != nil {
			return err
		}
		if !found {
			return apperror.ErrJobNotFound.WithDetail("job_id", job.ID)
		}
		return t.putJSON(jobKey(job.ID), newJobRecord(job))
	})
}

func (r *JobRepository) FindByID(ctx context.Context, id uint64) (*entity.Job, error) {
	var rec jobRecord
	found, err := getJSON(r.store.reader(ctx), jobKey(id), &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperror.ErrJobNotFound.WithDetail("job_id", id)
	}
	return rec.toEntity(), nil
}

// List возвращает заказы по возрастанию ID и общее число подходящих под фильтр.
func (r *JobRepository) List(ctx context.Context, filter repository.JobFilter) ([]*entity.Job, int, error) {
	var matched []*entity.Job
	err := iterateJSON(r.store.reader(ctx), "job/", func(rec *jobRecord) {
		job := rec.toEntity()
		if filter.Status != "" && string(job.Status) != filter.Status {
			return
		}
		if filter.ClientID != nil && job.ClientID != *filter.ClientID {
			return
		}
		if filter.FreelancerID != nil && !job.IsAssignedTo(*filter.FreelancerID) {
			return
		}
		matched = append(matched, job)
	})
	if err != nil {
		return nil, 0, err
	}

	total := len(matched)
	if filter.Offset > 0 {
		if filter.Offset >= total {
			return []*entity.Job{}, total, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

type bidRecord struct {
	JobID        uint64    `json:"job_id"`
	FreelancerID uuid.UUID `json:"freelancer_id"`
	Amount       uint64    `json:"amount"`
	Proposal     string    `json:"proposal"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (r bidRecord) toEntity() *entity.Bid {
	return &entity.Bid{
		JobID:        r.JobID,
		FreelancerID: r.FreelancerID,
		Amount:       r.Amount,
		Proposal:     r.Proposal,
		Status:       valueobject.BidStatus(r.Status),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func newBidRecord(b *entity.Bid) bidRecord {
	return bidRecord{
		JobID:        b.JobID,
		FreelancerID: b.FreelancerID,
		Amount:       b.Amount,
		Proposal:     b.Proposal,
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func bidKey(jobID uint64, freelancerID uuid.UUID) string {
	return bidPrefix(jobID) + freelancerID.String()
}

type BidRepository struct {
	store *Store
}

func (r *BidRepository) Create(ctx context.Context, bid *entity.Bid) error {
	return r.store.run(ctx, func(t *tx) error {
		var existing bidRecord
		found, err := getJSON(t, bidKey(bid.JobID, bid.FreelancerID), &existing)
		if err != nil {
			return err
		}
		if found {
			return apperror.ErrAlreadyBidded.WithDetail("freelancer", bid.FreelancerID.String())
		}
		return t.putJSON(bidKey(bid.JobID, bid.FreelancerID), newBidRecord(bid))
	})
}

func (r *BidRepository) Update(ctx context.Context, bid *entity.Bid) error {
	return r.store.run(ctx, func(t *tx) error {
		return t.putJSON(bidKey(bid.JobID, bid.FreelancerID), newBidRecord(bid))
	})
}

func (r *BidRepository) FindByJobAndFreelancer(ctx context.Context, jobID uint64, freelancerID uuid.UUID) (*entity.Bid, error) {
	var rec bidRecord
	found, err := getJSON(r.store.reader(ctx), bidKey(jobID, freelancerID), &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperror.ErrBidNotFound.WithDetail("freelancer", freelancerID.String())
	}
	return rec.toEntity(), nil
}

// ListByJob возвращает отклики в порядке подачи.
func (r *BidRepository) ListByJob(ctx context.Context, jobID uint64) ([]*entity.Bid, error) {
	bids := make([]*entity.Bid, 0)
	err := iterateJSON(r.store.reader(ctx), bidPrefix(jobID), func(rec *bidRecord) {
		bids = append(bids, rec.toEntity())
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(bids, func(i, j int) bool {
		return bids[i].CreatedAt.Before(bids[j].CreatedAt)
	})
	return bids, nil
}

type voteRecord struct {
	VoterID    uuid.UUID `json:"voter_id"`
	ForRelease bool      `json:"for_release"`
	CastAt     time.Time `json:"cast_at"`
}

type disputeRecord struct {
	JobID        uint64       `json:"job_id"`
	InitiatorID  uuid.UUID    `json:"initiator_id"`
	Reason       string       `json:"reason"`
	Resolved     bool         `json:"resolved"`
	VotesRelease uint64       `json:"votes_release"`
	VotesRefund  uint64       `json:"votes_refund"`
	Votes        []voteRecord `json:"votes"`
	Outcome      string       `json:"outcome,omitempty"`
	ResolvedBy   *uuid.UUID   `json:"resolved_by,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	ResolvedAt   *time.Time   `json:"resolved_at,omitempty"`
}

func newDisputeRecord(d *entity.Dispute) disputeRecord {
	votes := make([]voteRecord, 0, len(d.Votes))
	for _, v := range d.Votes {
		votes = append(votes, voteRecord{VoterID: v.VoterID, ForRelease: v.ForRelease, CastAt: v.CastAt})
	}
	return disputeRecord{
		JobID:        d.JobID,
		InitiatorID:  d.InitiatorID,
		Reason:       d.Reason,
		Resolved:     d.Resolved,
		VotesRelease: d.VotesRelease,
		VotesRefund:  d.VotesRefund,
		Votes:        votes,
		Outcome:      string(d.Outcome),
		ResolvedBy:   d.ResolvedBy,
		CreatedAt:    d.CreatedAt,
		ResolvedAt:   d.ResolvedAt,
	}
}

func (r disputeRecord) toEntity() *entity.Dispute {
	votes := make([]entity.Vote, 0, len(r.Votes))
	for _, v := range r.Votes {
		votes = append(votes, entity.Vote{VoterID: v.VoterID, ForRelease: v.ForRelease, CastAt: v.CastAt})
	}
	return &entity.Dispute{
		JobID:        r.JobID,
		InitiatorID:  r.InitiatorID,
		Reason:       r.Reason,
		Resolved:     r.Resolved,
		VotesRelease: r.VotesRelease,
		VotesRefund:  r.VotesRefund,
		Votes:        votes,
		Outcome:      valueobject.DisputeOutcome(r.Outcome),
		ResolvedBy:   r.ResolvedBy,
		CreatedAt:    r.CreatedAt,
		ResolvedAt:   r.ResolvedAt,
	}
}

type DisputeRepository struct {
	store *Store
}

func (r *DisputeRepository) Create(ctx context.Context, dispute *entity.Dispute) error {
	return r.store.run(ctx, func(t *tx) error {
		var existing disputeRecord
		found, err := getJSON(t, disputeKey(dispute.JobID), &existing)
		if err != nil {
			return err
		}
		if found {
			return apperror.ErrAlreadyDisputed.WithDetail("job_id", dispute.JobID)
		}
		return t.putJSON(disputeKey(dispute.JobID), newDisputeRecord(dispute))
	})
}

func (r *DisputeRepository) Update(ctx context.Context, dispute *entity.Dispute) error {
	return r.store.run(ctx, func(t *tx) error {
		return t.putJSON(disputeKey(dispute.JobID), newDisputeRecord(dispute))
	})
}

func (r *DisputeRepository) FindByJobID(ctx context.Context, jobID uint64) (*entity.Dispute, error) {
	var rec disputeRecord
	found, err := getJSON(r.store.reader(ctx), disputeKey(jobID), &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperror.ErrDisputeNotFound.WithDetail("job_id", jobID)
	}
	return rec.toEntity(), nil
}

type ratingRecord struct {
	Total     uint64    `json:"total"`
	Count     uint64    `json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RatingRepository struct {
	store *Store
}

func ratingKey(userID uuid.UUID) string {
	return "rating/" + userID.String()
}

func (r *RatingRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Rating, error) {
	var rec ratingRecord
	found, err := getJSON(r.store.reader(ctx), ratingKey(userID), &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return entity.NewRating(userID), nil
	}
	return &entity.Rating{UserID: userID, Total: rec.Total, Count: rec.Count, UpdatedAt: rec.UpdatedAt}, nil
}

func (r *RatingRepository) Save(ctx context.Context, rating *entity.Rating) error {
	return r.store.run(ctx, func(t *tx) error {
		return t.putJSON(ratingKey(rating.UserID), ratingRecord{
			Total:     rating.Total,
			Count:     rating.Count,
			UpdatedAt: rating.UpdatedAt,
		})
	})
}

func iterateJSON[T any](r reader, prefix string, fn func(rec *T)) error {
	return r.Iterate([]byte(prefix), func(key, value []byte) error {
		var rec T
		if err := json.Unmarshal(value, &rec); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		fn(&rec)
		return nil
	})
}
