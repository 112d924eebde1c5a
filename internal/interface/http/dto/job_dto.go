package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
)

type PostJobRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Budget      uint64   `json:"budget"`
	Milestones  []uint64 `json:"milestones"`
}

type JobResponse struct {
	ID               uint64     `json:"id"`
	ClientID         uuid.UUID  `json:"client_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Budget           uint64     `json:"budget"`
	Milestones       []uint64   `json:"milestones"`
	CurrentMilestone int        `json:"current_milestone"`
	Status           string     `json:"status"`
	FreelancerID     *uuid.UUID `json:"freelancer_id"`
	ReleasedAmount   uint64     `json:"released_amount"`
	RefundedAmount   uint64     `json:"refunded_amount"`
	Escrowed         uint64     `json:"escrowed"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type MilestoneResponse struct {
	Job            JobResponse `json:"job"`
	MilestoneIndex int         `json:"milestone_index"`
	Released       uint64      `json:"released"`
}

type EscrowSummaryResponse struct {
	JobID            uint64 `json:"job_id"`
	Budget           uint64 `json:"budget"`
	Released         uint64 `json:"released"`
	Refunded         uint64 `json:"refunded"`
	Locked           uint64 `json:"locked"`
	CurrentMilestone int    `json:"current_milestone"`
	MilestoneCount   int    `json:"milestone_count"`
	NextMilestone    uint64 `json:"next_milestone"`
}

type TransferResponse struct {
	ID        uuid.UUID `json:"id"`
	JobID     uint64    `json:"job_id"`
	Principal uuid.UUID `json:"principal"`
	Kind      string    `json:"kind"`
	Amount    uint64    `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

func ToJobResponse(job *entity.Job) JobResponse {
	milestones := make([]uint64, len(job.Milestones))
	copy(milestones, job.Milestones)

	return JobResponse{
		ID:               job.ID,
		ClientID:         job.ClientID,
		Title:            job.Title,
		Description:      job.Description,
		Budget:           job.Budget,
		Milestones:       milestones,
		CurrentMilestone: job.CurrentMilestone,
		Status:           string(job.Status),
		FreelancerID:     job.FreelancerID,
		ReleasedAmount:   job.ReleasedAmount,
		RefundedAmount:   job.RefundedAmount,
		Escrowed:         job.Escrowed(),
		CreatedAt:        job.CreatedAt,
		UpdatedAt:        job.UpdatedAt,
	}
}

func ToJobResponses(jobs []*entity.Job) []JobResponse {
	result := make([]JobResponse, 0, len(jobs))
	for _, j := range jobs {
		result = append(result, ToJobResponse(j))
	}
	return result
}

func ToEscrowSummaryResponse(s entity.EscrowSummary) EscrowSummaryResponse {
	return EscrowSummaryResponse{
		JobID:            s.JobID,
		Budget:           s.Budget,
		Released:         s.Released,
		Refunded:         s.Refunded,
		Locked:           s.Locked,
		CurrentMilestone: s.CurrentMilestone,
		MilestoneCount:   s.MilestoneCount,
		NextMilestone:    s.NextMilestone,
	}
}

func ToTransferResponses(transfers []entity.Transfer) []TransferResponse {
	result := make([]TransferResponse, 0, len(transfers))
	for _, t := range transfers {
		result = append(result, TransferResponse{
			ID:        t.ID,
			JobID:     t.JobID,
			Principal: t.Principal,
			Kind:      string(t.Kind),
			Amount:    t.Amount,
			CreatedAt: t.CreatedAt,
		})
	}
	return result
}
