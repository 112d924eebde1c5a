package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
)

type RaiseDisputeRequest struct {
	Reason string `json:"reason"`
}

// VoteRequest: release=true голосует за выплату фрилансеру, false за возврат клиенту.
type VoteRequest struct {
	Release *bool `json:"release" binding:"required"`
}

// ResolveDisputeRequest: пустой outcome означает решение по голосам.
type ResolveDisputeRequest struct {
	Outcome string `json:"outcome"`
}

type VoteDTO struct {
	VoterID    uuid.UUID `json:"voter_id"`
	ForRelease bool      `json:"for_release"`
	CastAt     time.Time `json:"cast_at"`
}

type DisputeResponse struct {
	JobID        uint64     `json:"job_id"`
	InitiatorID  uuid.UUID  `json:"initiator_id"`
	Reason       string     `json:"reason"`
	Resolved     bool       `json:"resolved"`
	VotesRelease uint64     `json:"votes_release"`
	VotesRefund  uint64     `json:"votes_refund"`
	Votes        []VoteDTO  `json:"votes"`
	Outcome      string     `json:"outcome,omitempty"`
	ResolvedBy   *uuid.UUID `json:"resolved_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
}

func ToDisputeResponse(d *entity.Dispute) DisputeResponse {
	votes := make([]VoteDTO, 0, len(d.Votes))
	for _, v := range d.Votes {
		votes = append(votes, VoteDTO{VoterID: v.VoterID, ForRelease: v.ForRelease, CastAt: v.CastAt})
	}

	return DisputeResponse{
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
