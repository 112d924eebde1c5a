package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"
)

// Vote: голос участника сообщества по спору.
type Vote struct {
	VoterID    uuid.UUID
	ForRelease bool
	CastAt     time.Time
}

// Dispute: спор по заказу. На заказ приходится не более одного спора.
type Dispute struct {
	JobID        uint64
	InitiatorID  uuid.UUID
	Reason       string
	Resolved     bool
	VotesRelease uint64
	VotesRefund  uint64
	Votes        []Vote
	Outcome      valueobject.DisputeOutcome
	ResolvedBy   *uuid.UUID
	CreatedAt    time.Time
	ResolvedAt   *time.Time
}

func NewDispute(jobID uint64, initiatorID uuid.UUID, reason string) *Dispute {
	return &Dispute{
		JobID:       jobID,
		InitiatorID: initiatorID,
		Reason:      reason,
		CreatedAt:   time.Now().UTC(),
	}
}

func (d *Dispute) HasVoted(voterID uuid.UUID) bool {
	for _, v := range d.Votes {
		if v.VoterID == voterID {
			return true
		}
	}
	return false
}

// CastVote учитывает голос. Повторный голос того же участника отклоняется.
func (d *Dispute) CastVote(voterID uuid.UUID, forRelease bool) error {
	if d.Resolved {
		return apperror.ErrDisputeResolved.WithDetail("job_id", d.JobID)
	}
	if d.HasVoted(voterID) {
		return apperror.ErrAlreadyVoted.WithDetail("voter", voterID.String())
	}

	d.Votes = append(d.Votes, Vote{VoterID: voterID, ForRelease: forRelease, CastAt: time.Now().UTC()})
	if forRelease {
		d.VotesRelease++
	} else {
		d.VotesRefund++
	}
	return nil
}

func (d *Dispute) TotalVotes() uint64 {
	return d.VotesRelease + d.VotesRefund
}

// Tally определяет исход по большинству; при равенстве применяется tieBreak.
func (d *Dispute) Tally(tieBreak valueobject.DisputeOutcome) valueobject.DisputeOutcome {
	switch {
	case d.VotesRelease > d.VotesRefund:
		return valueobject.DisputeOutcomeRelease
	case d.VotesRefund > d.VotesRelease:
		return valueobject.DisputeOutcomeRefund
	default:
		return tieBreak
	}
}

// Resolve фиксирует исход. resolvedBy пуст, если спор закрыт по кворуму.
func (d *Dispute) Resolve(outcome valueobject.DisputeOutcome, resolvedBy *uuid.UUID) error {
	if d.Resolved {
		return apperror.ErrDisputeResolved.WithDetail("job_id", d.JobID)
	}
	now := time.Now().UTC()
	d.Resolved = true
	d.Outcome = outcome
	d.ResolvedBy = resolvedBy
	d.ResolvedAt = &now
	return nil
}
