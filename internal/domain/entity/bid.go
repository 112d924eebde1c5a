package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"
)

// Bid: отклик фрилансера на заказ. Уникален по паре (JobID, FreelancerID).
type Bid struct {
	JobID        uint64
	FreelancerID uuid.UUID
	Amount       uint64
	Proposal     string
	Status       valueobject.BidStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewBid(jobID uint64, freelancerID uuid.UUID, amount uint64, proposal string) (*Bid, error) {
	if amount == 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "сумма предложения должна быть положительной").
			WithDetail("amount", amount)
	}

	now := time.Now().UTC()
	return &Bid{
		JobID:        jobID,
		FreelancerID: freelancerID,
		Amount:       amount,
		Proposal:     proposal,
		Status:       valueobject.BidStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (b *Bid) Accept() error {
	if b.Status != valueobject.BidStatusPending {
		return apperror.ErrBidNotFound.WithDetail("status", string(b.Status))
	}
	b.Status = valueobject.BidStatusAccepted
	b.UpdatedAt = time.Now().UTC()
	return nil
}

func (b *Bid) Reject() error {
	if b.Status != valueobject.BidStatusPending {
		return apperror.New(apperror.ErrCodeInvalidState, "можно отклонить только ожидающее предложение")
	}
	b.Status = valueobject.BidStatusRejected
	b.UpdatedAt = time.Now().UTC()
	return nil
}

func (b *Bid) IsPending() bool {
	return b.Status == valueobject.BidStatusPending
}
