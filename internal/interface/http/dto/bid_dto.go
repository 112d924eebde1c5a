package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
)

type PlaceBidRequest struct {
	Amount   uint64 `json:"amount"`
	Proposal string `json:"proposal"`
}

type AcceptBidRequest struct {
	FreelancerID string `json:"freelancer_id" binding:"required"`
}

type BidResponse struct {
	JobID        uint64    `json:"job_id"`
	FreelancerID uuid.UUID `json:"freelancer_id"`
	Amount       uint64    `json:"amount"`
	Proposal     string    `json:"proposal"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func ToBidResponse(bid *entity.Bid) BidResponse {
	return BidResponse{
		JobID:        bid.JobID,
		FreelancerID: bid.FreelancerID,
		Amount:       bid.Amount,
		Proposal:     bid.Proposal,
		Status:       string(bid.Status),
		CreatedAt:    bid.CreatedAt,
		UpdatedAt:    bid.UpdatedAt,
	}
}

func ToBidResponses(bids []*entity.Bid) []BidResponse {
	result := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		result = append(result, ToBidResponse(b))
	}
	return result
}
