package dto

import (
	"github.com/google/uuid"

	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
)

type RateUserRequest struct {
	Value uint64 `json:"value"`
}

type RatingResponse struct {
	UserID  uuid.UUID `json:"user_id"`
	Total   uint64    `json:"total"`
	Count   uint64    `json:"count"`
	Average uint64    `json:"average"`
}

type DepositRequest struct {
	Amount uint64 `json:"amount" binding:"required,gt=0"`
}

type AccountResponse struct {
	Principal uuid.UUID `json:"principal"`
	Balance   uint64    `json:"balance"`
}

func ToRatingResponse(r *entity.Rating) RatingResponse {
	return RatingResponse{
		UserID:  r.UserID,
		Total:   r.Total,
		Count:   r.Count,
		Average: r.Average(),
	}
}

func ToAccountResponse(a *entity.Account) AccountResponse {
	return AccountResponse{Principal: a.Principal, Balance: a.Balance}
}
