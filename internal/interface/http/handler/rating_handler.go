package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/escrow-marketplace/internal/interface/http/dto"
	"github.com/ignatzorin/escrow-marketplace/internal/interface/http/response"
	"github.com/ignatzorin/escrow-marketplace/internal/usecase/rating"
)

type RatingHandler struct {
	rateUC *rating.RateUserUseCase
	getUC  *rating.GetRatingUseCase
}

func NewRatingHandler(rateUC *rating.RateUserUseCase, getUC *rating.GetRatingUseCase) *RatingHandler {
	return &RatingHandler{rateUC: rateUC, getUC: getUC}
}

func (h *RatingHandler) RateUser(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthenticated(c, "требуется авторизация")
		return
	}

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "некорректный ID пользователя")
		return
	}

	var req dto.RateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	r, err := h.rateUC.Execute(c.Request.Context(), rating.RateUserInput{
		RaterID:  userID,
		TargetID: targetID,
		Value:    req.Value,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToRatingResponse(r))
}

func (h *RatingHandler) GetRating(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "некорректный ID пользователя")
		return
	}

	r, err := h.getUC.Execute(c.Request.Context(), targetID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToRatingResponse(r))
}
