package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/escrow-marketplace/internal/interface/http/dto"
	"github.com/ignatzorin/escrow-marketplace/internal/interface/http/response"
	"github.com/ignatzorin/escrow-marketplace/internal/usecase/bid"
)

type BidHandler struct {
	placeBidUC  *bid.PlaceBidUseCase
	listBidsUC  *bid.ListBidsUseCase
	acceptBidUC *bid.AcceptBidUseCase
}

func NewBidHandler(placeBidUC *bid.PlaceBidUseCase, listBidsUC *bid.ListBidsUseCase, acceptBidUC *bid.AcceptBidUseCase) *BidHandler {
	return &BidHandler{
		placeBidUC:  placeBidUC,
		listBidsUC:  listBidsUC,
		acceptBidUC: acceptBidUC,
	}
}

func (h *BidHandler) PlaceBid(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthenticated(c, "требуется авторизация")
		return
	}

	jobID, err := parseJobID(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var req dto.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	placed, err := h.placeBidUC.Execute(c.Request.Context(), bid.PlaceBidInput{
		JobID:        jobID,
		FreelancerID: userID,
		Amount:       req.Amount,
		Proposal:     req.Proposal,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToBidResponse(placed))
}

func (h *BidHandler) ListBids(c *gin.Context) {
	jobID, err := parseJobID(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	bids, err := h.listBidsUC.Execute(c.Request.Context(), jobID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToBidResponses(bids))
}

func (h *BidHandler) AcceptBid(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthenticated(c, "требуется авторизация")
		return
	}

	jobID, err := parseJobID(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var req dto.AcceptBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}
	freelancerID, err := uuid.Parse(req.FreelancerID)
	if err != nil {
		response.BadRequest(c, "некорректный freelancer_id")
		return
	}

	j, err := h.acceptBidUC.Execute(c.Request.Context(), bid.AcceptBidInput{
		JobID:        jobID,
		ClientID:     userID,
		FreelancerID: freelancerID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToJobResponse(j))
}
