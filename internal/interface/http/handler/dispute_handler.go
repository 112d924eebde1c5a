package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/escrow-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/escrow-marketplace/internal/interface/http/dto"
	"github.com/ignatzorin/escrow-marketplace/internal/interface/http/response"
	"github.com/ignatzorin/escrow-marketplace/internal/usecase/dispute"
)

type DisputeHandler struct {
	raiseUC   *dispute.RaiseDisputeUseCase
	getUC     *dispute.GetDisputeUseCase
	voteUC    *dispute.VoteUseCase
	resolveUC *dispute.ResolveUseCase
}

func NewDisputeHandler(
	raiseUC *dispute.RaiseDisputeUseCase,
	getUC *dispute.GetDisputeUseCase,
	voteUC *dispute.VoteUseCase,
	resolveUC *dispute.ResolveUseCase,
) *DisputeHandler {
	return &DisputeHandler{
		raiseUC:   raiseUC,
		getUC:     getUC,
		voteUC:    voteUC,
		resolveUC: resolveUC,
	}
}

func (h *DisputeHandler) RaiseDispute(c *gin.Context) {
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

	var req dto.RaiseDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	d, err := h.raiseUC.Execute(c.Request.Context(), dispute.RaiseDisputeInput{
		JobID:    jobID,
		CallerID: userID,
		Reason:   req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToDisputeResponse(d))
}

func (h *DisputeHandler) GetDispute(c *gin.Context) {
	jobID, err := parseJobID(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	d, err := h.getUC.Execute(c.Request.Context(), jobID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToDisputeResponse(d))
}

func (h *DisputeHandler) Vote(c *gin.Context) {
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

	var req dto.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "поле release обязательно")
		return
	}

	d, err := h.voteUC.Execute(c.Request.Context(), dispute.VoteInput{
		JobID:      jobID,
		VoterID:    userID,
		ForRelease: *req.Release,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToDisputeResponse(d))
}

func (h *DisputeHandler) Resolve(c *gin.Context) {
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

	// Пустое тело, в том числе chunked, означает решение по голосам.
	var req dto.ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	input := dispute.ResolveInput{JobID: jobID, CallerID: userID}
	if req.Outcome != "" {
		outcome, err := valueobject.NewDisputeOutcome(req.Outcome)
		if err != nil {
			response.Error(c, err)
			return
		}
		input.Outcome = outcome
	}

	d, err := h.resolveUC.Execute(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToDisputeResponse(d))
}
