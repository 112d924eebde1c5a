package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/escrow-marketplace/internal/interface/http/dto"
	"github.com/ignatzorin/escrow-marketplace/internal/interface/http/response"
	"github.com/ignatzorin/escrow-marketplace/internal/usecase/escrow"
)

type EscrowHandler struct {
	completeMilestoneUC *escrow.CompleteMilestoneUseCase
	summaryUC           *escrow.GetEscrowSummaryUseCase
	listTransfersUC     *escrow.ListTransfersUseCase
}

func NewEscrowHandler(
	completeMilestoneUC *escrow.CompleteMilestoneUseCase,
	summaryUC *escrow.GetEscrowSummaryUseCase,
	listTransfersUC *escrow.ListTransfersUseCase,
) *EscrowHandler {
	return &EscrowHandler{
		completeMilestoneUC: completeMilestoneUC,
		summaryUC:           summaryUC,
		listTransfersUC:     listTransfersUC,
	}
}

func (h *EscrowHandler) CompleteMilestone(c *gin.Context) {
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

	result, err := h.completeMilestoneUC.Execute(c.Request.Context(), escrow.CompleteMilestoneInput{
		JobID:    jobID,
		CallerID: userID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.MilestoneResponse{
		Job:            dto.ToJobResponse(result.Job),
		MilestoneIndex: result.Index,
		Released:       result.Released,
	})
}

func (h *EscrowHandler) GetSummary(c *gin.Context) {
	jobID, err := parseJobID(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	summary, err := h.summaryUC.Execute(c.Request.Context(), jobID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToEscrowSummaryResponse(summary))
}

func (h *EscrowHandler) ListTransfers(c *gin.Context) {
	jobID, err := parseJobID(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	transfers, err := h.listTransfersUC.Execute(c.Request.Context(), jobID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToTransferResponses(transfers))
}
