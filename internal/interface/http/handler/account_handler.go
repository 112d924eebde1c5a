package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/escrow-marketplace/internal/interface/http/dto"
	"github.com/ignatzorin/escrow-marketplace/internal/interface/http/response"
	"github.com/ignatzorin/escrow-marketplace/internal/usecase/account"
)

type AccountHandler struct {
	balanceUC *account.GetBalanceUseCase
	depositUC *account.DepositUseCase
}

func NewAccountHandler(balanceUC *account.GetBalanceUseCase, depositUC *account.DepositUseCase) *AccountHandler {
	return &AccountHandler{balanceUC: balanceUC, depositUC: depositUC}
}

func (h *AccountHandler) GetMyAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthenticated(c, "требуется авторизация")
		return
	}

	acc, err := h.balanceUC.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToAccountResponse(acc))
}

// Deposit пополняет баланс вызывающего. Маршрут регистрируется только в development.
func (h *AccountHandler) Deposit(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthenticated(c, "требуется авторизация")
		return
	}

	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "сумма пополнения должна быть положительной")
		return
	}

	acc, err := h.depositUC.Execute(c.Request.Context(), userID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToAccountResponse(acc))
}
