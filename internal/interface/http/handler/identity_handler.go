package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/escrow-marketplace/internal/interface/http/response"
)

// TokenIssuer выпускает access-токены.
type TokenIssuer interface {
	Issue(principal uuid.UUID) (string, time.Time, error)
}

// IdentityHandler выдаёт токены для локальной разработки. В production участника
// удостоверяет внешний провайдер, маршрут не регистрируется.
type IdentityHandler struct {
	tokens TokenIssuer
}

func NewIdentityHandler(tokens TokenIssuer) *IdentityHandler {
	return &IdentityHandler{tokens: tokens}
}

type devTokenRequest struct {
	Principal string `json:"principal"`
}

func (h *IdentityHandler) IssueDevToken(c *gin.Context) {
	var req devTokenRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "некорректные данные запроса")
			return
		}
	}

	principal := uuid.New()
	if req.Principal != "" {
		id, err := uuid.Parse(req.Principal)
		if err != nil {
			response.BadRequest(c, "некорректный principal")
			return
		}
		principal = id
	}

	token, exp, err := h.tokens.Issue(principal)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{
		"principal":    principal,
		"access_token": token,
		"expires_at":   exp,
	})
}
