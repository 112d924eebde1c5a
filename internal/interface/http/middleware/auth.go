package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/escrow-marketplace/internal/interface/http/response"
)

// ContextUserIDKey: ключ участника в gin.Context.
const ContextUserIDKey = "userID"

// TokenParser извлекает участника из access-токена.
type TokenParser interface {
	ParseAccess(token string) (uuid.UUID, error)
}

// AuthMiddleware проверяет Bearer-токен и кладёт участника в контекст.
func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			response.Unauthenticated(c, "требуется авторизация")
			return
		}

		principal, err := tokens.ParseAccess(strings.TrimPrefix(auth, "Bearer "))
		if err != nil || principal == uuid.Nil {
			response.Unauthenticated(c, "токен невалиден")
			return
		}

		c.Set(ContextUserIDKey, principal)
		c.Next()
	}
}
