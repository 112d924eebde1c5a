package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/escrow-marketplace/internal/logger"
)

// PingFunc проверяет доступность хранилища.
type PingFunc func(ctx context.Context) error

type HealthHandler struct {
	ping    PingFunc
	storage string
}

func NewHealthHandler(storage string, ping PingFunc) *HealthHandler {
	return &HealthHandler{ping: ping, storage: storage}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if h.ping != nil {
		if err := h.ping(ctx); err != nil {
			logger.Log.WithError(err).Warn("health: хранилище недоступно")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "storage": h.storage})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "storage": h.storage})
}
