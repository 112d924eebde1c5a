package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/escrow-marketplace/internal/logger"
	"github.com/ignatzorin/escrow-marketplace/internal/observability"
)

// RequestLogger пишет итог запроса в лог и метрики. Ошибки из c.Errors
// логируются полностью, клиенту они уже отданы в замаскированном виде.
func RequestLogger() gin.HandlerFunc {
	metrics := observability.Metrics()

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		metrics.ObserveRequest(route, c.Request.Method, status, duration)

		entry := logger.Log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   status,
			"duration": duration.String(),
		})
		if principal, ok := c.Get(ContextUserIDKey); ok {
			entry = entry.WithField("principal", principal)
		}

		if len(c.Errors) > 0 {
			entry.WithField("error", c.Errors.String()).Error("ошибка обработки запроса")
			return
		}
		entry.Debug("запрос обработан")
	}
}
