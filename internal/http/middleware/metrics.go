package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/bloom-backend/internal/observability"
)

// Metrics records request counts and latency by route template, so path parameters never become labels.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		c.Next()

		m.ObserveAPI(c.Request.Method, c.FullPath(), observability.StatusLabel(c.Writer.Status()), time.Since(start))
	}
}
