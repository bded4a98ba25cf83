package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/salesdash/backend/internal/infrastructure/metrics"
)

// HTTPMetrics records request counts and latency per matched route
func HTTPMetrics(recorder *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		recorder.ObserveHTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
