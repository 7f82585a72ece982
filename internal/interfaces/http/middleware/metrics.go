package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"bizcard/internal/shared/metrics"
)

// Metrics records request counts and latency by route template, so path
// parameters do not create new label values.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method

		metrics.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
