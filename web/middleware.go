package web

import (
	"time"

	"github.com/erpcompany/erp/logging"
	"github.com/erpcompany/erp/metrics"
	"github.com/gin-gonic/gin"
)

const unmatchedRoute = "unmatched"

func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug("Request served",
			logging.Field{Key: "method", Value: c.Request.Method},
			logging.Field{Key: "path", Value: c.Request.URL.Path},
			logging.Field{Key: "status", Value: c.Writer.Status()},
			logging.Field{Key: "duration", Value: time.Since(start).String()})
	}
}

func requestMetrics(m *metrics.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		m.Observe(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
