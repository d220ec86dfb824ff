package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"Task_Mania/internal/pkg/log"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger puts a request scoped logger on the request context and logs
// one line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(RequestIDHeader, reqID)

		ctx := log.WithFields(c.Request.Context(), logrus.Fields{
			"request_id": reqID,
			"method":     c.Request.Method,
			"path":       c.FullPath(),
		})
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		entry := log.GetLogger(c.Request.Context()).WithFields(logrus.Fields{
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request served")
		}
	}
}
