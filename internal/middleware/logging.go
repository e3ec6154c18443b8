// Package middleware holds the gin request middleware shared by every HTTP
// route: request-id tagging, structured access logging, and panic recovery.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tilehaven/roomserver/internal/logger"
)

// RequestID tags every request with an X-Request-ID, generating one if the
// caller didn't supply it.
func RequestID() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	})
}

// ZapLogger logs one structured line per request.
func ZapLogger() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		duration := time.Since(start)
		requestID, _ := c.Get("request_id")

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.Duration("duration", duration),
			zap.Int("size", c.Writer.Size()),
		}
		if requestID != nil {
			fields = append(fields, zap.String("request_id", requestID.(string)))
		}
		if raw != "" {
			fields = append(fields, zap.String("query", raw))
		}

		status := c.Writer.Status()
		const msg = "HTTP request"
		switch {
		case len(c.Errors) > 0:
			for _, err := range c.Errors {
				logger.Get().Error("HTTP request error", append(fields, zap.String("error", err.Error()))...)
			}
		case status >= 500:
			logger.Get().Error(msg, fields...)
		case status >= 400:
			logger.Get().Warn(msg, fields...)
		default:
			logger.Get().Info(msg, fields...)
		}
	})
}

// ZapRecovery recovers panics inside a handler, logs them, and answers 500
// instead of crashing the process.
func ZapRecovery() gin.HandlerFunc {
	return gin.RecoveryWithWriter(gin.DefaultWriter, func(c *gin.Context, err interface{}) {
		requestID, _ := c.Get("request_id")

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
			zap.Any("error", err),
		}
		if requestID != nil {
			fields = append(fields, zap.String("request_id", requestID.(string)))
		}

		logger.Get().Error("panic recovered", fields...)
		c.AbortWithStatus(500)
	})
}
