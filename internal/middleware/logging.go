package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"goldsphere/internal/logger"
	gsuuid "goldsphere/internal/uuid"
)

const (
	// RequestIDHeader carries the request id in and out.
	RequestIDHeader = "X-Request-ID"

	contextRequestID = "requestID"
	contextErrorCode = "errorCode"
)

// RequestLogging tags every request with an id and logs one line when it
// finishes. A well-formed inbound X-Request-ID is reused so ids follow a
// request across services. The id is also stored on the request context for
// service-level logs, and the line records the caller and any error code.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = gsuuid.New()
		}
		c.Set(contextRequestID, requestID)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))
		c.Writer.Header().Set(RequestIDHeader, requestID)

		c.Next()

		fields := []interface{}{
			"request_id", requestID,
			"method", c.Request.Method,
			"route", c.FullPath(),
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if userID := c.GetString(ContextUserID); userID != "" {
			fields = append(fields, "user_id", userID)
		}
		if role, ok := c.Get(ContextRole); ok {
			fields = append(fields, "role", role)
		}
		if code := c.GetString(contextErrorCode); code != "" {
			fields = append(fields, "error_code", code)
		}

		logAtStatus(logger.Get(), c.Writer.Status())("request", fields...)
	}
}

// RequestID returns the id assigned by RequestLogging, or "".
func RequestID(c *gin.Context) string {
	return c.GetString(contextRequestID)
}

func logAtStatus(log *zap.SugaredLogger, status int) func(string, ...interface{}) {
	switch {
	case status >= 500:
		return log.Errorw
	case status >= 400:
		return log.Warnw
	default:
		return log.Infow
	}
}
