package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "goldsphere/internal/errors"
	"goldsphere/internal/logger"
)

// RetryAfterSeconds is advertised on retryable errors.
const RetryAfterSeconds = 1

// ErrorHandler returns a Gin middleware that converts errors set on the Gin
// context into consistent JSON error responses. AppErrors are returned with
// their code and message; unexpected errors are logged and return a generic
// internal error to avoid leaking details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		// Process the last error (most relevant in a middleware chain)
		err := c.Errors.Last().Err

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			WriteAppError(c, appErr)
			return
		}

		// Unexpected error: log full details, return generic message
		logger.Get().Errorw("unexpected error",
			"request_id", RequestID(c),
			"error", err.Error(),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
		WriteAppError(c, apperrors.ErrInternalServer)
	}
}

// WriteAppError renders appErr as the standard error body. Retryable errors
// carry a Retry-After header; the request id is echoed so clients can quote it.
func WriteAppError(c *gin.Context, appErr *apperrors.AppError) {
	requestID := RequestID(c)
	c.Set(contextErrorCode, appErr.Code)
	if appErr.Internal != nil {
		logger.Get().Errorw("app error",
			"request_id", requestID,
			"code", appErr.Code,
			"message", appErr.Message,
			"internal", appErr.Internal.Error(),
			"path", c.Request.URL.Path,
		)
	}
	if appErr.Retryable {
		c.Header("Retry-After", strconv.Itoa(RetryAfterSeconds))
	}
	body := gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	}
	if requestID != "" {
		body["request_id"] = requestID
	}
	c.JSON(appErr.StatusCode, gin.H{"error": body})
}
