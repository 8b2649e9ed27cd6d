package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "ledger/internal/errors"
	"ledger/internal/logger"
)

// ErrorHandler renders the last error a handler attached to the Gin context.
// It is the only place handler failures become JSON: AppErrors keep their
// status and code, anything else is logged and reported as INTERNAL_ERROR.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		log := logger.Get().With(
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)

		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			log.Errorw("unexpected error", "error", err.Error())
			appErr = apperrors.ErrInternalServer
		} else if appErr.Internal != nil {
			log.Errorw("request failed",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
			)
		}

		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
	}
}
