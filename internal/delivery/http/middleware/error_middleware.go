package middleware

import (
	"errors"
	"net/http"

	"go-species-social-backend/internal/delivery/http/response"
	"go-species-social-backend/pkg/apperror"
	"go-species-social-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error attached with c.Error. AppError codes
// and messages pass through; anything else becomes a generic 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code < http.StatusInternalServerError {
			response.Error(c, appErr.Code, appErr.Message, nil)
			return
		}

		logger.L().Error("Internal server error",
			"error", err,
			"path", c.FullPath(),
			"method", c.Request.Method,
			"request_id", c.GetString("RequestID"),
		)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
