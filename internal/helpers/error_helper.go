package helpers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/coursehub/internal/apperrors"
	"github.com/farellandr/coursehub/internal/logger"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func HTTPStatusText(code int) string {
	return http.StatusText(code)
}

func RespondWithError(c *gin.Context, statusCode int, message string) {
	if message == "" {
		message = HTTPStatusText(statusCode)
	}
	c.JSON(statusCode, ErrorResponse{Error: message})
}

// RespondWithAppError renders err with the status and code of its
// AppError. Anything else is logged and answered with a generic 500.
func RespondWithAppError(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	if appErr.HTTPCode >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed", "code", appErr.Code, "error", err)
	}
	c.JSON(appErr.HTTPCode, ErrorResponse{Error: appErr.Message, Code: string(appErr.Code)})
}

func AbortWithAppError(c *gin.Context, err error) {
	RespondWithAppError(c, err)
	c.Abort()
}
