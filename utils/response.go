// File: /utils/response.go
package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const TimestampLayout = "2006-01-02 15:04:05"

type ErrorResponse struct {
	Message   string `json:"message"`
	Status    int    `json:"status"`
	Timestamp string `json:"timestamp"`
}

func SendError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{
		Message:   message,
		Status:    status,
		Timestamp: time.Now().Format(TimestampLayout),
	})
}

// SendAppError maps a service error to an HTTP response. Unknown errors
// become a generic 500 so internals never leak to clients.
func SendAppError(c *gin.Context, err error) {
	switch {
	case IsNotFound(err):
		SendError(c, http.StatusNotFound, err.Error())
	case IsConflict(err):
		SendError(c, http.StatusConflict, err.Error())
	case IsValidation(err):
		SendError(c, http.StatusBadRequest, err.Error())
	default:
		SendError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

func SendValidationError(c *gin.Context, message string) {
	SendError(c, http.StatusBadRequest, message)
}
