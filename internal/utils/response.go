package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Status is a callable error code, as the mobile SDK expects it.
type Status string

const (
	StatusInvalidArgument    Status = "INVALID_ARGUMENT"
	StatusFailedPrecondition Status = "FAILED_PRECONDITION"
	StatusUnauthenticated    Status = "UNAUTHENTICATED"
	StatusNotFound           Status = "NOT_FOUND"
	StatusDeadlineExceeded   Status = "DEADLINE_EXCEEDED"
	StatusUnavailable        Status = "UNAVAILABLE"
	StatusInternal           Status = "INTERNAL"
)

// HTTPStatus maps a callable code to its HTTP status.
func (s Status) HTTPStatus() int {
	switch s {
	case StatusInvalidArgument, StatusFailedPrecondition:
		return http.StatusBadRequest
	case StatusUnauthenticated:
		return http.StatusUnauthorized
	case StatusNotFound:
		return http.StatusNotFound
	case StatusDeadlineExceeded:
		return http.StatusGatewayTimeout
	case StatusUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Success writes {"result": data}.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"result": data})
}

// Error writes {"error": {"status", "message"}} and aborts the chain.
func Error(c *gin.Context, status Status, msg string) {
	c.AbortWithStatusJSON(status.HTTPStatus(), gin.H{
		"error": gin.H{
			"status":  status,
			"message": msg,
		},
	})
}
