// Package responses renders the client-facing error envelope:
// {status: "fail"|"error", message, details?} with "fail" for 4xx and
// "error" for 5xx.
package responses

import (
	"github.com/gin-gonic/gin"

	"taskflow-server/internal/domain/fault"
)

// ErrorDetail describes one field-level validation failure.
type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorBody is the error envelope returned to HTTP clients.
type ErrorBody struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// AbortWithFault maps any error onto the envelope and aborts the request.
func AbortWithFault(c *gin.Context, err error) {
	f := fault.From(err)
	c.AbortWithStatusJSON(f.Status, ErrorBody{
		Status:  fault.StatusWord(f.Status),
		Message: f.Message,
	})
}

// AbortWithDecision writes a guard denial.
func AbortWithDecision(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{
		Status:  fault.StatusWord(status),
		Message: message,
	})
}

// AbortValidation writes the field-level validation envelope.
func AbortValidation(c *gin.Context, details []ErrorDetail) {
	c.AbortWithStatusJSON(400, ErrorBody{
		Status:  "fail",
		Message: "Your request is invalid",
		Details: details,
	})
}
