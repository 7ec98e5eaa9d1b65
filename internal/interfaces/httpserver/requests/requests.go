// Package requests holds the HTTP request DTOs and the shared binding
// helper. Validation runs at the gateway edge so backend services only ever
// see well-formed payloads.
package requests

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"taskflow-server/internal/interfaces/httpserver/responses"
)

// Bind decodes the JSON body into dst and, on validation failure, writes the
// field-level error envelope. It returns false when the request was aborted.
func Bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		responses.AbortValidation(c, translate(err))
		return false
	}
	return true
}

func translate(err error) []responses.ErrorDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make([]responses.ErrorDetail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, responses.ErrorDetail{
			Field:   strings.ToLower(fe.Field()[:1]) + fe.Field()[1:],
			Message: messageFor(fe),
		})
	}
	return details
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// Page reads the limit and page query parameters, defaulting both to zero
// which callers interpret as "no pagination".
func Page(c *gin.Context) (limit, page int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "0"))
	page, _ = strconv.Atoi(c.DefaultQuery("page", "0"))
	if limit < 0 {
		limit = 0
	}
	if page < 0 {
		page = 0
	}
	return limit, page
}
