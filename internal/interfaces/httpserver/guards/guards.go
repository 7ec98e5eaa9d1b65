// Package guards implements the ordered authorization pipeline run in front
// of protected routes: authentication first, then role checks, then
// resource-level ownership checks. Each stage either allows the request or
// aborts it with the error envelope; later stages never run after a denial.
package guards

import (
	"strings"

	"github.com/gin-gonic/gin"

	"taskflow-server/internal/domain"
	"taskflow-server/internal/domain/fault"
	"taskflow-server/internal/infrastructure/metrics"
	"taskflow-server/internal/interfaces/httpserver/responses"
)

const principalKey = "principal"

// Decision is the outcome of a single guard stage.
type Decision struct {
	Allowed bool
	Status  int
	Message string
}

// Allow lets the request proceed to the next stage.
func Allow() Decision { return Decision{Allowed: true} }

// Deny stops the request with the given status and message.
func Deny(status int, message string) Decision {
	return Decision{Status: status, Message: message}
}

// DenyFault stops the request with the status and message carried by err.
func DenyFault(err error) Decision {
	f := fault.From(err)
	return Decision{Status: f.Status, Message: f.Message}
}

// Guard is one named stage of the pipeline. The name labels denial metrics.
type Guard struct {
	Name  string
	Check func(c *gin.Context) Decision
}

// Chain runs guards in order and aborts on the first denial.
func Chain(gs ...Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, g := range gs {
			d := g.Check(c)
			if !d.Allowed {
				metrics.GuardDenialsTotal.WithLabelValues(g.Name).Inc()
				responses.AbortWithDecision(c, d.Status, d.Message)
				return
			}
		}
		c.Next()
	}
}

// PrincipalFromContext returns the authenticated caller, if any.
func PrincipalFromContext(c *gin.Context) (domain.Principal, bool) {
	val, ok := c.Get(principalKey)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := val.(domain.Principal)
	return p, ok
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
