package guards

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskflow-server/internal/domain"
	"taskflow-server/internal/domain/user"
	"taskflow-server/internal/infrastructure/broker"
	"taskflow-server/internal/utils/reqctx"
)

const renewedTokenHeader = "X-Renewed-Token"

// Authenticate verifies the bearer token against the auth service and
// attaches the resulting principal to the request. A successful verification
// also returns a freshly signed token, exposed to the client via the
// X-Renewed-Token header so active sessions slide instead of expiring.
func Authenticate(d broker.Dispatcher) Guard {
	return Guard{
		Name: "authentication",
		Check: func(c *gin.Context) Decision {
			raw := bearerToken(c)
			if raw == "" {
				return Deny(http.StatusUnauthorized, "Unauthorized")
			}

			var session user.SessionReply
			err := d.Send(c.Request.Context(), "auth.verify-token",
				map[string]string{"token": raw}, &session)
			if err != nil {
				return DenyFault(err)
			}

			p := domain.Principal{
				ID:    session.User.ID,
				Email: session.User.Email,
				Role:  session.User.Role,
			}
			c.Set(principalKey, p)
			c.Request = c.Request.WithContext(reqctx.WithCallerID(c.Request.Context(), p.ID))
			c.Writer.Header().Set(renewedTokenHeader, session.Token)
			return Allow()
		},
	}
}

// RequireRoles denies callers whose role is not in the allowed set. It must
// run after Authenticate.
func RequireRoles(roles ...domain.Role) Guard {
	return Guard{
		Name: "role",
		Check: func(c *gin.Context) Decision {
			p, ok := PrincipalFromContext(c)
			if !ok {
				return Deny(http.StatusUnauthorized, "Unauthorized")
			}
			for _, r := range roles {
				if p.Role == r {
					return Allow()
				}
			}
			return Deny(http.StatusForbidden, "Not authorized")
		},
	}
}
