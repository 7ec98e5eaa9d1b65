package guards

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskflow-server/internal/domain"
	"taskflow-server/internal/domain/fault"
	"taskflow-server/internal/domain/task"
	"taskflow-server/internal/domain/user"
	"taskflow-server/internal/infrastructure/broker"
)

// TaskAccess checks whether the caller may touch the task named by the :id
// route parameter. Admins may touch any task; managers must be the author or
// the assignee; regular users must be the assignee. The task is fetched over
// the broker, so a missing task surfaces as 404 before any permission
// verdict.
func TaskAccess(d broker.Dispatcher) Guard {
	return Guard{
		Name: "task_access",
		Check: func(c *gin.Context) Decision {
			p, ok := PrincipalFromContext(c)
			if !ok {
				return Deny(http.StatusUnauthorized, "Unauthorized")
			}
			if p.Role == domain.RoleAdmin {
				return Allow()
			}

			id := c.Param("id")
			var reply task.OneReply
			err := d.Send(c.Request.Context(), "tasks.findOne",
				map[string]string{"id": id}, &reply)
			if err != nil {
				f := fault.From(err)
				if f.Kind == fault.KindNotFound {
					return Deny(http.StatusNotFound, "Task not found")
				}
				return DenyFault(err)
			}

			t := reply.Task
			switch p.Role {
			case domain.RoleManager:
				if t.AuthorID == p.ID || t.AssignedUserID == p.ID {
					return Allow()
				}
			case domain.RoleUser:
				if t.AssignedUserID == p.ID {
					return Allow()
				}
			}
			return Deny(http.StatusForbidden,
				"You don't have permission to access this task")
		},
	}
}

// OwnOrElevated gates user-scoped task listings: admins and managers may
// view any user's tasks, regular users only their own.
func OwnOrElevated() Guard {
	return Guard{
		Name: "own_or_elevated",
		Check: func(c *gin.Context) Decision {
			p, ok := PrincipalFromContext(c)
			if !ok {
				return Deny(http.StatusUnauthorized, "Unauthorized")
			}
			if p.Role == domain.RoleAdmin || p.Role == domain.RoleManager {
				return Allow()
			}
			if c.Param("id") == p.ID {
				return Allow()
			}
			return Deny(http.StatusForbidden, "Not authorized")
		},
	}
}

// AuthorOrAdmin gates author-scoped task listings: admins may view any
// author's tasks, managers only their own.
func AuthorOrAdmin() Guard {
	return Guard{
		Name: "author_or_admin",
		Check: func(c *gin.Context) Decision {
			p, ok := PrincipalFromContext(c)
			if !ok {
				return Deny(http.StatusUnauthorized, "Unauthorized")
			}
			if p.Role == domain.RoleAdmin {
				return Allow()
			}
			if p.Role == domain.RoleManager && c.Param("id") == p.ID {
				return Allow()
			}
			return Deny(http.StatusForbidden, "Not authorized")
		},
	}
}

// UserExists rejects requests whose named route parameter does not identify
// a known user.
func UserExists(d broker.Dispatcher, param string) Guard {
	return Guard{
		Name: "user_exists",
		Check: func(c *gin.Context) Decision {
			var reply user.GetReply
			err := d.Send(c.Request.Context(), "users.findById",
				map[string]string{"id": c.Param(param)}, &reply)
			if err != nil {
				f := fault.From(err)
				if f.Kind == fault.KindNotFound {
					return Deny(http.StatusNotFound, "User not found")
				}
				return DenyFault(err)
			}
			return Allow()
		},
	}
}
