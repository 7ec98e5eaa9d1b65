// Package routes wires the gateway route table: handlers plus the guard
// pipeline each route runs behind.
package routes

import (
	"github.com/gin-gonic/gin"

	"taskflow-server/internal/domain"
	"taskflow-server/internal/infrastructure/broker"
	"taskflow-server/internal/interfaces/httpserver/guards"
	"taskflow-server/internal/interfaces/httpserver/handlers"
)

// Router registers every API route on a gin group.
type Router struct {
	dispatcher broker.Dispatcher
	auth       *handlers.AuthHandler
	users      *handlers.UsersHandler
	tasks      *handlers.TasksHandler
}

// NewRouter constructs the route table.
func NewRouter(d broker.Dispatcher, auth *handlers.AuthHandler, users *handlers.UsersHandler, tasks *handlers.TasksHandler) *Router {
	return &Router{dispatcher: d, auth: auth, users: users, tasks: tasks}
}

// Register binds all routes under the given group, normally /api.
func (r *Router) Register(api *gin.RouterGroup) {
	authn := guards.Authenticate(r.dispatcher)
	anyRole := guards.RequireRoles(domain.RoleAdmin, domain.RoleManager, domain.RoleUser)
	elevated := guards.RequireRoles(domain.RoleAdmin, domain.RoleManager)
	adminOnly := guards.RequireRoles(domain.RoleAdmin)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", r.auth.Register)
		authGroup.POST("/login", r.auth.Login)
		authGroup.GET("/verify/:token", r.auth.VerifyAccount)
	}

	usersGroup := api.Group("/users")
	{
		usersGroup.GET("", guards.Chain(authn, elevated), r.users.List)
		usersGroup.GET("/:id",
			guards.Chain(authn, anyRole, guards.OwnOrElevated()),
			r.users.Get)
	}

	tasksGroup := api.Group("/tasks")
	{
		tasksGroup.POST("", guards.Chain(authn, elevated), r.tasks.Create)
		tasksGroup.GET("", guards.Chain(authn, elevated), r.tasks.List)
		tasksGroup.GET("/author/:id",
			guards.Chain(authn, elevated, guards.AuthorOrAdmin(), guards.UserExists(r.dispatcher, "id")),
			r.tasks.ListByAuthor)
		tasksGroup.GET("/assigned/:id",
			guards.Chain(authn, anyRole, guards.OwnOrElevated(), guards.UserExists(r.dispatcher, "id")),
			r.tasks.ListByAssignee)
		tasksGroup.GET("/:id",
			guards.Chain(authn, anyRole, guards.TaskAccess(r.dispatcher)),
			r.tasks.Get)
		tasksGroup.PUT("/:id",
			guards.Chain(authn, elevated, guards.TaskAccess(r.dispatcher)),
			r.tasks.Update)
		tasksGroup.DELETE("/:id",
			guards.Chain(authn, adminOnly),
			r.tasks.Delete)
		tasksGroup.PATCH("/:id/status",
			guards.Chain(authn, anyRole, guards.TaskAccess(r.dispatcher)),
			r.tasks.ChangeStatus)
		tasksGroup.PATCH("/:id/assign/:userId",
			guards.Chain(authn, elevated, guards.TaskAccess(r.dispatcher), guards.UserExists(r.dispatcher, "userId")),
			r.tasks.AssignUser)
	}
}
