package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"taskflow-server/internal/domain/user"
	"taskflow-server/internal/infrastructure/broker"
	"taskflow-server/internal/interfaces/httpserver/requests"
	"taskflow-server/internal/interfaces/httpserver/responses"
)

// UsersHandler serves the guarded user query routes.
type UsersHandler struct {
	dispatcher broker.Dispatcher
	logger     zerolog.Logger
}

// NewUsersHandler constructs a UsersHandler.
func NewUsersHandler(d broker.Dispatcher, logger zerolog.Logger) *UsersHandler {
	return &UsersHandler{dispatcher: d, logger: logger}
}

// List handles GET /api/users.
func (h *UsersHandler) List(c *gin.Context) {
	limit, page := requests.Page(c)

	var reply user.ListReply
	err := h.dispatcher.Send(c.Request.Context(), "users.findAll",
		map[string]int{"limit": limit, "page": page}, &reply)
	if err != nil {
		responses.AbortWithFault(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// Get handles GET /api/users/:id.
func (h *UsersHandler) Get(c *gin.Context) {
	var reply user.GetReply
	err := h.dispatcher.Send(c.Request.Context(), "users.findById",
		map[string]string{"id": c.Param("id")}, &reply)
	if err != nil {
		responses.AbortWithFault(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}
