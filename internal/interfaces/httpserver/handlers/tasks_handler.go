package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"taskflow-server/internal/domain/task"
	"taskflow-server/internal/infrastructure/broker"
	"taskflow-server/internal/interfaces/httpserver/guards"
	"taskflow-server/internal/interfaces/httpserver/requests"
	"taskflow-server/internal/interfaces/httpserver/responses"
)

// TasksHandler serves the guarded task routes.
type TasksHandler struct {
	dispatcher broker.Dispatcher
	logger     zerolog.Logger
}

// NewTasksHandler constructs a TasksHandler.
func NewTasksHandler(d broker.Dispatcher, logger zerolog.Logger) *TasksHandler {
	return &TasksHandler{dispatcher: d, logger: logger}
}

// Create handles POST /api/tasks. The author is always the authenticated
// caller, never a body field.
func (h *TasksHandler) Create(c *gin.Context) {
	var req requests.CreateTask
	if !requests.Bind(c, &req) {
		return
	}
	p, _ := guards.PrincipalFromContext(c)

	var reply task.OneReply
	err := h.dispatcher.Send(c.Request.Context(), "tasks.create", task.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		AuthorID:    p.ID,
		AssignedTo:  req.AssignedTo,
	}, &reply)
	if err != nil {
		responses.AbortWithFault(c, err)
		return
	}
	c.JSON(http.StatusCreated, reply)
}

// List handles GET /api/tasks.
func (h *TasksHandler) List(c *gin.Context) {
	limit, page := requests.Page(c)

	var reply task.ListReply
	err := h.dispatcher.Send(c.Request.Context(), "tasks.findAll",
		map[string]int{"limit": limit, "page": page}, &reply)
	if err != nil {
		responses.AbortWithFault(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// Get handles GET /api/tasks/:id.
func (h *TasksHandler) Get(c *gin.Context) {
	var reply task.OneReply
	err := h.dispatcher.Send(c.Request.Context(), "tasks.findOne",
		map[string]string{"id": c.Param("id")}, &reply)
	if err != nil {
		responses.AbortWithFault(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// ListByAuthor handles GET /api/tasks/author/:id.
func (h *TasksHandler) ListByAuthor(c *gin.Context) {
	h.listScoped(c, "tasks.findByAuthorId")
}

// ListByAssignee handles GET /api/tasks/assigned/:id.
func (h *TasksHandler) ListByAssignee(c *gin.Context) {
	h.listScoped(c, "tasks.findByAssignedId")
}

func (h *TasksHandler) listScoped(c *gin.Context, command string) {
	limit, page := requests.Page(c)

	var reply task.ListReply
	err := h.dispatcher.Send(c.Request.Context(), command, map[string]any{
		"id":    c.Param("id"),
		"limit": limit,
		"page":  page,
	}, &reply)
	if err != nil {
		responses.AbortWithFault(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// Update handles PUT /api/tasks/:id.
func (h *TasksHandler) Update(c *gin.Context) {
	var req requests.UpdateTask
	if !requests.Bind(c, &req) {
		return
	}

	var reply task.OneReply
	err := h.dispatcher.Send(c.Request.Context(), "tasks.update", task.UpdateInput{
		ID:          c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	}, &reply)
	if err != nil {
		responses.AbortWithFault(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// Delete handles DELETE /api/tasks/:id.
func (h *TasksHandler) Delete(c *gin.Context) {
	var reply task.StatusReply
	err := h.dispatcher.Send(c.Request.Context(), "tasks.delete",
		map[string]string{"id": c.Param("id")}, &reply)
	if err != nil {
		responses.AbortWithFault(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// ChangeStatus handles PATCH /api/tasks/:id/status.
func (h *TasksHandler) ChangeStatus(c *gin.Context) {
	var req requests.ChangeTaskStatus
	if !requests.Bind(c, &req) {
		return
	}

	var reply task.OneReply
	err := h.dispatcher.Send(c.Request.Context(), "tasks.change-status",
		map[string]string{"id": c.Param("id"), "status": req.Status}, &reply)
	if err != nil {
		responses.AbortWithFault(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// AssignUser handles PATCH /api/tasks/:id/assign/:userId.
func (h *TasksHandler) AssignUser(c *gin.Context) {
	var reply task.OneReply
	err := h.dispatcher.Send(c.Request.Context(), "tasks.assign-user",
		map[string]string{"id": c.Param("id"), "userId": c.Param("userId")}, &reply)
	if err != nil {
		responses.AbortWithFault(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}
