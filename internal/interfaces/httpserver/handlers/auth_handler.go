// Package handlers translates HTTP requests into broker commands and renders
// the replies. Handlers never hold business logic; every verdict comes from
// a backend service over the dispatcher.
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

// AuthHandler serves the public registration and login routes.
type AuthHandler struct {
	dispatcher broker.Dispatcher
	logger     zerolog.Logger
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(d broker.Dispatcher, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{dispatcher: d, logger: logger}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req requests.Register
	if !requests.Bind(c, &req) {
		return
	}

	var reply user.StatusReply
	err := h.dispatcher.Send(c.Request.Context(), "auth.create",
		user.CreateInput{Email: req.Email, Password: req.Password}, &reply)
	if err != nil {
		responses.AbortWithFault(c, err)
		return
	}
	c.JSON(http.StatusCreated, reply)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req requests.Login
	if !requests.Bind(c, &req) {
		return
	}

	var reply user.SessionReply
	err := h.dispatcher.Send(c.Request.Context(), "auth.login",
		user.LoginInput{Email: req.Email, Password: req.Password}, &reply)
	if err != nil {
		responses.AbortWithFault(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// VerifyAccount handles GET /api/auth/verify/:token.
func (h *AuthHandler) VerifyAccount(c *gin.Context) {
	var reply user.StatusReply
	err := h.dispatcher.Send(c.Request.Context(), "auth.verify-account",
		map[string]string{"token": c.Param("token")}, &reply)
	if err != nil {
		responses.AbortWithFault(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}
