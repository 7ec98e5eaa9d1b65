// Package httpserver assembles the gateway gin engine: middleware stack,
// health and metrics endpoints, and the /api route table.
package httpserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"taskflow-server/internal/config"
	middleware "taskflow-server/internal/interfaces/httpserver/middlewares"
	"taskflow-server/internal/interfaces/httpserver/routes"
)

type HTTPServer struct {
	engine *gin.Engine
	config *config.Config
}

// NewHTTPServer builds the engine with the full middleware stack and the
// route table registered under /api.
func NewHTTPServer(router *routes.Router, cfg *config.Config, logger zerolog.Logger) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestID())
	engine.Use(middleware.LoggingMiddleware(logger))
	engine.Use(middleware.MetricsMiddleware())
	engine.Use(middleware.CORSMiddleware())
	engine.Use(gin.Recovery())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.Register(engine.Group("/api"))

	return &HTTPServer{engine: engine, config: cfg}
}

// Run blocks serving HTTP until the listener fails.
func (s *HTTPServer) Run() error {
	return s.engine.Run(fmt.Sprintf(":%d", s.config.HTTPPort))
}
