// Package server exposes the analysis engine over HTTP.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dmitriimaksimovdevelop/fsxray/internal/analyzer"
)

// Server serves analysis reports to fleet-review dashboards.
type Server struct {
	engine *analyzer.Engine
	log    *logrus.Entry
}

// New creates a Server around an engine.
func New(engine *analyzer.Engine, log *logrus.Entry) *Server {
	return &Server{engine: engine, log: log}
}

// Router builds the HTTP routes.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), corsMiddleware())
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/api/v1/report", s.handleReport)
	return router
}

// Run starts the server on addr (blocking).
func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}

// handleReport runs one analysis invocation and returns the report
// envelope. A failed invocation surfaces as a 500 with an error message;
// no partial report is returned on that path.
func (s *Server) handleReport(c *gin.Context) {
	report, err := s.engine.Run(c.Request.Context())
	if err != nil {
		s.log.WithError(err).Error("analysis invocation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// corsMiddleware mirrors the permissive CORS policy the report consumers
// expect, including OPTIONS preflight.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "*")
		c.Header("Access-Control-Allow-Methods", "GET,OPTIONS,POST")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
