// Package ui serves the design report and its data over HTTP.
package ui

import (
	"context"
	"errors"
	"net/http"
	"time"

	"designspace/app"
	"designspace/internal"

	"github.com/gin-gonic/gin"
)

// Server represents the report preview server
type Server struct {
	router *gin.Engine
	matrix *app.MatrixService
	base   app.MatrixRequest
	logger *internal.Logger
}

// NewServer creates a server that evaluates base unless a request overrides it
func NewServer(matrix *app.MatrixService, base app.MatrixRequest) *Server {
	s := &Server{
		router: gin.New(),
		matrix: matrix,
		base:   base,
		logger: internal.DefaultLogger.WithComponent("Server"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleReportHTML)
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/report.md", s.handleReportFile("md", "text/markdown; charset=utf-8"))
	s.router.GET("/report.xlsx", s.handleReportFile("xlsx",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"))

	api := s.router.Group("/api")
	api.GET("/grid", s.handleGrid)
	api.GET("/feasibility", s.handleFeasibility)
	api.GET("/summary", s.handleSummary)
	api.GET("/profile/:e", s.handleProfile)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
