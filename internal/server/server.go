// Package server exposes the reconciliation trigger endpoint over HTTP.
// The endpoint classifies pending SOA lines and returns the results for the
// downstream workflow layer to persist and route; it writes nothing itself.
// Authentication and tenant scoping live in the surrounding portal, not here.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"soa-reconciliation-service/internal/config"
	"soa-reconciliation-service/internal/matcher"
	"soa-reconciliation-service/internal/models"
	"soa-reconciliation-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SOALineSource provides the pending statement lines for a vendor
type SOALineSource interface {
	ListPendingByVendor(ctx context.Context, vendorID string) ([]*models.SOALine, error)
}

// Server wires the matching engine behind a gin router
type Server struct {
	cfg      *config.Config
	engine   *matcher.Engine
	soaLines SOALineSource
	log      logger.Logger
	router   *gin.Engine
}

// NewServer creates the HTTP server and registers routes
func NewServer(cfg *config.Config, engine *matcher.Engine, soaLines SOALineSource, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNopLogger()
	}

	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:      cfg,
		engine:   engine,
		soaLines: soaLines,
		log:      log.WithComponent("http"),
		router:   gin.New(),
	}

	s.router.Use(gin.Recovery())
	s.router.Use(s.requestLogger())
	s.registerRoutes()

	return s
}

// Router exposes the underlying gin engine, mainly for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api/v1")
	{
		api.POST("/vendors/:vendorId/reconciliation/match", s.handleMatch)
		api.POST("/vendors/:vendorId/reconciliation/run", s.handleRun)
	}
}

// requestLogger tags every request with a request ID and logs its outcome
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		s.log.WithFields(logger.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
		}).Info("request handled")
	}
}

// Run serves until the context is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	s.log.Info("shutting down HTTP server")
	return srv.Shutdown(shutdownCtx)
}
