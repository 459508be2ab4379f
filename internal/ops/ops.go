// Package ops serves the HTTP observability sidecar: health probes and
// Prometheus metrics. It is optional and never touches registration
// state.
package ops

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/zotreg/internal/metrics"
	"github.com/noah-isme/zotreg/pkg/config"
	"github.com/noah-isme/zotreg/pkg/logger"
	reqidmiddleware "github.com/noah-isme/zotreg/pkg/middleware/requestid"
)

// Server wraps the gin engine and its http.Server.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// New builds the sidecar router.
func New(cfg *config.Config, stats *metrics.Service, logr *zap.Logger) *Server {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(stats.Handler()))

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Ops.Port),
			Handler: r,
		},
		logger: logr,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until Stop is called.
func (s *Server) Run() error {
	s.logger.Info("ops sidecar listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the sidecar down gracefully.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("ops shutdown", zap.Error(err))
	}
}
