package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/market-radar/internal/config"
	"github.com/fleveque/market-radar/internal/middleware"
)

const (
	readTimeout = 10 * time.Second
	idleTimeout = 60 * time.Second
)

// Server owns the gin engine and the underlying http.Server.
type Server struct {
	addr   string
	router *gin.Engine
	logger *zap.Logger
	http   *http.Server
}

// New builds the engine, registers every route and prepares the listener.
func New(cfg *config.Config, deps Deps, logger *zap.Logger) *Server {
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(logger))

	RegisterRoutes(router, cfg, deps, logger)

	addr := cfg.Server.Address()
	return &Server{
		addr:   addr,
		router: router,
		logger: logger,
		http: &http.Server{
			Addr:        addr,
			Handler:     router,
			ReadTimeout: readTimeout,
			IdleTimeout: idleTimeout,
			// No WriteTimeout: ?wait=true responses last as long as the
			// analysis and event streams stay open until the client leaves.
		},
	}
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("address", s.addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server listen: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	return s.http.Shutdown(ctx)
}

// Router exposes the engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
