// Package server wires the router, middleware stack, and HTTP server.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/socialwiz/wingman/config"
	"github.com/socialwiz/wingman/server/handlers"
	"github.com/socialwiz/wingman/server/metrics"
	"github.com/socialwiz/wingman/server/middleware"
)

// Router handles HTTP routing for the chat API.
type Router struct {
	router chi.Router
}

// RouterOptions bundles the dependencies the router mounts.
type RouterOptions struct {
	Chat    http.Handler
	Metrics *metrics.Metrics
	Logger  *zap.Logger
	Server  config.ServerConfig
}

// NewRouter creates the chi router with the full middleware stack.
func NewRouter(opts RouterOptions) *Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTimer)
	r.Use(middleware.PanicRecovery)
	r.Use(middleware.CORS)
	r.Use(middleware.Logging(opts.Logger))
	r.Use(middleware.PrometheusMetrics(opts.Metrics))
	r.Use(middleware.RateLimit)
	if opts.Server.WriteTimeout > 0 {
		r.Use(middleware.Timeout(opts.Server.WriteTimeout))
	}

	r.Post("/v1/chat", opts.Chat.ServeHTTP)
	r.Get("/", handlers.InfoHandler)
	r.Get("/health", handlers.HealthHandler)
	r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())

	return &Router{router: r}
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

// Server is the HTTP server for the chat API.
type Server struct {
	httpServer *http.Server
	cfg        config.ServerConfig
	logger     *zap.Logger
}

// NewServer creates a server from the config.
func NewServer(cfg config.ServerConfig, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:           fmt.Sprintf(":%d", cfg.Port),
			Handler:        handler,
			ReadTimeout:    cfg.ReadTimeout,
			WriteTimeout:   cfg.WriteTimeout,
			MaxHeaderBytes: cfg.MaxHeaderBytes,
		},
		cfg:    cfg,
		logger: logger,
	}
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("server started", zap.String("address", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		s.logger.Info("shutting down server")
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error during server shutdown: %w", err)
		}
		return nil

	case err := <-errChan:
		return err
	}
}
