package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/GriffinCanCode/claritty/internal/api/middleware"
	handlers "github.com/GriffinCanCode/claritty/internal/http"
	"github.com/GriffinCanCode/claritty/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/claritty/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/claritty/internal/ws"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Config contains server configuration
type Config struct {
	Addr             string
	RateLimit        middleware.RateLimitConfig
	RateLimitEnabled bool
	CORS             middleware.CORSConfig
	MetricsInterval  time.Duration
}

// Source is the driving loop as seen by the API.
type Source interface {
	handlers.ViewSource
	ws.Publisher
}

// Deps are the collaborators the routes read from.
type Deps struct {
	Source   Source
	Session  handlers.SessionInfo
	Metrics  *monitoring.Metrics
	Registry *prometheus.Registry
	Logger   *zap.Logger
}

// Server wraps the HTTP server and its router
type Server struct {
	router *gin.Engine
	http   *http.Server
	logger *zap.Logger
}

// New creates a server. It does not listen until Run.
func New(cfg Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware())
	router.Use(middleware.RequestLogger(logger))
	if deps.Metrics != nil {
		router.Use(monitoring.Middleware(deps.Metrics))
	}
	router.Use(middleware.CORS(cfg.CORS))
	if cfg.RateLimitEnabled {
		router.Use(middleware.RateLimit(cfg.RateLimit))
	}

	h := handlers.NewHandlers(deps.Source, deps.Session, deps.Metrics)

	wsOpts := []ws.Option{ws.WithMetrics(deps.Metrics)}
	if cfg.MetricsInterval > 0 {
		wsOpts = append(wsOpts, ws.WithMetricsInterval(cfg.MetricsInterval))
	}
	if deps.Session != nil {
		wsOpts = append(wsOpts, ws.WithSessionID(deps.Session.Info().ID))
	}
	wsHandler := ws.NewHandler(deps.Source, logger, wsOpts...)

	// Register routes
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.GET("/output", h.Output)
	router.GET("/metrics/current", h.CurrentMetrics)
	if deps.Registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}
	router.GET("/stream", wsHandler.HandleConnection)

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger.Named("server"),
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("Inspection API listening", zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		// Hijacked websocket connections are not tracked by Shutdown.
		_ = s.http.Close()
		return err
	}
	s.logger.Info("Inspection API stopped")
	return nil
}
