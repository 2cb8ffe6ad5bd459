// Package web serves the REST API and the embedded dashboard on top of the
// shared store.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"todomcp/internal/logging"
	"todomcp/internal/store"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

//go:embed assets
var assets embed.FS

const shutdownTimeout = 5 * time.Second

// Options configures the HTTP adapter.
type Options struct {
	Port int
	// CORSOrigins lists allowed origins; empty allows all.
	CORSOrigins []string
	// Metrics receives request counters. When nil a private set is created.
	Metrics *Metrics
}

type Server struct {
	store   *store.Store
	logger  *logging.AppLogger
	echo    *echo.Echo
	metrics *Metrics
	port    int
}

// New builds the echo instance with middleware and routes. Nothing listens
// until Start.
func New(st *store.Store, logger *logging.AppLogger, opts Options) *Server {
	if logger == nil {
		logger = logging.GetDefault()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}

	e := echo.New()
	// stdout belongs to the MCP transport when both adapters share a process.
	e.HideBanner = true
	e.HidePort = true
	e.Debug = logger.IsDebug()
	e.Logger.SetOutput(os.Stderr)

	s := &Server{
		store:   st,
		logger:  logger.With("component", "web"),
		echo:    e,
		metrics: opts.Metrics,
		port:    opts.Port,
	}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	e.Use(s.metrics.Middleware())
	e.Use(s.requestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: origins}))
	e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Root:       "assets",
		Index:      "index.html",
		HTML5:      true,
		Filesystem: http.FS(assets),
		Skipper:    skipAPI,
	}))

	s.routes()
	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on the configured port until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", s.port, err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs on an existing listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.echo.Listener = ln
	s.logger.Info("Todo web UI running", "url", fmt.Sprintf("http://localhost:%d", listenerPort(ln)))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start("")
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("Shutting down web server")
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown web server: %w", err)
		}
		return nil
	}
}

func listenerPort(ln net.Listener) int {
	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

func skipAPI(c echo.Context) bool {
	p := c.Request().URL.Path
	return p == "/metrics" || p == "/healthz" || p == "/api" || strings.HasPrefix(p, "/api/")
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			kv := []interface{}{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			switch {
			case v.Error != nil:
				s.logger.Error("Request failed", append(kv, "error", v.Error)...)
			case v.Status >= http.StatusInternalServerError:
				s.logger.Error("Request failed", kv...)
			default:
				s.logger.Debug("Request", kv...)
			}
			return nil
		},
	})
}
