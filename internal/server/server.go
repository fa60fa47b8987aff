// Package server wires the analysis service, the browser client and the
// platform middleware into one HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/yousuf64/shift"
	"golang.org/x/sync/errgroup"

	"github.com/Bahjat/a11y-insight-tool/internal/analyzer"
	"github.com/Bahjat/a11y-insight-tool/internal/platform/config"
	"github.com/Bahjat/a11y-insight-tool/internal/platform/metrics"
	"github.com/Bahjat/a11y-insight-tool/internal/platform/middleware"
	"github.com/Bahjat/a11y-insight-tool/internal/platform/tracing"
	"github.com/Bahjat/a11y-insight-tool/internal/prompt"
	"github.com/Bahjat/a11y-insight-tool/internal/provider"
	"github.com/Bahjat/a11y-insight-tool/internal/web"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP front of the analysis service.
type Server struct {
	cfg     config.Config
	logger  *slog.Logger
	handler http.Handler
}

// New builds the service graph for cfg.
func New(cfg config.Config, logger *slog.Logger, version string) (*Server, error) {
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New(cfg.ServiceName)
		m.SetServiceInfo(version, runtime.Version())
	}

	svc, err := NewService(cfg, logger, m)
	if err != nil {
		return nil, err
	}

	router := shift.New()
	router.Use(tracing.Middleware)
	if m != nil {
		router.Use(m.HTTPMiddleware)
	}
	router.Use(errorMiddleware(logger))

	router.OPTIONS("/*path", handleOptions)
	analyzer.NewTransport(svc, analyzer.TransportConfig{
		MaxRequestBytes: cfg.MaxRequestBytes,
		HasGoogle:       cfg.Google.APIKey != "",
	}, logger).RegisterRoutes(router)
	web.RegisterRoutes(router)
	if m != nil {
		metricsHandler := m.Handler()
		router.GET("/metrics", func(w http.ResponseWriter, r *http.Request, _ shift.Route) error {
			metricsHandler.ServeHTTP(w, r)
			return nil
		})
	}

	var h http.Handler = router.Serve()
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.RequestID(h)

	return &Server{cfg: cfg, logger: logger, handler: h}, nil
}

// NewService builds the analysis service for cfg. m may be nil.
func NewService(cfg config.Config, logger *slog.Logger, m *metrics.Metrics) (*analyzer.Service, error) {
	builder, err := prompt.NewBuilder(cfg.ReportLanguage)
	if err != nil {
		return nil, err
	}

	opts := []provider.Option{provider.WithLogger(logger)}
	var recorder analyzer.Recorder
	if m != nil {
		opts = append(opts, provider.WithObserver(m))
		recorder = m
	}

	relay := provider.FromConfig(cfg, opts...)
	if !relay.Configured() {
		logger.Warn("no API key configured for the selected provider; analyses will return 503",
			"provider", relay.Name())
	}
	return analyzer.NewService(relay, builder, recorder, logger), nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on the configured port until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort("", s.cfg.Port),
		Handler:           s.handler,
		BaseContext:       func(net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return serve(ctx, srv, s.logger, func() error { return srv.ListenAndServe() })
}

func serve(ctx context.Context, srv *http.Server, logger *slog.Logger, listen func() error) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening", "addr", srv.Addr)
		if err := listen(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func handleOptions(w http.ResponseWriter, _ *http.Request, _ shift.Route) error {
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// errorMiddleware turns a handler error into a logged 500. Handlers write
// their own responses for every expected failure.
func errorMiddleware(logger *slog.Logger) func(shift.HandlerFunc) shift.HandlerFunc {
	return func(next shift.HandlerFunc) shift.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request, route shift.Route) error {
			err := next(w, r, route)
			if err != nil {
				logger.ErrorContext(r.Context(), "request error",
					slog.String("method", r.Method),
					slog.String("route", route.Path),
					slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
			return err
		}
	}
}

// ListenAndServe installs tracing, builds the server for cfg and serves until
// ctx is cancelled.
func ListenAndServe(ctx context.Context, cfg config.Config, logger *slog.Logger, version string) error {
	shutdownTracing, err := tracing.Setup(ctx, cfg.ServiceName, version, cfg.ZipkinURL)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	srv, err := New(cfg, logger, version)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
