package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/grappleoss/backend/internal/config"
	"github.com/grappleoss/backend/internal/http/api/routes"
	"github.com/grappleoss/backend/internal/http/health"
	applog "github.com/grappleoss/backend/internal/platform/logging"
	"github.com/grappleoss/backend/internal/platform/metrics"
	appmiddleware "github.com/grappleoss/backend/internal/platform/middleware"
	"github.com/grappleoss/backend/internal/platform/openapi"
	"github.com/grappleoss/backend/internal/platform/respond"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

func main() {
	ctx := context.Background()
	defer func() {
		// Syncing stdout returns EINVAL on some platforms; nothing to do about it at exit.
		_ = applog.Sync()
	}()
	if err := applog.Err(); err != nil {
		applog.LogError(ctx, "logger init error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		applog.LogFatal(ctx, "config load failed", err)
	}
	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		applog.LogFatal(ctx, "invalid log level", err)
	}

	var reg *metrics.Registry
	if cfg.MetricsEnabled {
		reg = metrics.New(metrics.WithRuntimeCollectors())
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(cfg, reg),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10, // 64 KB
	}

	listenErr := make(chan error, 1)
	go func() {
		applog.LogInfo(ctx, "server listening",
			zap.String("addr", srv.Addr),
			zap.Strings("allowedOrigins", cfg.AllowedOrigins),
			zap.String("version", Version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-listenErr:
		applog.LogFatal(ctx, "listen failed", err, zap.String("addr", srv.Addr))
	case sig := <-stop:
		applog.LogInfo(ctx, "shutdown signal received", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		applog.LogError(shutdownCtx, "server shutdown error", err)
	}
	applog.LogInfo(ctx, "server exited")
}

// newRouter assembles the middleware stack and mounts every route. reg may
// be nil, in which case no metrics are recorded or exposed.
func newRouter(cfg *config.Config, reg *metrics.Registry) http.Handler {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	router.Use(
		appmiddleware.Security(openapi.DocsPath),
		appmiddleware.Vary(),
		appmiddleware.CORS(appmiddleware.CORSConfig{
			AllowedOrigins: cfg.AllowedOrigins,
			MaxAge:         cfg.CORSMaxAge,
		}),
		appmiddleware.RequestID(),
		// RealIP trusts X-Real-IP / X-Forwarded-For; only deploy behind a trusted proxy.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(1<<20), // 1 MB
		applog.RequestLogger(),
		applog.AccessLogger(),
	)
	if reg != nil {
		router.Use(reg.Middleware())
	}
	// chi rejects Use once a route exists, so every middleware goes above this line.
	router.Use(respond.Recoverer())

	router.Get("/health", health.Handler(Version))
	if reg != nil {
		router.Method(http.MethodGet, "/metrics", reg.Handler())
	}

	api := humachi.New(router, openapi.Config(Version))
	openapi.AdvertiseCBOR(api)
	routes.Register(api)

	return router
}
