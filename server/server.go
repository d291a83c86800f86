// Package server exposes the HTTP API: health, readiness, metrics and a JSON rendition of
// the twitch command. It injects correlation IDs into request contexts for consistent
// logging and applies CORS and per-IP rate limiting.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/onnwee/livebot/config"
	"github.com/onnwee/livebot/livestatus"
)

// Deps are the collaborators of the HTTP surface.
type Deps struct {
	Config *config.Config
	Live   *livestatus.Command
}

// NewRouter returns the HTTP handler with all routes.
// The provided context is used for rate limiter cleanup goroutines lifecycle.
func NewRouter(ctx context.Context, deps Deps) http.Handler {
	handlers := NewHandlers(deps)
	limiter := newIPRateLimiter(ctx, deps.Config.RateLimitPerMinute)

	r := mux.NewRouter()
	r.Use(observe)

	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/healthz", handlers.HandleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", handlers.HandleReadyz).Methods(http.MethodGet)

	live := rateLimitMiddleware(http.HandlerFunc(handlers.HandleLive), limiter, deps.Config.TrustedProxies)
	r.Handle("/live", live).Methods(http.MethodGet)
	r.Handle("/live/{channel}", live).Methods(http.MethodGet)

	return newCORS(deps.Config.CORSAllowedOrigins).Handler(r)
}

// Start runs the HTTP server and shuts down gracefully on context cancellation.
func Start(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Shutdown goroutine
	go func() {
		<-ctx.Done()
		// Use WithoutCancel to inherit context values but allow shutdown to complete
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http server shutdown error", slog.Any("err", err))
		}
	}()

	slog.Info("http server listening", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("http server error", slog.Any("err", err))
		return err
	}
	return nil
}
