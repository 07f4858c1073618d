// Package web serves the snippet operations as a JSON API, with a
// server-sent event stream of captures.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hpungsan/intelliclip/internal/capture"
	"github.com/hpungsan/intelliclip/internal/config"
	"github.com/hpungsan/intelliclip/internal/enrich"
	"github.com/hpungsan/intelliclip/internal/store"
)

const shutdownTimeout = 5 * time.Second

// Deps are the components the HTTP handlers call into.
type Deps struct {
	Store      *store.Store
	Config     *config.Config
	Trigger    capture.Capturer
	Broker     *capture.Broker
	Worker     *enrich.Worker    // optional; reported by /api/health
	Summarizer enrich.Summarizer // nil when AI is not configured
	Logger     *slog.Logger
	Version    string
}

// NewRouter builds the API routes.
func NewRouter(deps Deps) http.Handler {
	h := newHandlers(deps)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.logger))
	r.Use(securityHeaders)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealth)
		r.Get("/events", h.HandleEvents)
		r.Post("/ask", h.HandleAsk)

		r.Route("/snippets", func(r chi.Router) {
			r.Get("/", h.HandleList)
			r.Post("/", h.HandleCapture)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.HandleGet)
				r.Delete("/", h.HandleDelete)
				r.Patch("/", h.HandleEdit)
				r.Put("/content", h.HandleUpdateContent)
				r.Put("/tags", h.HandleUpdateTags)
				r.Put("/language", h.HandleUpdateLanguage)
				r.Put("/summary", h.HandleUpdateSummary)
				r.Post("/ask", h.HandleAskAbout)
			})
		})
	})

	return r
}

// NewServer creates the HTTP server for the API.
func NewServer(deps Deps, bind string, port int) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request at Debug, or Warn for 5xx.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			level := slog.LevelDebug
			if ww.Status() >= 500 {
				level = slog.LevelWarn
			}
			logger.Log(r.Context(), level, "web: request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully. Request
// contexts derive from ctx so open event streams end on shutdown.
func Run(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	srv.BaseContext = func(net.Listener) context.Context { return ctx }

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("web: API listening", "url", "http://"+srv.Addr+"/api")
	if strings.HasPrefix(srv.Addr, "0.0.0.0:") || strings.HasPrefix(srv.Addr, "[::]:") || strings.HasPrefix(srv.Addr, ":") {
		logger.Warn("web: binding to all interfaces; the API may be reachable from the network")
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("web: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
