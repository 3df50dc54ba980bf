// Package server wires the HTTP surface: routing, authentication, request
// logging and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okimc/toolperks/internal/database"
	"github.com/okimc/toolperks/internal/handler"
	"github.com/okimc/toolperks/internal/logger"
	"github.com/okimc/toolperks/internal/metrics"
	"github.com/okimc/toolperks/internal/perks"
)

// Server hosts the perks API.
type Server struct {
	httpServer *http.Server
	dbPool     database.Pool
	service    perks.Service
}

// NewServer builds the router and middleware stack.
func NewServer(port int, apiKey string, dbPool database.Pool, service perks.Service,
	catalog handler.CatalogReader, reload func(ctx context.Context) (int, error)) *Server {
	r := chi.NewRouter()

	// Chi middleware executes in order defined (outermost to innermost)
	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(apiKey))
	r.Use(RequestSizeLimitMiddleware(MaxRequestBodyBytes))
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(dbPool))

	// Version endpoint (public, for deployment verification)
	r.Get("/version", handler.HandleVersion())

	// Metrics endpoint (public, for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	rollHandler := handler.NewRollHandler(service)
	perkHandler := handler.NewPerkHandler(service)
	rollsHandler := handler.NewRollsHandler(service)
	userHandler := handler.NewUserHandler(service)
	catalogHandler := handler.NewCatalogHandler(catalog, reload)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/perks", func(r chi.Router) {
			r.Post("/roll", rollHandler.HandleRoll)
			r.Post("/assign", perkHandler.HandleAssignPerk)
			r.Post("/upgrade", perkHandler.HandleUpgradePerk)
			r.Delete("/{userID}/{toolType}", perkHandler.HandleRemovePerk)
		})

		r.Route("/rolls", func(r chi.Router) {
			r.Post("/add", rollsHandler.HandleAddRolls)
			r.Post("/set", rollsHandler.HandleSetRolls)
			r.Post("/remove", rollsHandler.HandleRemoveRolls)
		})

		r.Post("/pity/reset", rollsHandler.HandleResetPity)
		r.Post("/animations/toggle", rollsHandler.HandleToggleAnimations)

		r.Route("/users", func(r chi.Router) {
			r.Get("/{userID}/state", userHandler.HandleGetState)
			r.Get("/{userID}/profile", userHandler.HandleGetProfile)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/{userID}", userHandler.HandleConnect)
			r.Delete("/{userID}", userHandler.HandleDisconnect)
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/tools", catalogHandler.HandleGetTools)
			r.Get("/perks", catalogHandler.HandleGetPerks)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/reload", catalogHandler.HandleReload)
		})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		dbPool:  dbPool,
		service: service,
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Health and metrics probes would drown the log.
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		requestID := logger.GenerateRequestID()
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		log := logger.FromContext(ctx)
		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	})
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
