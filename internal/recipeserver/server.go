// Package recipeserver exposes the trending/discover pipelines over REST and MCP.
package recipeserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go_flavr/internal/engine"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Discoverer runs one-shot aggregations.
type Discoverer interface {
	Build(ctx context.Context, filter string, limit int) ([]engine.RecipeCard, error)
}

// Server wires the pipelines into HTTP handlers.
type Server struct {
	Trending    *engine.FreshnessCache
	Discover    Discoverer
	Importer    *Importer
	AdminSecret string
	Started     time.Time
	MCP         *mcp.Server // nil disables /mcp
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Admin-Secret", "Mcp-Session-Id"},
		ExposedHeaders: []string{"Mcp-Session-Id"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/trending", s.handleTrending)
	r.Post("/admin/refresh-trending", s.handleRefreshTrending)
	r.Get("/discover", s.handleDiscover)
	r.HandleFunc("/import", s.handleImport)
	r.Handle("/metrics", promhttp.Handler())

	if s.MCP != nil {
		srv := s.MCP
		r.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return srv }, nil))
	}
	return r
}

// requestLogger logs one line per request through slog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Debug("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	})
}
