package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter assembles the /api route tree. Handlers receive their stores as
// explicit dependencies; nothing here reads globals.
func NewRouter(trees *TreeHandler, nodes *NodeHandler, relationships *RelationshipHandler, layouts *LayoutHandler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", health)
		api.Route("/trees", func(rt chi.Router) {
			trees.Register(rt)
			layouts.Register(rt)
		})
		api.Route("/nodes", nodes.Register)
		api.Route("/relationships", relationships.Register)
	})
	return r
}

// health reports liveness; it deliberately does not touch the database.
func health(w http.ResponseWriter, _ *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
