package api

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/supportbot/internal/config"
)

// SetupRoutes configures all API routes
func SetupRoutes(h *Handlers, authCfg config.AuthConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS for the widget and dashboard frontends
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check (no auth)
	r.Get("/health", h.HealthCheck)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(tokenAuth(authCfg))

		r.Route("/conversations/{conversationID}", func(r chi.Router) {
			r.Post("/messages", h.PostMessage)
			r.Get("/messages", h.ListMessages)
			r.Get("/session", h.GetSession)
			r.Delete("/session", h.DeleteSession)
			r.Post("/archive", h.ArchiveConversation)
		})

		r.Get("/analytics/summary", h.AnalyticsSummary)
		r.Get("/engine/stats", h.EngineStats)
	})

	return r
}

// tokenAuth enforces bearer-token auth on the API surface. DEV_MODE=true
// bypasses the check for local development.
func tokenAuth(cfg config.AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled || os.Getenv("DEV_MODE") == "true" {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			token := strings.TrimPrefix(auth, "Bearer ")
			if token == "" || token == auth || token != cfg.Token {
				respondError(w, http.StatusUnauthorized, "invalid or missing API token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
