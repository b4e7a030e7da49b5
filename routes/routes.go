package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/lenny-lens/app"
	"github.com/upb/lenny-lens/handlers"
	"github.com/upb/lenny-lens/middleware"
	"github.com/upb/lenny-lens/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimw.RequestID)
	if deps.Config.Server.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.ClientIdentity)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(deps.Config.Server.RequestTimeout))

	// The API is public and carries no credentials
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	queryHandler := handlers.NewQueryHandler(deps.QueryService, deps.Logger)
	corpusHandler := handlers.NewCorpusHandler(deps.CorpusService, deps.Logger)
	healthHandler := handlers.NewHealthHandler(deps.CorpusService, deps.Logger)

	// Health check endpoints
	r.Get("/", healthHandler.HandleRoot)
	r.Get("/healthz", healthHandler.HandleLiveness)
	r.Get("/health", healthHandler.HandleHealth)

	// Conversational search
	r.Post("/search-with-answer", queryHandler.HandleSearch)
	r.Post("/clear-conversation", queryHandler.HandleClear)

	// Corpus reports
	r.Get("/guests", corpusHandler.HandleGuests)
	r.Get("/stats", corpusHandler.HandleStats)

	if deps.Config.Observability.MetricsEnabled {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteError(w, http.StatusMethodNotAllowed, utils.CodeBadRequest, "method not allowed", nil)
	})

	return r
}
