package rest

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"catalog-backend/application/ports"
	"catalog-backend/infrastructure/config"
	"catalog-backend/interfaces/http/rest/handlers"
	"catalog-backend/interfaces/http/rest/middleware"
	"catalog-backend/pkg/errors"
	"catalog-backend/pkg/observability"
)

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Router creates and configures the HTTP router
type Router struct {
	repos   ports.Repositories
	metrics *observability.Metrics
	cfg     *config.Config
	db      Pinger
	logger  *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	repos ports.Repositories,
	metrics *observability.Metrics,
	cfg *config.Config,
	db Pinger,
	logger *zap.Logger,
) *Router {
	return &Router{
		repos:   repos,
		metrics: metrics,
		cfg:     cfg,
		db:      db,
		logger:  logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.cfg.EnableMetrics {
		router.Use(rt.metrics.Middleware)
	}

	// CORS configuration
	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.cfg.EnableMetrics {
		router.Handle("/metrics", rt.metrics.Handler())
	}

	errorHandler := errors.NewErrorHandler(rt.logger, rt.cfg.IsDevelopment())
	defaultSize, maxSize := rt.cfg.DefaultPageSize, rt.cfg.MaxPageSize

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/domains", func(r chi.Router) {
			h := handlers.NewDomainHandler(rt.repos.Domains, errorHandler, rt.logger, defaultSize, maxSize)
			r.Post("/", h.CreateDomain)
			r.Get("/", h.ListDomains)
			r.Get("/count", h.CountDomains)
			r.Get("/{domainID}", h.GetDomain)
			r.Patch("/{domainID}", h.UpdateDomain)
			r.Delete("/{domainID}", h.DeleteDomain)
		})

		r.Route("/domain-products", func(r chi.Router) {
			h := handlers.NewDomainProductHandler(rt.repos.DomainProducts, errorHandler, rt.logger, defaultSize, maxSize)
			r.Post("/", h.CreateDomainProduct)
			r.Get("/", h.ListDomainProducts)
			r.Get("/{domainProductID}", h.GetDomainProduct)
			r.Patch("/{domainProductID}", h.UpdateDomainProduct)
			r.Patch("/{domainProductID}/resource-types", h.UpdateResourceTypes)
			r.Delete("/{domainProductID}", h.DeleteDomainProduct)
		})

		r.Route("/products", func(r chi.Router) {
			h := handlers.NewProductHandler(rt.repos.Products, errorHandler, rt.logger, defaultSize, maxSize)
			r.Post("/", h.CreateProduct)
			r.Get("/", h.ListProducts)
			r.Get("/{productID}", h.GetProduct)
			r.Patch("/{productID}", h.UpdateProduct)
			r.Delete("/{productID}", h.DeleteProduct)
		})

		r.Route("/components", func(r chi.Router) {
			h := handlers.NewComponentHandler(rt.repos.Components, errorHandler, rt.logger, defaultSize, maxSize)
			r.Post("/", h.CreateComponent)
			r.Get("/", h.ListComponents)
			r.Get("/{type}/{componentID}", h.GetComponent)
			r.Patch("/{type}/{componentID}", h.UpdateComponent)
			r.Delete("/{type}/{componentID}", h.DeleteComponent)
		})

		r.Route("/relations", func(r chi.Router) {
			h := handlers.NewRelationHandler(rt.repos.Relations, errorHandler, rt.logger)
			r.Post("/", h.CreateRelation)
			r.Patch("/", h.MoveRelation)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck reports ready only when the database answers a ping
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if rt.db != nil {
		if err := rt.db.Ping(req.Context()); err != nil {
			rt.logger.Warn("Readiness check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
