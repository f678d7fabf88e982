package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meera-jewels/retail-api/internal/auth"
	"github.com/meera-jewels/retail-api/internal/config"
	"github.com/meera-jewels/retail-api/internal/database"
	"github.com/meera-jewels/retail-api/internal/http/handler"
	"github.com/meera-jewels/retail-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/meera-jewels/retail-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg              *config.Config
	logger           *zap.Logger
	db               *gorm.DB
	authMiddleware   *auth.Middleware
	rateLimiter      *middleware.RateLimiter
	leadHandler      *handler.LeadHandler
	dashboardHandler *handler.DashboardHandler
	reportHandler    *handler.ReportHandler
	productHandler   *handler.ProductHandler
	customerHandler  *handler.CustomerHandler
	teamHandler      *handler.TeamHandler
	eventsHandler    *handler.EventsHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	leadHandler *handler.LeadHandler,
	dashboardHandler *handler.DashboardHandler,
	reportHandler *handler.ReportHandler,
	productHandler *handler.ProductHandler,
	customerHandler *handler.CustomerHandler,
	teamHandler *handler.TeamHandler,
	eventsHandler *handler.EventsHandler,
) *Router {
	return &Router{
		cfg:              cfg,
		logger:           logger,
		db:               db,
		authMiddleware:   authMiddleware,
		rateLimiter:      rateLimiter,
		leadHandler:      leadHandler,
		dashboardHandler: dashboardHandler,
		reportHandler:    reportHandler,
		productHandler:   productHandler,
		customerHandler:  customerHandler,
		teamHandler:      teamHandler,
		eventsHandler:    eventsHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.authMiddleware.Identify)
	r.Use(rt.rateLimiter.Limit)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Combined readiness check
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		status := http.StatusOK
		overall := "healthy"
		if !allHealthy {
			status = http.StatusServiceUnavailable
			overall = "unhealthy"
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": overall,
			"checks": checks,
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authMiddleware.RequireOperator)

		// Leads
		r.Route("/leads", func(r chi.Router) {
			r.Get("/", rt.leadHandler.List)
			r.Post("/", rt.leadHandler.Create)
			r.Get("/{id}", rt.leadHandler.GetByID)
			r.Put("/{id}", rt.leadHandler.Update)
			r.Get("/{id}/next-stage", rt.leadHandler.NextStage)
			r.Post("/{id}/transition", rt.leadHandler.Transition)
			r.Post("/{id}/assign", rt.leadHandler.Assign)
			r.Delete("/{id}/assign", rt.leadHandler.Unassign)
		})

		// Dashboard
		r.Get("/dashboard", rt.dashboardHandler.GetFloorDashboard)

		// Reports
		r.Route("/reports", func(r chi.Router) {
			r.Get("/", rt.reportHandler.List)
			r.Post("/", rt.reportHandler.Generate)
			r.Get("/{id}", rt.reportHandler.GetByID)
			r.Get("/{id}/export", rt.reportHandler.ExportCSV)
		})

		// Products
		r.Route("/products", func(r chi.Router) {
			r.Get("/", rt.productHandler.List)
			r.Post("/", rt.productHandler.Create)
			r.Get("/{id}", rt.productHandler.GetByID)
			r.Put("/{id}", rt.productHandler.Update)
		})

		// Customers
		r.Route("/customers", func(r chi.Router) {
			r.Get("/", rt.customerHandler.List)
			r.Post("/", rt.customerHandler.Create)
			r.Get("/{id}", rt.customerHandler.GetByID)
			r.Put("/{id}", rt.customerHandler.Update)
		})

		// Team (management endpoints require a floor manager)
		r.Route("/team", func(r chi.Router) {
			r.Get("/", rt.teamHandler.List)
			r.Get("/{id}", rt.teamHandler.GetByID)

			r.Group(func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireManager)
				r.Post("/", rt.teamHandler.Create)
				r.Put("/{id}", rt.teamHandler.Update)
			})
		})

		// Salespeople
		r.Get("/salespeople", rt.teamHandler.ListSalespeople)
		r.Get("/salespeople/{id}/active-leads", rt.teamHandler.GetActiveLeads)
	})

	// Change notification streams. Identified but not operator-gated so
	// wallboard displays can subscribe with the API key alone.
	r.Route("/events", func(r chi.Router) {
		r.Get("/leads", rt.eventsHandler.SubscribeLeads)
		r.Get("/reports", rt.eventsHandler.SubscribeReports)
	})

	return r
}
