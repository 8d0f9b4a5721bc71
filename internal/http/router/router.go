package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/amalthea/finance-api/internal/auth"
	"github.com/amalthea/finance-api/internal/config"
	"github.com/amalthea/finance-api/internal/database"
	"github.com/amalthea/finance-api/internal/domain"
	"github.com/amalthea/finance-api/internal/http/handler"
	"github.com/amalthea/finance-api/internal/http/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/amalthea/finance-api/docs" // Import generated swagger docs
)

const healthCheckTimeout = 2 * time.Second

type Router struct {
	cfg             *config.Config
	logger          *zap.Logger
	db              *gorm.DB
	authMiddleware  *auth.Middleware
	rateLimiter     *middleware.RateLimiter
	sequenceHandler *handler.SequenceHandler
	documentHandler *handler.DocumentHandler
	projectHandler  *handler.ProjectHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	sequenceHandler *handler.SequenceHandler,
	documentHandler *handler.DocumentHandler,
	projectHandler *handler.ProjectHandler,
) *Router {
	return &Router{
		cfg:             cfg,
		logger:          logger,
		db:              db,
		authMiddleware:  authMiddleware,
		rateLimiter:     rateLimiter,
		sequenceHandler: sequenceHandler,
		documentHandler: documentHandler,
		projectHandler:  projectHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)
	if d := rt.cfg.Server.RequestTimeoutDuration(); d > 0 {
		r.Use(chimw.Timeout(d))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Get("/health/db", rt.databaseHealth)
	r.Get("/health/ready", rt.readiness)

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	requireRead := rt.authMiddleware.RequirePermission(domain.PermissionDocumentsRead)
	requireProjects := rt.authMiddleware.RequirePermission(domain.PermissionProjectsRead)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authMiddleware.Authenticate)
		r.Use(middleware.CaptureUser)
		r.Use(rt.rateLimiter.LimitByUser)

		r.With(rt.authMiddleware.RequirePermission(domain.PermissionSequencesAdmin)).
			Get("/sequences", rt.sequenceHandler.List)
		r.Route("/sequences/{docType}", func(r chi.Router) {
			r.With(requireRead).Get("/", rt.sequenceHandler.Peek)
			r.With(rt.authMiddleware.RequirePermission(domain.PermissionDocumentsWrite)).
				Post("/allocate", rt.sequenceHandler.Allocate)
			r.With(rt.authMiddleware.RequirePermission(domain.PermissionSequencesAdmin)).
				Put("/", rt.sequenceHandler.Initialize)
		})

		r.Route("/documents/{kind}", func(r chi.Router) {
			r.Use(requireRead)
			r.Get("/", rt.documentHandler.List)
			r.Post("/", rt.documentHandler.Create)
			r.Get("/stats", rt.documentHandler.Stats)
			r.Post("/bulk-transitions", rt.documentHandler.BulkTransition)
			r.Get("/{id}", rt.documentHandler.GetByID)
			r.Put("/{id}", rt.documentHandler.Update)
			r.Get("/{id}/state", rt.documentHandler.GetState)
			r.Get("/{id}/transitions", rt.documentHandler.AllowedTransitions)
			r.Post("/{id}/transitions", rt.documentHandler.Transition)
			r.Get("/{id}/history", rt.documentHandler.History)
		})

		r.With(requireRead).Post("/expenses/{id}/invoice", rt.documentHandler.AddExpenseToInvoice)

		r.Route("/projects", func(r chi.Router) {
			r.Use(requireProjects)
			r.Get("/", rt.projectHandler.List)
			r.Post("/", rt.projectHandler.Create)
			r.Get("/{id}", rt.projectHandler.GetByID)
			r.Get("/{id}/financials", rt.projectHandler.GetFinancials)
			r.Get("/{id}/overview", rt.projectHandler.GetOverview)
			r.With(requireRead).Get("/{id}/billable-expenses", rt.projectHandler.ListBillableExpenses)
			r.Get("/{id}/tasks", rt.projectHandler.ListTasks)
			r.Post("/{id}/tasks", rt.projectHandler.CreateTask)
			r.Put("/{id}/tasks/{taskId}/state", rt.projectHandler.UpdateTaskState)
		})
	})

	return r
}

func (rt *Router) databaseHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	stats, err := database.HealthCheckWithStats(ctx, rt.db)
	if err != nil {
		rt.logger.Error("Database health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "unhealthy",
			"service": "database",
			"error":   err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "database",
		"stats":   stats,
	})
}

func (rt *Router) readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	checks := map[string]interface{}{}
	status, code := "healthy", http.StatusOK
	if err := database.HealthCheck(ctx, rt.db); err != nil {
		rt.logger.Error("Database health check failed", zap.Error(err))
		checks["database"] = map[string]string{"status": "unhealthy", "error": err.Error()}
		status, code = "unhealthy", http.StatusServiceUnavailable
	} else {
		checks["database"] = map[string]string{"status": "healthy"}
	}

	writeJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
