package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fieldworks/woms/internal/observability"
	"github.com/fieldworks/woms/internal/ratelimit"
	"github.com/fieldworks/woms/internal/realtime"
	"github.com/fieldworks/woms/internal/server/handlers"
	servermw "github.com/fieldworks/woms/internal/server/middleware"
)

// registerRoutes registers all HTTP routes. Reads carry the lenient quota,
// writes the moderate one, and assignment the strict one with a dedicated
// message so throttled callers can tell which budget they exhausted.
func (s *Server) registerRoutes(opts Options) {
	s.router.Get("/health", opts.Health.HealthHandler)
	s.router.Get("/health/live", opts.Health.LivenessHandler)
	s.router.Get("/health/ready", opts.Health.ReadinessHandler)

	s.router.Get("/version", handlers.VersionHandler)

	if opts.Config.Metrics.Enabled {
		s.router.Get("/metrics", handlers.MetricsHandler)
	}

	if opts.Hub != nil {
		s.router.Get("/ws", realtime.Handler(opts.Hub, opts.Config.Realtime, observability.ServerLogger))
	}

	api := opts.API

	read := s.limit(opts.Limiter, "read", ratelimit.Lenient())
	write := s.limit(opts.Limiter, "write", ratelimit.Moderate())

	strictCfg := ratelimit.Strict()
	strictCfg.Message = "Too many requests to a sensitive endpoint, please try again later."
	assign := s.limit(opts.Limiter, "assign", strictCfg)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(read)
			r.Get("/technicians", api.ListTechnicians)
			r.Get("/technicians/{id}", api.GetTechnician)
			r.Get("/customers", api.ListCustomers)
			r.Get("/customers/{id}", api.GetCustomer)
			r.Get("/assets", api.ListAssets)
			r.Get("/assets/{id}", api.GetAsset)
			r.Get("/work-orders", api.ListWorkOrders)
			r.Get("/work-orders/{id}", api.GetWorkOrder)
			r.Get("/schedules", api.ListSchedules)
			r.Get("/schedules/stats", api.ScheduleStats)
			r.Get("/schedules/{id}", api.GetSchedule)
		})

		r.Group(func(r chi.Router) {
			r.Use(write)
			r.Post("/technicians", api.CreateTechnician)
			r.Patch("/technicians/{id}", api.UpdateTechnician)
			r.Post("/customers", api.CreateCustomer)
			r.Patch("/customers/{id}", api.UpdateCustomer)
			r.Post("/assets", api.CreateAsset)
			r.Patch("/assets/{id}", api.UpdateAsset)
			r.Post("/work-orders", api.CreateWorkOrder)
			r.Patch("/work-orders/{id}", api.UpdateWorkOrder)
			r.Post("/schedules", api.CreateSchedule)
			r.Patch("/schedules/{id}", api.UpdateSchedule)
		})

		r.Group(func(r chi.Router) {
			r.Use(assign)
			r.Post("/work-orders/{id}/assign", api.AssignWorkOrder)
		})
	})
}

// limit builds the rate-limit middleware for one route group. A nil limiter
// disables throttling, which the test server relies on.
func (s *Server) limit(limiter *ratelimit.Limiter, route string, cfg ratelimit.Config) func(http.Handler) http.Handler {
	if limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return ratelimit.Middleware(limiter, route, cfg, func(r *http.Request) string {
		return servermw.GetUserID(r.Context())
	})
}
