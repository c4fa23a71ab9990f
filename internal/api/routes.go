package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hyperengineering/devtrack/internal/blob"
)

// NewRouter creates a new router with all routes configured
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteProblem(w, r, http.StatusNotFound, "Resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteProblem(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Locally stored screenshots are served from the URLs the uploader hands out.
	if local, ok := h.uploader.(*blob.LocalUploader); ok {
		r.Handle(blob.LocalURLPrefix+"*", local.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Get("/health", h.Health)
		r.Get("/dashboard", h.Dashboard)
		r.Get("/metrics", h.Metrics)
		r.Get("/charts", h.Charts)
		r.Get("/game-info", h.GameInfo)
		r.Get("/expenses/recent", h.RecentExpenses)
		r.Get("/budget", h.Budget)
		r.Get("/tasks/board", h.TaskBoard)
		r.Get("/screenshots", h.PublicScreenshots)
		r.Get("/updates", h.PublicUpdates)
		r.Get("/flow", h.PublicFlow)
		r.Get("/flow.svg", h.FlowSVG)
		r.Get("/vibe-checks/latest", h.LatestVibeCheck)
		r.Post("/newsletter", h.Newsletter)
		r.Post("/contribute", h.Contribute)
		r.Get("/export/{name}", h.Export)

		// Admin routes (auth required)
		r.Route("/admin", func(r chi.Router) {
			r.Use(AuthMiddleware(h.verify))

			r.Get("/settings", h.GetSettings)
			r.Put("/settings", h.UpdateSettings)

			r.Get("/expenses", h.ListExpenses())
			r.Post("/expenses", h.CreateExpense())
			r.Get("/income", h.ListIncome())
			r.Post("/income", h.CreateIncome())
			r.Get("/time-entries", h.ListTimeEntries())
			r.Post("/time-entries", h.CreateTimeEntry())

			r.Get("/planned-expenses", h.ListPlannedExpenses)
			r.Post("/planned-expenses", h.CreatePlannedExpense())
			r.Delete("/planned-expenses/{id}", h.DeletePlannedExpense)
			r.Post("/planned-expenses/{id}/mark-paid", h.MarkPlannedPaid)

			r.Get("/recurring-costs", h.ListRecurringCosts)
			r.Post("/recurring-costs", h.CreateRecurringCost())
			r.Post("/recurring-costs/process", h.ProcessRecurringCosts)
			r.Post("/recurring-costs/{id}/toggle", h.ToggleRecurringCost)
			r.Delete("/recurring-costs/{id}", h.DeleteRecurringCost)

			r.Get("/tasks", h.ListTasks())
			r.Post("/tasks", h.CreateTask())
			r.Get("/screenshots", h.ListScreenshots())
			r.Post("/screenshots", h.UploadScreenshot)
			r.Get("/updates", h.ListDevUpdates())
			r.Post("/updates", h.CreateDevUpdate())
			r.Get("/vibe-checks", h.ListVibeChecks())
			r.Post("/vibe-checks", h.CreateVibeCheck())

			r.Get("/flow/nodes", h.ListFlowNodes)
			r.Post("/flow/nodes", h.CreateFlowNode())
			r.Delete("/flow/nodes/{id}", h.DeleteFlowNode)
			r.Get("/flow/connections", h.ListFlowConnections)
			r.Post("/flow/connections", h.CreateFlowConnection())

			r.Get("/newsletter/subscribers", h.ListSubscribers())
			r.Get("/contributions", h.ListContributionClicks())
			r.Get("/contributions/summary", h.ContributionSummary)
		})
	})

	return r
}
