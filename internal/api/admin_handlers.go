package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/devtrack/internal/blob"
	"github.com/hyperengineering/devtrack/internal/types"
	"github.com/hyperengineering/devtrack/internal/validation"
)

// createHandler decodes a JSON body, validates it and stores it, writing
// 201 with the created record.
func createHandler[In any, Out any](
	validate func(In) []validation.ValidationError,
	create func(r *http.Request, in In) (Out, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in In
		if !decodeJSON(w, r, &in) {
			return
		}
		if errs := validate(in); len(errs) > 0 {
			WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
			return
		}
		out, err := create(r, in)
		if err != nil {
			MapStoreError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusCreated, out)
	}
}

// listHandler writes a limited, newest-first listing.
func listHandler[Out any](list func(r *http.Request, opts types.ListOptions) ([]Out, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, ok := listOptions(w, r)
		if !ok {
			return
		}
		items, err := list(r, opts)
		if err != nil {
			MapStoreError(w, r, err)
			return
		}
		if items == nil {
			items = []Out{}
		}
		writeJSON(w, r, http.StatusOK, items)
	}
}

// --- Settings ---

// GetSettings handles GET /api/v1/admin/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.GetSettings(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s)
}

// UpdateSettings handles PUT /api/v1/admin/settings. Only fields present
// in the body are changed.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch types.SettingsPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if errs := validation.ValidateSettingsPatch(patch); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}
	s, err := h.store.UpdateSettings(r.Context(), patch)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	LoggerFromContext(r.Context()).Info("settings updated", "component", "api", "action", "update_settings")
	writeJSON(w, r, http.StatusOK, s)
}

// --- Ledger ---

// CreateExpense handles POST /api/v1/admin/expenses
func (h *Handler) CreateExpense() http.HandlerFunc {
	return createHandler(validation.ValidateNewExpense, func(r *http.Request, in types.NewExpense) (*types.Expense, error) {
		return h.store.CreateExpense(r.Context(), in)
	})
}

// ListExpenses handles GET /api/v1/admin/expenses
func (h *Handler) ListExpenses() http.HandlerFunc {
	return listHandler(func(r *http.Request, opts types.ListOptions) ([]types.Expense, error) {
		return h.store.ListExpenses(r.Context(), opts)
	})
}

// CreateIncome handles POST /api/v1/admin/income
func (h *Handler) CreateIncome() http.HandlerFunc {
	return createHandler(validation.ValidateNewIncome, func(r *http.Request, in types.NewIncome) (*types.Income, error) {
		return h.store.CreateIncome(r.Context(), in)
	})
}

// ListIncome handles GET /api/v1/admin/income
func (h *Handler) ListIncome() http.HandlerFunc {
	return listHandler(func(r *http.Request, opts types.ListOptions) ([]types.Income, error) {
		return h.store.ListIncome(r.Context(), opts)
	})
}

// CreateTimeEntry handles POST /api/v1/admin/time-entries
func (h *Handler) CreateTimeEntry() http.HandlerFunc {
	return createHandler(validation.ValidateNewTimeEntry, func(r *http.Request, in types.NewTimeEntry) (*types.TimeEntry, error) {
		return h.store.CreateTimeEntry(r.Context(), in)
	})
}

// ListTimeEntries handles GET /api/v1/admin/time-entries
func (h *Handler) ListTimeEntries() http.HandlerFunc {
	return listHandler(func(r *http.Request, opts types.ListOptions) ([]types.TimeEntry, error) {
		return h.store.ListTimeEntries(r.Context(), opts)
	})
}

// --- Planning ---

// CreatePlannedExpense handles POST /api/v1/admin/planned-expenses
func (h *Handler) CreatePlannedExpense() http.HandlerFunc {
	return createHandler(validation.ValidateNewPlannedExpense, func(r *http.Request, in types.NewPlannedExpense) (*types.PlannedExpense, error) {
		return h.store.CreatePlannedExpense(r.Context(), in)
	})
}

// ListPlannedExpenses handles GET /api/v1/admin/planned-expenses.
// Purchased items are included only with ?includePurchased=true.
func (h *Handler) ListPlannedExpenses(w http.ResponseWriter, r *http.Request) {
	include, _ := strconv.ParseBool(r.URL.Query().Get("includePurchased"))
	items, err := h.store.ListPlannedExpenses(r.Context(), include)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	if items == nil {
		items = []types.PlannedExpense{}
	}
	writeJSON(w, r, http.StatusOK, items)
}

// DeletePlannedExpense handles DELETE /api/v1/admin/planned-expenses/{id}
func (h *Handler) DeletePlannedExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeletePlannedExpense(r.Context(), id); err != nil {
		MapStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkPlannedPaid handles POST /api/v1/admin/planned-expenses/{id}/mark-paid
func (h *Handler) MarkPlannedPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	expense, err := h.store.MarkPlannedPaid(r.Context(), id, h.clock.Now())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	LoggerFromContext(r.Context()).Info("planned expense purchased",
		"component", "api",
		"action", "mark_paid",
		"planned_expense_id", id,
		"expense_id", expense.ID,
	)
	writeJSON(w, r, http.StatusCreated, expense)
}

// --- Recurring costs ---

// CreateRecurringCost handles POST /api/v1/admin/recurring-costs
func (h *Handler) CreateRecurringCost() http.HandlerFunc {
	return createHandler(validation.ValidateNewRecurringCost, func(r *http.Request, in types.NewRecurringCost) (*types.RecurringCost, error) {
		return h.store.CreateRecurringCost(r.Context(), in)
	})
}

// ListRecurringCosts handles GET /api/v1/admin/recurring-costs
func (h *Handler) ListRecurringCosts(w http.ResponseWriter, r *http.Request) {
	costs, err := h.store.ListRecurringCosts(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	if costs == nil {
		costs = []types.RecurringCost{}
	}
	writeJSON(w, r, http.StatusOK, costs)
}

// ToggleRecurringCost handles POST /api/v1/admin/recurring-costs/{id}/toggle
func (h *Handler) ToggleRecurringCost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	cost, err := h.store.ToggleRecurringCost(r.Context(), id)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cost)
}

// DeleteRecurringCost handles DELETE /api/v1/admin/recurring-costs/{id}
func (h *Handler) DeleteRecurringCost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteRecurringCost(r.Context(), id); err != nil {
		MapStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ProcessRecurringCosts handles POST /api/v1/admin/recurring-costs/process
func (h *Handler) ProcessRecurringCosts(w http.ResponseWriter, r *http.Request) {
	result, err := h.processor.Process(r.Context())
	if err != nil {
		processed := 0
		if result != nil {
			processed = result.Processed
		}
		LoggerFromContext(r.Context()).Error("recurring processing incomplete",
			"component", "api",
			"action", "process_recurring",
			"processed", processed,
			"error", err,
		)
		WriteProblem(w, r, http.StatusInternalServerError, "Some recurring costs could not be processed")
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

// --- Board ---

// CreateTask handles POST /api/v1/admin/tasks
func (h *Handler) CreateTask() http.HandlerFunc {
	return createHandler(validation.ValidateNewTask, func(r *http.Request, in types.NewTask) (*types.Task, error) {
		return h.store.CreateTask(r.Context(), in)
	})
}

// ListTasks handles GET /api/v1/admin/tasks
func (h *Handler) ListTasks() http.HandlerFunc {
	return listHandler(func(r *http.Request, opts types.ListOptions) ([]types.Task, error) {
		return h.store.ListTasks(r.Context(), opts)
	})
}

// ListScreenshots handles GET /api/v1/admin/screenshots
func (h *Handler) ListScreenshots() http.HandlerFunc {
	return listHandler(func(r *http.Request, opts types.ListOptions) ([]types.Screenshot, error) {
		return h.store.ListScreenshots(r.Context(), opts)
	})
}

// multipartOverhead allows room for form fields around the image part.
const multipartOverhead = 1 << 20

// UploadScreenshot handles POST /api/v1/admin/screenshots (multipart/form-data).
// The "image" part holds the file; title, description, category, date and
// isBeforeAfter are form fields.
func (h *Handler) UploadScreenshot(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			MapStoreError(w, r, blob.ErrTooLarge)
			return
		}
		WriteProblem(w, r, http.StatusBadRequest, "Expected a multipart/form-data body")
		return
	}
	defer r.MultipartForm.RemoveAll()

	meta := types.NewScreenshot{
		Title:         r.FormValue("title"),
		Description:   r.FormValue("description"),
		Category:      r.FormValue("category"),
		Date:          r.FormValue("date"),
		IsBeforeAfter: formBool(r.FormValue("isBeforeAfter")),
	}
	if meta.Date == "" {
		meta.Date = h.today()
	}
	if meta.Category == "" {
		meta.Category = types.DefaultCategory
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", []validation.ValidationError{
			{Field: "image", Message: "is required"},
		})
		return
	}
	defer file.Close()

	meta.Filename = header.Filename
	if errs := validation.ValidateNewScreenshot(meta); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	img, err := blob.ReadImage(file, h.maxUploadBytes)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	key := blob.ScreenshotKey(header.Filename, img.Extension)
	url, err := h.uploader.Put(r.Context(), key, img.Reader(), int64(len(img.Data)), img.ContentType)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	meta.ImageURL = url

	shot, err := h.store.CreateScreenshot(r.Context(), meta)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	LoggerFromContext(r.Context()).Info("screenshot uploaded",
		"component", "api",
		"action", "upload_screenshot",
		"screenshot_id", shot.ID,
		"key", key,
		"bytes", len(img.Data),
	)
	writeJSON(w, r, http.StatusCreated, shot)
}

func formBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// CreateDevUpdate handles POST /api/v1/admin/updates
func (h *Handler) CreateDevUpdate() http.HandlerFunc {
	return createHandler(validation.ValidateNewDevUpdate, func(r *http.Request, in types.NewDevUpdate) (*types.DevUpdate, error) {
		return h.store.CreateDevUpdate(r.Context(), in)
	})
}

// ListDevUpdates handles GET /api/v1/admin/updates
func (h *Handler) ListDevUpdates() http.HandlerFunc {
	return listHandler(func(r *http.Request, opts types.ListOptions) ([]types.DevUpdate, error) {
		return h.store.ListDevUpdates(r.Context(), opts)
	})
}

// CreateVibeCheck handles POST /api/v1/admin/vibe-checks
func (h *Handler) CreateVibeCheck() http.HandlerFunc {
	return createHandler(validation.ValidateNewVibeCheck, func(r *http.Request, in types.NewVibeCheck) (*types.VibeCheck, error) {
		return h.store.CreateVibeCheck(r.Context(), in)
	})
}

// ListVibeChecks handles GET /api/v1/admin/vibe-checks
func (h *Handler) ListVibeChecks() http.HandlerFunc {
	return listHandler(func(r *http.Request, opts types.ListOptions) ([]types.VibeCheck, error) {
		return h.store.ListVibeChecks(r.Context(), opts)
	})
}

// --- Flow ---

// CreateFlowNode handles POST /api/v1/admin/flow/nodes
func (h *Handler) CreateFlowNode() http.HandlerFunc {
	return createHandler(validation.ValidateNewFlowNode, func(r *http.Request, in types.NewFlowNode) (*types.FlowNode, error) {
		return h.store.CreateFlowNode(r.Context(), in)
	})
}

// ListFlowNodes handles GET /api/v1/admin/flow/nodes
func (h *Handler) ListFlowNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.store.ListFlowNodes(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	if nodes == nil {
		nodes = []types.FlowNode{}
	}
	writeJSON(w, r, http.StatusOK, nodes)
}

// DeleteFlowNode handles DELETE /api/v1/admin/flow/nodes/{id}. Connections
// touching the node are removed with it.
func (h *Handler) DeleteFlowNode(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteFlowNode(r.Context(), id); err != nil {
		MapStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateFlowConnection handles POST /api/v1/admin/flow/connections
func (h *Handler) CreateFlowConnection() http.HandlerFunc {
	return createHandler(validation.ValidateNewFlowConnection, func(r *http.Request, in types.NewFlowConnection) (*types.FlowConnection, error) {
		return h.store.CreateFlowConnection(r.Context(), in)
	})
}

// ListFlowConnections handles GET /api/v1/admin/flow/connections
func (h *Handler) ListFlowConnections(w http.ResponseWriter, r *http.Request) {
	conns, err := h.store.ListFlowConnections(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	if conns == nil {
		conns = []types.FlowConnection{}
	}
	writeJSON(w, r, http.StatusOK, conns)
}

// --- Audience ---

// ListSubscribers handles GET /api/v1/admin/newsletter/subscribers
func (h *Handler) ListSubscribers() http.HandlerFunc {
	return listHandler(func(r *http.Request, opts types.ListOptions) ([]types.NewsletterSubscriber, error) {
		return h.store.ListSubscribers(r.Context(), opts)
	})
}

// ListContributionClicks handles GET /api/v1/admin/contributions
func (h *Handler) ListContributionClicks() http.HandlerFunc {
	return listHandler(func(r *http.Request, opts types.ListOptions) ([]types.ContributionClick, error) {
		return h.store.ListContributionClicks(r.Context(), opts)
	})
}

// ContributionSummary handles GET /api/v1/admin/contributions/summary
func (h *Handler) ContributionSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.store.SummarizeContributions(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	if summary == nil {
		summary = []types.ContributionSummary{}
	}
	writeJSON(w, r, http.StatusOK, summary)
}

// pathID reads and validates the {id} URL parameter.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if verr := validation.ValidateULID("id", id); verr != nil {
		WriteProblemWithErrors(w, r, "Invalid id", []validation.ValidationError{*verr})
		return "", false
	}
	return id, true
}
