package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/devtrack/internal/export"
	"github.com/hyperengineering/devtrack/internal/flow"
	"github.com/hyperengineering/devtrack/internal/store"
	"github.com/hyperengineering/devtrack/internal/types"
	"github.com/hyperengineering/devtrack/internal/validation"
)

// Flow SVG size bounds, in pixels.
const (
	defaultSVGWidth  = 800
	defaultSVGHeight = 600
	maxSVGSize       = 4000
)

// Dashboard handles GET /api/v1/dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.dashboard.Dashboard(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, d)
}

// Metrics handles GET /api/v1/metrics
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.dashboard.Metrics(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, m)
}

// Charts handles GET /api/v1/charts
func (h *Handler) Charts(w http.ResponseWriter, r *http.Request) {
	c, err := h.dashboard.Charts(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, c)
}

// GameInfo handles GET /api/v1/game-info
func (h *Handler) GameInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.dashboard.GameInfo(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, info)
}

// RecentExpenses handles GET /api/v1/expenses/recent
func (h *Handler) RecentExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.dashboard.RecentExpenses(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, expenses)
}

// Budget handles GET /api/v1/budget
func (h *Handler) Budget(w http.ResponseWriter, r *http.Request) {
	b, err := h.dashboard.Budget(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, b)
}

// TaskBoard handles GET /api/v1/tasks/board
func (h *Handler) TaskBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.dashboard.TaskBoard(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, board)
}

// PublicScreenshots handles GET /api/v1/screenshots?filter=
func (h *Handler) PublicScreenshots(w http.ResponseWriter, r *http.Request) {
	shots, err := h.dashboard.Screenshots(r.Context(), r.URL.Query().Get("filter"))
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, shots)
}

// PublicUpdates handles GET /api/v1/updates?limit=
func (h *Handler) PublicUpdates(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			WriteProblem(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxListLimit)
	}

	cards, err := h.dashboard.Updates(r.Context(), limit)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cards)
}

// PublicFlow handles GET /api/v1/flow
func (h *Handler) PublicFlow(w http.ResponseWriter, r *http.Request) {
	diagram, err := h.dashboard.Flow(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, diagram)
}

// FlowSVG handles GET /api/v1/flow.svg?width=&height=&scale=&x=&y=
func (h *Handler) FlowSVG(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var c validation.Collector
	width := intParam(&c, q.Get("width"), "width", defaultSVGWidth)
	height := intParam(&c, q.Get("height"), "height", defaultSVGHeight)
	scale := floatParam(&c, q.Get("scale"), "scale", 1)
	offsetX := floatParam(&c, q.Get("x"), "x", 0)
	offsetY := floatParam(&c, q.Get("y"), "y", 0)
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Invalid rendering parameters", c.Errors())
		return
	}

	diagram, err := h.dashboard.Flow(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	scene := flow.NewScene(diagram.Nodes, diagram.Connections)
	scene.View.SetScale(scale)
	scene.View.OffsetX = offsetX
	scene.View.OffsetY = offsetY

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	flow.RenderSVG(w, scene, width, height)
}

func intParam(c *validation.Collector, raw, field string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxSVGSize {
		c.Add(&validation.ValidationError{Field: field, Message: fmt.Sprintf("must be an integer between 1 and %d", maxSVGSize)})
		return def
	}
	return n
}

func floatParam(c *validation.Collector, raw, field string, def float64) float64 {
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.Add(&validation.ValidationError{Field: field, Message: "must be a number"})
		return def
	}
	c.Add(validation.ValidateFinite(field, f))
	return f
}

// LatestVibeCheck handles GET /api/v1/vibe-checks/latest
func (h *Handler) LatestVibeCheck(w http.ResponseWriter, r *http.Request) {
	v, err := h.dashboard.LatestVibeCheck(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	if v == nil {
		WriteProblem(w, r, http.StatusNotFound, "No vibe check recorded yet")
		return
	}
	writeJSON(w, r, http.StatusOK, v)
}

// Newsletter handles POST /api/v1/newsletter
func (h *Handler) Newsletter(w http.ResponseWriter, r *http.Request) {
	var req types.NewsletterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if verr := validation.ValidateEmail("email", email); verr != nil {
		WriteProblemWithErrors(w, r, "Please enter a valid email address", []validation.ValidationError{*verr})
		return
	}

	settings, err := h.store.GetSettings(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	if !settings.NewsletterEnabled {
		WriteProblem(w, r, http.StatusForbidden, "Newsletter signups are closed")
		return
	}

	if _, err := h.store.AddSubscriber(r.Context(), email); err != nil {
		if errors.Is(err, store.ErrDuplicateSubscriber) {
			writeJSON(w, r, http.StatusOK, types.NewsletterResponse{
				Status:  "already_subscribed",
				Message: "You're already subscribed!",
			})
			return
		}
		MapStoreError(w, r, err)
		return
	}

	LoggerFromContext(r.Context()).Info("newsletter signup", "component", "api", "action", "subscribe")
	writeJSON(w, r, http.StatusCreated, types.NewsletterResponse{
		Status:  "subscribed",
		Message: "Thanks for subscribing!",
	})
}

// Contribute handles POST /api/v1/contribute. The click is recorded and
// the client is sent on to the funding page. Accepts JSON or a form post.
func (h *Handler) Contribute(w http.ResponseWriter, r *http.Request) {
	var click types.NewContributionClick
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
		if err := r.ParseForm(); err != nil {
			WriteProblem(w, r, http.StatusBadRequest, "Invalid form body")
			return
		}
		click.ItemID = r.PostForm.Get("itemId")
		click.ItemName = r.PostForm.Get("itemName")
		if raw := r.PostForm.Get("amount"); raw != "" {
			amount, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				WriteProblemWithErrors(w, r, "Request contains invalid fields", []validation.ValidationError{
					{Field: "amount", Message: "must be a number"},
				})
				return
			}
			click.Amount = amount
		}
	} else if !decodeJSON(w, r, &click) {
		return
	}

	if errs := validation.ValidateContributionClick(click); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	recorded, err := h.store.RecordContributionClick(r.Context(), click)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	if h.fundingURL == "" {
		writeJSON(w, r, http.StatusCreated, recorded)
		return
	}
	http.Redirect(w, r, h.fundingURL, http.StatusSeeOther)
}

// Export handles GET /api/v1/export/{name}
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	kind, err := export.ParseKind(chi.URLParam(r, "name"))
	if err != nil {
		WriteProblem(w, r, http.StatusNotFound, "Unknown export")
		return
	}

	// Buffer so a store failure can still produce a problem response.
	var buf strings.Builder
	if err := h.exporter.Write(r.Context(), kind, &buf); err != nil {
		MapStoreError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", kind.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", kind.Filename()))
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, buf.String()); err != nil {
		LoggerFromContext(r.Context()).Error("failed to write export", "error", err, "export", string(kind))
	}
}
