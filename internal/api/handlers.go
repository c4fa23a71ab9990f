package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/hyperengineering/devtrack/internal/blob"
	"github.com/hyperengineering/devtrack/internal/dashboard"
	"github.com/hyperengineering/devtrack/internal/export"
	"github.com/hyperengineering/devtrack/internal/recurring"
	"github.com/hyperengineering/devtrack/internal/store"
	"github.com/hyperengineering/devtrack/internal/types"
	"github.com/hyperengineering/devtrack/internal/validation"
)

// List limits for admin collection endpoints.
const (
	DefaultListLimit = 20
	MaxListLimit     = 500
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// Options configures a Handler. Zero values fall back to working defaults.
type Options struct {
	Uploader        blob.Uploader
	Verifier        KeyVerifier
	Clock           recurring.Clock
	Version         string
	ProjectName     string
	Currency        string
	FundingURL      string
	DefaultLinkedIn string
	CORSOrigins     []string
	MaxUploadBytes  int64
}

// Handler implements the API handlers
type Handler struct {
	store          store.Store
	dashboard      *dashboard.Service
	processor      *recurring.Processor
	exporter       *export.Exporter
	uploader       blob.Uploader
	verify         KeyVerifier
	clock          recurring.Clock
	version        string
	fundingURL     string
	corsOrigins    []string
	maxUploadBytes int64
}

// NewHandler creates a Handler over s.
func NewHandler(s store.Store, opts Options) *Handler {
	if opts.Uploader == nil {
		opts.Uploader = &blob.NoopUploader{}
	}
	if opts.Verifier == nil {
		opts.Verifier = NewKeyVerifier("", "")
	}
	if opts.Clock == nil {
		opts.Clock = recurring.RealClock{}
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	return &Handler{
		store:          s,
		dashboard:      dashboard.NewService(s, opts.DefaultLinkedIn),
		processor:      recurring.NewProcessor(s, opts.Clock),
		exporter:       export.NewExporter(s, opts.ProjectName, opts.Currency),
		uploader:       opts.Uploader,
		verify:         opts.Verifier,
		clock:          opts.Clock,
		version:        opts.Version,
		fundingURL:     opts.FundingURL,
		corsOrigins:    opts.CORSOrigins,
		maxUploadBytes: opts.MaxUploadBytes,
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		LoggerFromContext(r.Context()).Error("failed to encode response", "error", err)
	}
}

// decodeJSON reads a JSON body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return false
	}
	return true
}

// listOptions reads ?limit=, defaulting to DefaultListLimit and capped at
// MaxListLimit.
func listOptions(w http.ResponseWriter, r *http.Request) (types.ListOptions, bool) {
	opts := types.ListOptions{Limit: DefaultListLimit}
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return opts, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		WriteProblem(w, r, http.StatusBadRequest, "limit must be a positive integer")
		return opts, false
	}
	opts.Limit = min(n, MaxListLimit)
	return opts, true
}

func (h *Handler) today() string {
	return h.clock.Now().Format(validation.DateLayout)
}

// Health handles GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, types.HealthResponse{
		Status:  "healthy",
		Version: h.version,
		Counts:  *stats,
	})
}

// nowUTC is the instant used for server-side stamps.
func (h *Handler) nowUTC() time.Time {
	return h.clock.Now().UTC()
}
