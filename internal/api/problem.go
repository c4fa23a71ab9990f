package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hyperengineering/devtrack/internal/blob"
	"github.com/hyperengineering/devtrack/internal/store"
	"github.com/hyperengineering/devtrack/internal/validation"
)

// Problem represents an RFC 7807 Problem Details response.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

const problemBase = "https://devtrack.dev/errors/"

// problemTypes maps HTTP status codes to RFC 7807 type URIs and titles.
var problemTypes = map[int]struct {
	typeURI string
	title   string
}{
	http.StatusBadRequest:            {problemBase + "bad-request", "Bad Request"},
	http.StatusUnauthorized:          {problemBase + "unauthorized", "Unauthorized"},
	http.StatusForbidden:             {problemBase + "forbidden", "Forbidden"},
	http.StatusNotFound:              {problemBase + "not-found", "Not Found"},
	http.StatusConflict:              {problemBase + "conflict", "Conflict"},
	http.StatusRequestEntityTooLarge: {problemBase + "too-large", "Payload Too Large"},
	http.StatusUnsupportedMediaType:  {problemBase + "unsupported-media-type", "Unsupported Media Type"},
	http.StatusUnprocessableEntity:   {problemBase + "validation-error", "Validation Error"},
	http.StatusInternalServerError:   {problemBase + "internal-error", "Internal Server Error"},
	http.StatusServiceUnavailable:    {problemBase + "service-unavailable", "Service Unavailable"},
}

// WriteProblem writes an RFC 7807 Problem Details response.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	pt, ok := problemTypes[status]
	if !ok {
		pt.typeURI = problemBase + "unknown"
		pt.title = http.StatusText(status)
	}

	p := Problem{
		Type:     pt.typeURI,
		Title:    pt.title,
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		slog.Error("failed to encode problem response", "error", err)
	}
}

// ProblemWithErrors extends Problem with validation error details.
type ProblemWithErrors struct {
	Problem
	Errors []validation.ValidationError `json:"errors,omitempty"`
}

// WriteProblemWithErrors writes a 422 Problem Details response with field errors.
func WriteProblemWithErrors(w http.ResponseWriter, r *http.Request, detail string, errs []validation.ValidationError) {
	pt := problemTypes[http.StatusUnprocessableEntity]

	p := ProblemWithErrors{
		Problem: Problem{
			Type:     pt.typeURI,
			Title:    pt.title,
			Status:   http.StatusUnprocessableEntity,
			Detail:   detail,
			Instance: r.URL.Path,
		},
		Errors: errs,
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		slog.Error("failed to encode problem response", "error", err)
	}
}

// MapStoreError converts domain errors to Problem Details responses.
// Unknown errors are logged and reported as a bare 500.
func MapStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		WriteProblem(w, r, http.StatusNotFound, "Resource not found")
	case errors.Is(err, store.ErrAlreadyPurchased):
		WriteProblem(w, r, http.StatusConflict, "Planned expense is already purchased")
	case errors.Is(err, store.ErrAlreadyProcessed):
		WriteProblem(w, r, http.StatusConflict, "Recurring cost already processed this month")
	case errors.Is(err, store.ErrUnknownNode):
		WriteProblemWithErrors(w, r, "Connection endpoints must exist", []validation.ValidationError{
			{Field: "from", Message: "must reference an existing node"},
			{Field: "to", Message: "must reference an existing node"},
		})
	case errors.Is(err, blob.ErrTooLarge):
		WriteProblem(w, r, http.StatusRequestEntityTooLarge, "Upload exceeds the size limit")
	case errors.Is(err, blob.ErrUnsupportedType):
		WriteProblem(w, r, http.StatusUnsupportedMediaType, "Upload must be a PNG, JPEG, GIF or WebP image")
	case errors.Is(err, blob.ErrNotConfigured):
		WriteProblem(w, r, http.StatusServiceUnavailable, "Screenshot storage is not configured")
	default:
		LoggerFromContext(r.Context()).Error("request failed",
			"component", "api",
			"path", r.URL.Path,
			"error", err,
		)
		// Never expose internal error details to client
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
	}
}
