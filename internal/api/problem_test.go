package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hyperengineering/devtrack/internal/blob"
	"github.com/hyperengineering/devtrack/internal/store"
	"github.com/hyperengineering/devtrack/internal/validation"
)

func TestWriteProblem_BodyFormat(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/admin/expenses", nil)

	WriteProblem(w, r, http.StatusUnauthorized, "Missing or invalid API key")

	if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %v, want application/problem+json", ct)
	}
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status code = %d, want 401", w.Code)
	}

	var p Problem
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("failed to unmarshal response body: %v", err)
	}
	if p.Type != "https://devtrack.dev/errors/unauthorized" {
		t.Errorf("type = %v", p.Type)
	}
	if p.Title != "Unauthorized" || p.Status != 401 {
		t.Errorf("title/status = %v/%d", p.Title, p.Status)
	}
	if p.Instance != "/api/v1/admin/expenses" {
		t.Errorf("instance = %v", p.Instance)
	}
}

func TestWriteProblem_UnknownStatus(t *testing.T) {
	w := httptest.NewRecorder()
	WriteProblem(w, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusTeapot, "short and stout")

	var p Problem
	json.Unmarshal(w.Body.Bytes(), &p)
	if p.Type != "https://devtrack.dev/errors/unknown" || p.Title != "I'm a teapot" {
		t.Errorf("problem = %+v", p)
	}
}

func TestWriteProblemWithErrors(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/admin/tasks", nil)

	WriteProblemWithErrors(w, r, "Request contains invalid fields", []validation.ValidationError{
		{Field: "title", Message: "is required"},
	})

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
	var p ProblemWithErrors
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(p.Errors) != 1 || p.Errors[0].Field != "title" {
		t.Errorf("errors = %+v", p.Errors)
	}
}

func TestMapStoreError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{store.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("load: %w", store.ErrNotFound), http.StatusNotFound},
		{store.ErrAlreadyPurchased, http.StatusConflict},
		{store.ErrAlreadyProcessed, http.StatusConflict},
		{store.ErrUnknownNode, http.StatusUnprocessableEntity},
		{blob.ErrTooLarge, http.StatusRequestEntityTooLarge},
		{blob.ErrUnsupportedType, http.StatusUnsupportedMediaType},
		{blob.ErrNotConfigured, http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			MapStoreError(w, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestMapStoreError_DoesNotLeakInternalErrors(t *testing.T) {
	w := httptest.NewRecorder()
	MapStoreError(w, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("SQLITE_CORRUPT at page 7"))

	var p Problem
	json.Unmarshal(w.Body.Bytes(), &p)
	if p.Detail != "Internal Server Error" {
		t.Errorf("detail = %q, want generic message", p.Detail)
	}
}
