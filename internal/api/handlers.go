package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/kairix/todo/internal/auth"
	"github.com/kairix/todo/internal/store"
	"github.com/kairix/todo/internal/types"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// SearchLimits bounds the page size of task searches.
type SearchLimits struct {
	Default int
	Max     int
}

// DefaultSearchLimits returns the limits used when none are configured.
func DefaultSearchLimits() SearchLimits {
	return SearchLimits{Default: types.DefaultSearchLimit, Max: types.MaxSearchLimit}
}

// Handler implements the API handlers
type Handler struct {
	store   store.Store
	keys    *auth.KeyFile
	version string
	limits  SearchLimits
}

// NewHandler creates a new Handler with store.Store interface. A nil key
// file leaves every route open.
func NewHandler(s store.Store, keys *auth.KeyFile, version string, limits SearchLimits) *Handler {
	if limits.Max <= 0 {
		limits.Max = types.MaxSearchLimit
	}
	if limits.Default <= 0 {
		limits.Default = types.DefaultSearchLimit
	}
	limits.Default = min(limits.Default, limits.Max)

	return &Handler{
		store:   s,
		keys:    keys,
		version: version,
		limits:  limits,
	}
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		slog.Error("health check failed", "error", err)
		WriteProblem(w, r, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:    "running",
		Version:   h.version,
		TaskCount: stats.TaskCount,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// decodeJSON reads a single JSON value from the request body into dst.
// It writes a 400/413 problem and returns false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			WriteProblem(w, r, http.StatusBadRequest, "Request body is required")
		case errors.As(err, &maxErr):
			WriteProblem(w, r, http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit))
		default:
			WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		}
		return false
	}

	if dec.More() {
		WriteProblem(w, r, http.StatusBadRequest, "Invalid JSON: unexpected data after top-level value")
		return false
	}
	return true
}
