package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kairix/todo/internal/store"
	"github.com/kairix/todo/internal/validation"
)

// Problem represents an RFC 7807 Problem Details response.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

// problemTypes maps HTTP status codes to RFC 7807 type URIs and titles.
var problemTypes = map[int]struct {
	typeURI string
	title   string
}{
	http.StatusBadRequest: {
		typeURI: "https://kairix.dev/errors/bad-request",
		title:   "Bad Request",
	},
	http.StatusUnauthorized: {
		typeURI: "https://kairix.dev/errors/unauthorized",
		title:   "Unauthorized",
	},
	http.StatusNotFound: {
		typeURI: "https://kairix.dev/errors/not-found",
		title:   "Not Found",
	},
	http.StatusMethodNotAllowed: {
		typeURI: "https://kairix.dev/errors/method-not-allowed",
		title:   "Method Not Allowed",
	},
	http.StatusConflict: {
		typeURI: "https://kairix.dev/errors/conflict",
		title:   "Conflict",
	},
	http.StatusRequestEntityTooLarge: {
		typeURI: "https://kairix.dev/errors/payload-too-large",
		title:   "Payload Too Large",
	},
	http.StatusInternalServerError: {
		typeURI: "https://kairix.dev/errors/internal-error",
		title:   "Internal Server Error",
	},
	http.StatusServiceUnavailable: {
		typeURI: "https://kairix.dev/errors/service-unavailable",
		title:   "Service Unavailable",
	},
}

const validationProblemType = "https://kairix.dev/errors/validation-error"

func problemFor(r *http.Request, status int, detail string) Problem {
	pt, ok := problemTypes[status]
	if !ok {
		pt.typeURI = "https://kairix.dev/errors/unknown"
		pt.title = http.StatusText(status)
	}
	return Problem{
		Type:     pt.typeURI,
		Title:    pt.title,
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	}
}

// WriteProblem writes an RFC 7807 Problem Details response.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	writeProblemBody(w, status, problemFor(r, status, detail))
}

// ProblemWithErrors extends Problem with validation error details.
type ProblemWithErrors struct {
	Problem
	Errors []validation.ValidationError `json:"errors,omitempty"`
}

// WriteProblemWithErrors writes a 400 Problem Details response with field errors.
func WriteProblemWithErrors(w http.ResponseWriter, r *http.Request, detail string, errs []validation.ValidationError) {
	p := ProblemWithErrors{
		Problem: problemFor(r, http.StatusBadRequest, detail),
		Errors:  errs,
	}
	p.Type = validationProblemType
	p.Title = "Validation Error"
	writeProblemBody(w, http.StatusBadRequest, p)
}

func writeProblemBody(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode problem response", "error", err)
	}
}

// MapStoreError converts domain errors to Problem Details responses.
func MapStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrTaskNotFound):
		WriteProblem(w, r, http.StatusNotFound, "Task not found")
	case errors.Is(err, store.ErrTagNotFound):
		WriteProblem(w, r, http.StatusNotFound, "Tag not found")
	case errors.Is(err, store.ErrReminderNotFound):
		WriteProblem(w, r, http.StatusNotFound, "Reminder not found")
	case errors.Is(err, store.ErrNotFound):
		WriteProblem(w, r, http.StatusNotFound, "Resource not found")
	case errors.Is(err, store.ErrDuplicateTag):
		WriteProblem(w, r, http.StatusConflict, "A tag with this name already exists")
	case errors.Is(err, store.ErrDuplicate):
		WriteProblem(w, r, http.StatusConflict, "Duplicate entry")
	case errors.Is(err, store.ErrInvalidEntity):
		WriteProblem(w, r, http.StatusBadRequest, "Request violates a data constraint")
	default:
		// Never expose internal error details to client
		slog.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", GetRequestID(r.Context()),
		)
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
	}
}
