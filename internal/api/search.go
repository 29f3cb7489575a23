package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/kairix/todo/internal/types"
	"github.com/kairix/todo/internal/validation"
)

// TotalCountHeader carries the number of matches before pagination.
const TotalCountHeader = "X-Total-Count"

// SearchTasks handles GET /tasks/search
func (h *Handler) SearchTasks(w http.ResponseWriter, r *http.Request) {
	params, errs := h.parseSearchParams(r.URL.Query())
	if len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Invalid search parameters", errs)
		return
	}

	result, err := h.store.SearchTasks(r.Context(), params)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	w.Header().Set(TotalCountHeader, strconv.FormatInt(result.Total, 10))
	writeJSON(w, http.StatusOK, result.Tasks)
}

// parseSearchParams reads the search query string. Empty values count as
// absent. Dates accept full timestamps and keep only the date; a limit
// above the maximum is clamped.
func (h *Handler) parseSearchParams(q url.Values) (types.SearchParams, []validation.ValidationError) {
	var c validation.Collector
	params := types.SearchParams{
		Query: q.Get("q"),
		Limit: h.limits.Default,
	}

	if v := q.Get("from_date"); v != "" {
		d, err := types.ParseDate(v)
		if err != nil {
			c.Add(&validation.ValidationError{Field: "from_date", Message: "must be an ISO-8601 date"})
		} else {
			params.FromDate = &d
		}
	}
	if v := q.Get("to_date"); v != "" {
		d, err := types.ParseDate(v)
		if err != nil {
			c.Add(&validation.ValidationError{Field: "to_date", Message: "must be an ISO-8601 date"})
		} else {
			params.ToDate = &d
		}
	}
	if v := q.Get("completed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.Add(&validation.ValidationError{Field: "completed", Message: "must be a boolean"})
		} else {
			params.Completed = &b
		}
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.Add(&validation.ValidationError{Field: "limit", Message: "must be a non-negative integer"})
		} else {
			params.Limit = min(n, h.limits.Max)
		}
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.Add(&validation.ValidationError{Field: "offset", Message: "must be a non-negative integer"})
		} else {
			params.Offset = n
		}
	}

	return params, c.Errors()
}
