package api

import (
	"net/http"

	"github.com/kairix/todo/internal/types"
	"github.com/kairix/todo/internal/validation"
)

// ListTags handles GET /tags
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.store.ListTags(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// CreateTag handles POST /tags
func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req types.NewTag
	if !decodeJSON(w, r, &req) {
		return
	}

	if errs := validation.ValidateNewTag(req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	tag, err := h.store.CreateTag(r.Context(), req)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

// GetTag handles GET /tags/{tagID}
func (h *Handler) GetTag(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mustTag(r))
}

// UpdateTag handles PUT and PATCH /tags/{tagID}
func (h *Handler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	tag := mustTag(r)

	var patch types.TagPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	if errs := validation.ValidateTagPatch(patch); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	updated, err := h.store.UpdateTag(r.Context(), tag.ID, patch)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteTag handles DELETE /tags/{tagID}
func (h *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTag(r.Context(), mustTag(r).ID); err != nil {
		MapStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
