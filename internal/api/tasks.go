package api

import (
	"net/http"

	"github.com/kairix/todo/internal/types"
	"github.com/kairix/todo/internal/validation"
)

// ListTasks handles GET /tasks
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.store.ListTasks(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// CreateTask handles POST /tasks
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req types.NewTask
	if !decodeJSON(w, r, &req) {
		return
	}

	if errs := validation.ValidateNewTask(req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	task, err := h.store.CreateTask(r.Context(), req)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// GetTask handles GET /tasks/{taskID}
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mustTask(r))
}

// UpdateTask handles PATCH /tasks/{taskID}. Only fields present in the
// body are changed.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	task := mustTask(r)

	var patch types.TaskPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	if errs := validation.ValidateTaskPatch(patch); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	updated, err := h.store.UpdateTask(r.Context(), task.ID, patch)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// CompleteTask handles PATCH /tasks/{taskID}/complete
func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.store.CompleteTask(r.Context(), mustTask(r).ID)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/{taskID}
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTask(r.Context(), mustTask(r).ID); err != nil {
		MapStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
