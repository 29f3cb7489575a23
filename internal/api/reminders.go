package api

import (
	"net/http"

	"github.com/kairix/todo/internal/types"
	"github.com/kairix/todo/internal/validation"
)

// ListReminders handles GET /tasks/{taskID}/reminders
func (h *Handler) ListReminders(w http.ResponseWriter, r *http.Request) {
	rems, err := h.store.ListReminders(r.Context(), mustTask(r).ID)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rems)
}

// CreateReminder handles POST /tasks/{taskID}/reminders. The task comes
// from the path; a task_id in the body is ignored.
func (h *Handler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	task := mustTask(r)

	var req types.NewReminder
	if !decodeJSON(w, r, &req) {
		return
	}

	if errs := validation.ValidateNewReminder(req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	rem, err := h.store.CreateReminder(r.Context(), task.ID, req)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rem)
}

// GetReminder handles GET /tasks/reminders/{reminderID}
func (h *Handler) GetReminder(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mustReminder(r))
}

// UpdateReminder handles PUT and PATCH /tasks/reminders/{reminderID}
func (h *Handler) UpdateReminder(w http.ResponseWriter, r *http.Request) {
	rem := mustReminder(r)

	var patch types.ReminderPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	if errs := validation.ValidateReminderPatch(patch); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	updated, err := h.store.UpdateReminder(r.Context(), rem.ID, patch)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteReminder handles DELETE /tasks/reminders/{reminderID}
func (h *Handler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteReminder(r.Context(), mustReminder(r).ID); err != nil {
		MapStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
