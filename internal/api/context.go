package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kairix/todo/internal/types"
)

// Context keys for path-referenced entities resolved by the *Ctx middleware.
type (
	taskContextKey     struct{}
	tagContextKey      struct{}
	reminderContextKey struct{}
)

// ErrNotInContext indicates the expected entity was not resolved onto the
// request context.
var ErrNotInContext = errors.New("entity not in context")

// WithTask returns a new context with the task attached.
func WithTask(ctx context.Context, t *types.Task) context.Context {
	return context.WithValue(ctx, taskContextKey{}, t)
}

// TaskFromContext extracts the task resolved from the URL.
// Returns ErrNotInContext if not present or nil.
func TaskFromContext(ctx context.Context) (*types.Task, error) {
	t, ok := ctx.Value(taskContextKey{}).(*types.Task)
	if !ok || t == nil {
		return nil, ErrNotInContext
	}
	return t, nil
}

// WithTag returns a new context with the tag attached.
func WithTag(ctx context.Context, t *types.Tag) context.Context {
	return context.WithValue(ctx, tagContextKey{}, t)
}

// TagFromContext extracts the tag resolved from the URL.
func TagFromContext(ctx context.Context) (*types.Tag, error) {
	t, ok := ctx.Value(tagContextKey{}).(*types.Tag)
	if !ok || t == nil {
		return nil, ErrNotInContext
	}
	return t, nil
}

// WithReminder returns a new context with the reminder attached.
func WithReminder(ctx context.Context, rem *types.Reminder) context.Context {
	return context.WithValue(ctx, reminderContextKey{}, rem)
}

// ReminderFromContext extracts the reminder resolved from the URL.
func ReminderFromContext(ctx context.Context) (*types.Reminder, error) {
	rem, ok := ctx.Value(reminderContextKey{}).(*types.Reminder)
	if !ok || rem == nil {
		return nil, ErrNotInContext
	}
	return rem, nil
}

// TaskCtx loads the task named by {taskID} so that every handler below it
// can assume it exists. Unknown ids get a 404 before any body is read.
func (h *Handler) TaskCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		task, err := h.store.GetTask(r.Context(), chi.URLParam(r, "taskID"))
		if err != nil {
			MapStoreError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithTask(r.Context(), task)))
	})
}

// TagCtx loads the tag named by {tagID}.
func (h *Handler) TagCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tag, err := h.store.GetTag(r.Context(), chi.URLParam(r, "tagID"))
		if err != nil {
			MapStoreError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithTag(r.Context(), tag)))
	})
}

// ReminderCtx loads the reminder named by {reminderID}.
func (h *Handler) ReminderCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rem, err := h.store.GetReminder(r.Context(), chi.URLParam(r, "reminderID"))
		if err != nil {
			MapStoreError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithReminder(r.Context(), rem)))
	})
}

// mustTask returns the task placed by TaskCtx. A missing task means the
// route was registered outside TaskCtx.
func mustTask(r *http.Request) *types.Task {
	t, err := TaskFromContext(r.Context())
	if err != nil {
		panic("task not in context: middleware misconfiguration")
	}
	return t
}

func mustTag(r *http.Request) *types.Tag {
	t, err := TagFromContext(r.Context())
	if err != nil {
		panic("tag not in context: middleware misconfiguration")
	}
	return t
}

func mustReminder(r *http.Request) *types.Reminder {
	rem, err := ReminderFromContext(r.Context())
	if err != nil {
		panic("reminder not in context: middleware misconfiguration")
	}
	return rem
}
