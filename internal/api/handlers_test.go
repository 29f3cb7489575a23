package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kairix/todo/internal/auth"
	"github.com/kairix/todo/internal/store"
	"github.com/kairix/todo/internal/types"
)

// --- Mock Implementations for Testing ---

// mockStore implements store.Store for handler tests that need to inject
// failures. Methods not overridden here panic through the nil embedded
// interface.
type mockStore struct {
	store.Store

	stats    *types.StoreStats
	statsErr error

	searchResult *types.SearchResult
	searchErr    error
	lastSearch   types.SearchParams
	searchCalls  int

	tasks   map[string]*types.Task
	taskErr error
}

func (m *mockStore) GetStats(ctx context.Context) (*types.StoreStats, error) {
	return m.stats, m.statsErr
}

func (m *mockStore) SearchTasks(ctx context.Context, params types.SearchParams) (*types.SearchResult, error) {
	m.searchCalls++
	m.lastSearch = params
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if m.searchResult == nil {
		return &types.SearchResult{Tasks: []types.SearchTask{}}, nil
	}
	return m.searchResult, nil
}

func (m *mockStore) GetTask(ctx context.Context, id string) (*types.Task, error) {
	if task, ok := m.tasks[id]; ok {
		return task, nil
	}
	return nil, store.ErrTaskNotFound
}

func (m *mockStore) ListTasks(ctx context.Context) ([]types.Task, error) {
	if m.taskErr != nil {
		return nil, m.taskErr
	}
	return []types.Task{}, nil
}

func (m *mockStore) DeleteTask(ctx context.Context, id string) error {
	return m.taskErr
}

func (m *mockStore) Close() error {
	return nil
}

// --- Helpers ---

// newTestRouter wires a real in-memory SQLite store behind the full router.
func newTestRouter(t *testing.T, keys *auth.KeyFile) http.Handler {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewRouter(NewHandler(s, keys, "1.2.3", DefaultSearchLimits()))
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func createTask(t *testing.T, h http.Handler, body string) types.Task {
	t.Helper()
	w := do(t, h, http.MethodPost, "/tasks/", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[types.Task](t, w)
}

func tagNames(tags []types.Tag) []string {
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	return names
}

func assertProblem(t *testing.T, w *httptest.ResponseRecorder, status int) ProblemWithErrors {
	t.Helper()
	assert.Equal(t, status, w.Code, w.Body.String())
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	return decode[ProblemWithErrors](t, w)
}

func errorFields(p ProblemWithErrors) []string {
	fields := make([]string, len(p.Errors))
	for i, e := range p.Errors {
		fields[i] = e.Field
	}
	return fields
}

// --- Health Endpoint Tests ---

func TestHealth_ReturnsRunningStatus(t *testing.T) {
	h := NewHandler(&mockStore{stats: &types.StoreStats{TaskCount: 42}}, nil, "1.0.0", DefaultSearchLimits())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.Health(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}

	var resp types.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Status != "running" {
		t.Errorf("status = %q, want %q", resp.Status, "running")
	}
	if resp.Version != "1.0.0" {
		t.Errorf("version = %q, want %q", resp.Version, "1.0.0")
	}
	if resp.TaskCount != 42 {
		t.Errorf("task_count = %d, want %d", resp.TaskCount, 42)
	}
}

func TestHealth_StoreFailureReturns503(t *testing.T) {
	h := NewHandler(&mockStore{statsErr: errors.New("disk gone")}, nil, "1.0.0", DefaultSearchLimits())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.Health(w, req)

	p := assertProblem(t, w, http.StatusServiceUnavailable)
	assert.Equal(t, "Database unavailable", p.Detail)
	assert.NotContains(t, w.Body.String(), "disk gone")
}

func TestHealth_ServedAtRootAndHealth(t *testing.T) {
	router := newTestRouter(t, nil)

	for _, path := range []string{"/", "/health", "/health/"} {
		w := do(t, router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "running", decode[types.HealthResponse](t, w).Status, path)
	}
}

// --- NewHandler ---

func TestNewHandler_NormalizesSearchLimits(t *testing.T) {
	tests := []struct {
		name string
		in   SearchLimits
		want SearchLimits
	}{
		{"zero uses defaults", SearchLimits{}, DefaultSearchLimits()},
		{"default above max is clamped", SearchLimits{Default: 50, Max: 10}, SearchLimits{Default: 10, Max: 10}},
		{"explicit values kept", SearchLimits{Default: 5, Max: 20}, SearchLimits{Default: 5, Max: 20}},
		{"negative default", SearchLimits{Default: -1, Max: 500}, SearchLimits{Default: types.DefaultSearchLimit, Max: 500}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&mockStore{}, nil, "", tt.in)
			assert.Equal(t, tt.want, h.limits)
		})
	}
}

// --- Task Endpoints ---

func TestCreateTask_Defaults(t *testing.T) {
	router := newTestRouter(t, nil)

	w := do(t, router, http.MethodPost, "/tasks/", `{"title":"Write report"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	raw := decode[map[string]any](t, w)
	assert.Equal(t, "Write report", raw["title"])
	assert.Equal(t, false, raw["completed"])
	assert.Nil(t, raw["due_date"])
	assert.Nil(t, raw["additional_details"])
	assert.Equal(t, []any{}, raw["tags"])
	assert.NotEmpty(t, raw["created_at"])

	_, err := uuid.Parse(raw["id"].(string))
	assert.NoError(t, err, "id should be a UUID")
}

func TestCreateTask_AllFields(t *testing.T) {
	router := newTestRouter(t, nil)

	task := createTask(t, router, `{
		"title": "Plan trip",
		"completed": true,
		"due_date": "2026-03-01",
		"additional_details": "book hotel",
		"tags": ["travel", "family"]
	}`)

	assert.True(t, task.Completed)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2026-03-01", task.DueDate.String())
	require.NotNil(t, task.AdditionalDetails)
	assert.Equal(t, "book hotel", *task.AdditionalDetails)
	assert.Equal(t, []string{"family", "travel"}, tagNames(task.Tags))
}

func TestCreateTask_IgnoresServerControlledKeys(t *testing.T) {
	router := newTestRouter(t, nil)

	task := createTask(t, router, `{"id":"not-mine","created_at":"1999-01-01T00:00:00Z","title":"x","bogus":1}`)

	assert.NotEqual(t, "not-mine", task.ID)
	assert.NotEqual(t, 1999, task.CreatedAt.Year())
}

func TestCreateTask_Validation(t *testing.T) {
	router := newTestRouter(t, nil)

	tests := []struct {
		name       string
		body       string
		wantFields []string
	}{
		{"missing title", `{}`, []string{"title"}},
		{"blank title", `{"title":"   "}`, []string{"title"}},
		{"title too long", `{"title":"` + strings.Repeat("a", 501) + `"}`, []string{"title"}},
		{"blank tag", `{"title":"t","tags":["ok",""]}`, []string{"tags[1]"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/tasks", tt.body)
			p := assertProblem(t, w, http.StatusBadRequest)
			assert.Equal(t, validationProblemType, p.Type)
			assert.Equal(t, tt.wantFields, errorFields(p))
		})
	}

	w := do(t, router, http.MethodGet, "/tasks/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]types.Task](t, w), "rejected creates must not persist")

	w = do(t, router, http.MethodGet, "/tags/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]types.Tag](t, w))
}

func TestCreateTask_MalformedBodies(t *testing.T) {
	router := newTestRouter(t, nil)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"invalid json", `{"title":`, http.StatusBadRequest},
		{"trailing data", `{"title":"a"} {}`, http.StatusBadRequest},
		{"invalid date", `{"title":"a","due_date":"31/12/2026"}`, http.StatusBadRequest},
		{"non-string date", `{"title":"a","due_date":20260101}`, http.StatusBadRequest},
		{"too large", `{"title":"` + strings.Repeat("a", maxBodyBytes) + `"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/tasks", tt.body)
			assertProblem(t, w, tt.status)
		})
	}

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/tasks", http.NoBody)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		p := assertProblem(t, w, http.StatusBadRequest)
		assert.Equal(t, "Request body is required", p.Detail)
	})
}

func TestListTasks_WithAndWithoutTrailingSlash(t *testing.T) {
	router := newTestRouter(t, nil)
	createTask(t, router, `{"title":"one"}`)
	createTask(t, router, `{"title":"two"}`)

	for _, path := range []string{"/tasks", "/tasks/"} {
		w := do(t, router, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, w.Code, path)
		tasks := decode[[]types.Task](t, w)
		assert.Len(t, tasks, 2, path)
	}
}

func TestListTasks_EmptyIsArray(t *testing.T) {
	router := newTestRouter(t, nil)

	w := do(t, router, http.MethodGet, "/tasks", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestGetTask(t *testing.T) {
	router := newTestRouter(t, nil)
	created := createTask(t, router, `{"title":"find me","tags":["a"]}`)

	w := do(t, router, http.MethodGet, "/tasks/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[types.Task](t, w)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, []string{"a"}, tagNames(got.Tags))

	w = do(t, router, http.MethodGet, "/tasks/"+uuid.NewString(), "")
	p := assertProblem(t, w, http.StatusNotFound)
	assert.Equal(t, "https://kairix.dev/errors/not-found", p.Type)
	assert.Equal(t, "Task not found", p.Detail)
}

func TestUpdateTask_OnlyPresentFieldsChange(t *testing.T) {
	router := newTestRouter(t, nil)
	created := createTask(t, router, `{"title":"old","due_date":"2026-01-01","additional_details":"keep","tags":["x"]}`)

	w := do(t, router, http.MethodPatch, "/tasks/"+created.ID, `{"title":"new"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[types.Task](t, w)

	assert.Equal(t, "new", got.Title)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, "2026-01-01", got.DueDate.String())
	require.NotNil(t, got.AdditionalDetails)
	assert.Equal(t, "keep", *got.AdditionalDetails)
	assert.Equal(t, []string{"x"}, tagNames(got.Tags))
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
}

func TestUpdateTask_NullClearsAndTagsReplace(t *testing.T) {
	router := newTestRouter(t, nil)
	created := createTask(t, router, `{"title":"t","due_date":"2026-01-01","tags":["a","b"]}`)

	w := do(t, router, http.MethodPut, "/tasks/"+created.ID, `{"due_date":null,"tags":["c"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[types.Task](t, w)

	assert.Nil(t, got.DueDate)
	assert.Equal(t, []string{"c"}, tagNames(got.Tags))

	w = do(t, router, http.MethodPatch, "/tasks/"+created.ID, `{"tags":[]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[types.Task](t, w).Tags)
}

func TestUpdateTask_Validation(t *testing.T) {
	router := newTestRouter(t, nil)
	created := createTask(t, router, `{"title":"t"}`)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"blank title", `{"title":""}`, "title"},
		{"null title", `{"title":null}`, "title"},
		{"null completed", `{"completed":null}`, "completed"},
		{"long tag", `{"tags":["` + strings.Repeat("t", 101) + `"]}`, "tags[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPatch, "/tasks/"+created.ID, tt.body)
			p := assertProblem(t, w, http.StatusBadRequest)
			assert.Equal(t, []string{tt.field}, errorFields(p))
		})
	}
}

func TestUpdateTask_UnknownIDIs404BeforeBodyValidation(t *testing.T) {
	router := newTestRouter(t, nil)

	w := do(t, router, http.MethodPatch, "/tasks/"+uuid.NewString(), `{"title":""}`)
	assertProblem(t, w, http.StatusNotFound)
}

func TestCompleteTask(t *testing.T) {
	router := newTestRouter(t, nil)
	created := createTask(t, router, `{"title":"t"}`)

	w := do(t, router, http.MethodPatch, "/tasks/"+created.ID+"/complete", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[types.Task](t, w).Completed)

	// Completing twice is harmless.
	w = do(t, router, http.MethodPatch, "/tasks/"+created.ID+"/complete", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodPatch, "/tasks/"+uuid.NewString()+"/complete", "")
	assertProblem(t, w, http.StatusNotFound)
}

func TestDeleteTask_CascadesReminders(t *testing.T) {
	router := newTestRouter(t, nil)
	created := createTask(t, router, `{"title":"t"}`)

	w := do(t, router, http.MethodPost, "/tasks/"+created.ID+"/reminders", `{"remind_at":"2026-05-01T09:00:00Z"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	rem := decode[types.Reminder](t, w)

	w = do(t, router, http.MethodDelete, "/tasks/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	assertProblem(t, do(t, router, http.MethodGet, "/tasks/"+created.ID, ""), http.StatusNotFound)
	assertProblem(t, do(t, router, http.MethodGet, "/tasks/reminders/"+rem.ID, ""), http.StatusNotFound)
	assertProblem(t, do(t, router, http.MethodDelete, "/tasks/"+created.ID, ""), http.StatusNotFound)
}

func TestDeleteTask_StoreFailureHidesDetails(t *testing.T) {
	task := &types.Task{ID: "t1", Title: "t", Tags: []types.Tag{}}
	ms := &mockStore{tasks: map[string]*types.Task{"t1": task}, taskErr: errors.New("pq: secret internals")}
	router := NewRouter(NewHandler(ms, nil, "", DefaultSearchLimits()))

	w := do(t, router, http.MethodDelete, "/tasks/t1", "")
	p := assertProblem(t, w, http.StatusInternalServerError)
	assert.Equal(t, "Internal Server Error", p.Detail)
	assert.NotContains(t, w.Body.String(), "secret")
}

// --- Reminder Endpoints ---

func TestCreateReminder_TaskComesFromPath(t *testing.T) {
	router := newTestRouter(t, nil)
	task := createTask(t, router, `{"title":"t"}`)

	w := do(t, router, http.MethodPost, "/tasks/"+task.ID+"/reminders",
		`{"remind_at":"2026-05-01T11:00:00+02:00","task_id":"someone-else"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rem := decode[types.Reminder](t, w)

	assert.Equal(t, task.ID, rem.TaskID)
	assert.False(t, rem.Completed)
	assert.Equal(t, "2026-05-01T09:00:00Z", rem.RemindAt.UTC().Format("2006-01-02T15:04:05Z07:00"))
}

func TestCreateReminder_Validation(t *testing.T) {
	router := newTestRouter(t, nil)
	task := createTask(t, router, `{"title":"t"}`)

	p := assertProblem(t, do(t, router, http.MethodPost, "/tasks/"+task.ID+"/reminders", `{}`), http.StatusBadRequest)
	assert.Equal(t, []string{"remind_at"}, errorFields(p))

	assertProblem(t, do(t, router, http.MethodPost, "/tasks/"+task.ID+"/reminders", `{"remind_at":12345}`), http.StatusBadRequest)
	assertProblem(t, do(t, router, http.MethodPost, "/tasks/"+task.ID+"/reminders", `{"remind_at":"tomorrow"}`), http.StatusBadRequest)
	assertProblem(t, do(t, router, http.MethodPost, "/tasks/"+uuid.NewString()+"/reminders", `{}`), http.StatusNotFound)
}

func TestReminders_ListUpdateDelete(t *testing.T) {
	router := newTestRouter(t, nil)
	task := createTask(t, router, `{"title":"t"}`)
	base := "/tasks/" + task.ID + "/reminders"

	late := decode[types.Reminder](t, do(t, router, http.MethodPost, base, `{"remind_at":"2026-06-02T08:00:00Z"}`))
	early := decode[types.Reminder](t, do(t, router, http.MethodPost, base, `{"remind_at":"2026-06-01T08:00:00Z"}`))

	w := do(t, router, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, w.Code)
	rems := decode[[]types.Reminder](t, w)
	require.Len(t, rems, 2)
	assert.Equal(t, early.ID, rems[0].ID)
	assert.Equal(t, late.ID, rems[1].ID)

	w = do(t, router, http.MethodPut, "/tasks/reminders/"+early.ID, `{"completed":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[types.Reminder](t, w)
	assert.True(t, updated.Completed)
	assert.True(t, early.RemindAt.Equal(updated.RemindAt))

	w = do(t, router, http.MethodGet, "/tasks/reminders/"+early.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[types.Reminder](t, w).Completed)

	p := assertProblem(t, do(t, router, http.MethodPut, "/tasks/reminders/"+early.ID, `{"remind_at":null}`), http.StatusBadRequest)
	assert.Equal(t, []string{"remind_at"}, errorFields(p))

	assert.Equal(t, http.StatusNoContent, do(t, router, http.MethodDelete, "/tasks/reminders/"+early.ID, "").Code)
	assertProblem(t, do(t, router, http.MethodGet, "/tasks/reminders/"+early.ID, ""), http.StatusNotFound)
	assertProblem(t, do(t, router, http.MethodPut, "/tasks/reminders/"+uuid.NewString(), `{}`), http.StatusNotFound)
}

// --- Tag Endpoints ---

func TestTags_CreateListRename(t *testing.T) {
	router := newTestRouter(t, nil)

	w := do(t, router, http.MethodPost, "/tags/", `{"name":"  work  "}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	work := decode[types.Tag](t, w)
	assert.Equal(t, "work", work.Name)

	do(t, router, http.MethodPost, "/tags", `{"name":"errands"}`)

	w = do(t, router, http.MethodGet, "/tags", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"errands", "work"}, tagNames(decode[[]types.Tag](t, w)))

	w = do(t, router, http.MethodPatch, "/tags/"+work.ID, `{"name":"office"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "office", decode[types.Tag](t, w).Name)

	w = do(t, router, http.MethodGet, "/tags/"+work.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "office", decode[types.Tag](t, w).Name)
}

func TestTags_DuplicateNameConflicts(t *testing.T) {
	router := newTestRouter(t, nil)
	do(t, router, http.MethodPost, "/tags", `{"name":"home"}`)
	other := decode[types.Tag](t, do(t, router, http.MethodPost, "/tags", `{"name":"garden"}`))

	p := assertProblem(t, do(t, router, http.MethodPost, "/tags", `{"name":"home"}`), http.StatusConflict)
	assert.Equal(t, "A tag with this name already exists", p.Detail)

	assertProblem(t, do(t, router, http.MethodPut, "/tags/"+other.ID, `{"name":"home"}`), http.StatusConflict)
}

func TestTags_Validation(t *testing.T) {
	router := newTestRouter(t, nil)
	tag := decode[types.Tag](t, do(t, router, http.MethodPost, "/tags", `{"name":"x"}`))

	p := assertProblem(t, do(t, router, http.MethodPost, "/tags", `{"name":" "}`), http.StatusBadRequest)
	assert.Equal(t, []string{"name"}, errorFields(p))

	p = assertProblem(t, do(t, router, http.MethodPut, "/tags/"+tag.ID, `{"name":null}`), http.StatusBadRequest)
	assert.Equal(t, []string{"name"}, errorFields(p))

	assertProblem(t, do(t, router, http.MethodGet, "/tags/"+uuid.NewString(), ""), http.StatusNotFound)
}

func TestDeleteTag_DetachesFromTasks(t *testing.T) {
	router := newTestRouter(t, nil)
	task := createTask(t, router, `{"title":"t","tags":["keep","drop"]}`)

	var dropID string
	for _, tag := range task.Tags {
		if tag.Name == "drop" {
			dropID = tag.ID
		}
	}
	require.NotEmpty(t, dropID)

	assert.Equal(t, http.StatusNoContent, do(t, router, http.MethodDelete, "/tags/"+dropID, "").Code)

	w := do(t, router, http.MethodGet, "/tasks/"+task.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"keep"}, tagNames(decode[types.Task](t, w).Tags))

	assertProblem(t, do(t, router, http.MethodDelete, "/tags/"+dropID, ""), http.StatusNotFound)
}

// --- Routing ---

func TestRouter_UnknownRouteIsProblem(t *testing.T) {
	router := newTestRouter(t, nil)

	p := assertProblem(t, do(t, router, http.MethodGet, "/nope", ""), http.StatusNotFound)
	assert.Equal(t, "/nope", p.Instance)
}

func TestRouter_MethodNotAllowedIsProblem(t *testing.T) {
	router := newTestRouter(t, nil)
	task := createTask(t, router, `{"title":"t"}`)

	assertProblem(t, do(t, router, http.MethodPost, "/tasks/"+task.ID, `{}`), http.StatusMethodNotAllowed)
	assertProblem(t, do(t, router, http.MethodDelete, "/tags", ""), http.StatusMethodNotAllowed)
}

func TestRouter_EchoesRequestID(t *testing.T) {
	router := newTestRouter(t, nil)

	w := do(t, router, http.MethodGet, "/health", "", "X-Request-Id", "abc-123")
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-Id"))

	w = do(t, router, http.MethodGet, "/health", "")
	assert.Len(t, w.Header().Get("X-Request-Id"), 26)
}

// --- Access Gate ---

func writeKeysFile(t *testing.T, content string) *auth.KeyFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "api_keys.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return auth.NewKeyFile(path)
}

func TestGate_ProtectsResourceRoutes(t *testing.T) {
	router := newTestRouter(t, writeKeysFile(t, "secret-1\nsecret-2\n"))

	for _, path := range []string{"/tasks", "/tasks/search", "/tags", "/tasks/" + uuid.NewString()} {
		p := assertProblem(t, do(t, router, http.MethodGet, path, ""), http.StatusUnauthorized)
		assert.Equal(t, "https://kairix.dev/errors/unauthorized", p.Type, path)
	}

	w := do(t, router, http.MethodGet, "/tasks", "", APIKeyHeader, "wrong")
	assertProblem(t, w, http.StatusUnauthorized)

	w = do(t, router, http.MethodGet, "/tasks", "", APIKeyHeader, "secret-1")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGate_UnknownIDWithoutKeyIs401Not404(t *testing.T) {
	router := newTestRouter(t, writeKeysFile(t, "k\n"))

	assertProblem(t, do(t, router, http.MethodDelete, "/tasks/"+uuid.NewString(), ""), http.StatusUnauthorized)
}

func TestGate_PublicRoutesStayOpen(t *testing.T) {
	router := newTestRouter(t, writeKeysFile(t, "k\n"))

	for _, path := range []string{"/", "/health", "/openapi.yaml", "/openapi.json"} {
		w := do(t, router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestGate_MissingFileDisablesGate(t *testing.T) {
	keys := auth.NewKeyFile(filepath.Join(t.TempDir(), "absent.txt"))
	router := newTestRouter(t, keys)

	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/tasks", "").Code)
}

func TestGate_AcceptsBcryptHashedKeys(t *testing.T) {
	hash, err := auth.HashKey("hashed-secret")
	require.NoError(t, err)
	router := newTestRouter(t, writeKeysFile(t, hash+"\n"))

	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/tags", "", APIKeyHeader, "hashed-secret").Code)
	assertProblem(t, do(t, router, http.MethodGet, "/tags", "", APIKeyHeader, hash), http.StatusUnauthorized)
}

// --- Search (end to end over SQLite) ---

func TestSearch_FiltersAndTotalCount(t *testing.T) {
	router := newTestRouter(t, nil)
	createTask(t, router, `{"title":"Buy milk","due_date":"2026-01-10"}`)
	createTask(t, router, `{"title":"Pay rent","additional_details":"MILK money too","due_date":"2026-02-10"}`)
	createTask(t, router, `{"title":"Walk dog","completed":true}`)

	w := do(t, router, http.MethodGet, "/tasks/search?q=milk", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "2", w.Header().Get(TotalCountHeader))
	assert.Len(t, decode[[]types.SearchTask](t, w), 2)

	w = do(t, router, http.MethodGet, "/tasks/search?q=milk&from_date=2026-02-01", "")
	require.Equal(t, http.StatusOK, w.Code)
	results := decode[[]types.SearchTask](t, w)
	require.Len(t, results, 1)
	assert.Equal(t, "Pay rent", results[0].Title)
	assert.NotNil(t, results[0].Reminders)

	w = do(t, router, http.MethodGet, "/tasks/search?completed=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get(TotalCountHeader))

	w = do(t, router, http.MethodGet, "/tasks/search?limit=1&offset=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "3", w.Header().Get(TotalCountHeader))
	assert.Len(t, decode[[]types.SearchTask](t, w), 1)

	w = do(t, router, http.MethodGet, "/tasks/search?q=nothing-matches", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestSearch_IncludesReminders(t *testing.T) {
	router := newTestRouter(t, nil)
	task := createTask(t, router, `{"title":"call mom"}`)
	do(t, router, http.MethodPost, "/tasks/"+task.ID+"/reminders", `{"remind_at":"2026-07-01T10:00:00Z"}`)

	w := do(t, router, http.MethodGet, "/tasks/search?q=mom", "")
	require.Equal(t, http.StatusOK, w.Code)
	results := decode[[]types.SearchTask](t, w)
	require.Len(t, results, 1)
	require.Len(t, results[0].Reminders, 1)
	assert.Equal(t, task.ID, results[0].Reminders[0].TaskID)
}

func TestSearch_PassesTotalFromStore(t *testing.T) {
	ms := &mockStore{searchResult: &types.SearchResult{Tasks: []types.SearchTask{}, Total: 17}}
	h := NewHandler(ms, nil, "", DefaultSearchLimits())

	req := httptest.NewRequest(http.MethodGet, "/tasks/search?limit=0", nil)
	w := httptest.NewRecorder()
	h.SearchTasks(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, strconv.Itoa(17), w.Header().Get(TotalCountHeader))
	assert.Equal(t, 0, ms.lastSearch.Limit)
}

func TestSearch_StoreErrorIs500(t *testing.T) {
	ms := &mockStore{searchErr: errors.New("boom")}
	h := NewHandler(ms, nil, "", DefaultSearchLimits())

	req := httptest.NewRequest(http.MethodGet, "/tasks/search", nil)
	w := httptest.NewRecorder()
	h.SearchTasks(w, req)

	assertProblem(t, w, http.StatusInternalServerError)
}
