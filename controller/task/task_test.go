package task

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasky/apperr"
	"tasky/model"
	"tasky/services"
	"tasky/store"
)

var secret = []byte("controller-secret")

type harness struct {
	t      *testing.T
	router *gin.Engine
	admin  string
	user   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc := services.NewTaskService(st, services.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	router := gin.New()
	TaskController(router, svc, secret)

	admin, err := services.CreateAccessToken(secret, "admin-1", model.RoleAdmin, time.Hour)
	require.NoError(t, err)
	user, err := services.CreateAccessToken(secret, "user-1", "member", time.Hour)
	require.NoError(t, err)
	return &harness{t: t, router: router, admin: admin, user: user}
}

func (h *harness) do(method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	h.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	var out map[string]any
	require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w, out
}

func (h *harness) create(title, priority string) string {
	h.t.Helper()
	w, body := h.do(http.MethodPost, "/api/task/create", h.admin,
		`{"title":"`+title+`","date":"2024-02-09","priority":"`+priority+`","team":["u1","u2"]}`)
	require.Equal(h.t, http.StatusCreated, w.Code, body)
	return body["task"].(map[string]any)["_id"].(string)
}

func TestCreateTask(t *testing.T) {
	h := newHarness(t)

	w, body := h.do(http.MethodPost, "/api/task/create", h.admin,
		`{"title":"Test task","date":"2024-02-09","priority":"High","team":["u1","u2"]}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, body["status"])

	task := body["task"].(map[string]any)
	assert.NotEmpty(t, task["_id"])
	assert.Equal(t, "todo", task["stage"])
	assert.Equal(t, "high", task["priority"])
	assert.Equal(t, false, task["isTrashed"])
	activities := task["activities"].([]any)
	require.Len(t, activities, 1)
	assert.Equal(t, "assigned", activities[0].(map[string]any)["type"])
	assert.Equal(t, "admin-1", activities[0].(map[string]any)["by"])
}

func TestCreateTask_Validation(t *testing.T) {
	h := newHarness(t)

	w, body := h.do(http.MethodPost, "/api/task/create", h.admin,
		`{"title":"x","date":"2024-02-09","priority":"urgent"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation", body["error"])
	assert.Equal(t, "priority", body["field"])

	w, body = h.do(http.MethodPost, "/api/task/create", h.admin, `{"date":"2024-02-09","priority":"low"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "title", body["field"])

	w, _ = h.do(http.MethodPost, "/api/task/create", h.admin, `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	h := newHarness(t)
	id := h.create("Guarded", "low")

	w, _ := h.do(http.MethodPost, "/api/task/create", h.user, `{"title":"x","date":"2024-02-09","priority":"low"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = h.do(http.MethodPut, "/api/task/"+id, h.user, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = h.do(http.MethodGet, "/api/task/"+id, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Any authenticated user may read and comment.
	w, _ = h.do(http.MethodGet, "/api/task/"+id, h.user, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w, body := h.do(http.MethodPost, "/api/task/activity/"+id, h.user, `{"type":"commented","activity":"looks good"}`)
	require.Equal(t, http.StatusOK, w.Code)
	activities := body["task"].(map[string]any)["activities"].([]any)
	require.Len(t, activities, 2)
	assert.Equal(t, "user-1", activities[1].(map[string]any)["by"])
}

func TestGetTask_NotFound(t *testing.T) {
	h := newHarness(t)
	w, body := h.do(http.MethodGet, "/api/task/missing", h.user, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", body["error"])
	assert.Equal(t, false, body["status"])
}

func TestListTasks(t *testing.T) {
	h := newHarness(t)
	h.create("Alpha", "low")
	beta := h.create("Beta", "high")

	w, body := h.do(http.MethodPut, "/api/task/update/"+beta, h.admin, `{"stage":"in progress"}`)
	require.Equal(t, http.StatusOK, w.Code, body)

	w, body = h.do(http.MethodGet, "/api/task?stage=in%20progress", h.user, "")
	require.Equal(t, http.StatusOK, w.Code)
	tasks := body["tasks"].([]any)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Beta", tasks[0].(map[string]any)["title"])

	w, body = h.do(http.MethodGet, "/api/task?search=alp", h.user, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["tasks"].([]any), 1)

	w, body = h.do(http.MethodGet, "/api/task?isTrashed=maybe", h.user, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "isTrashed", body["field"])

	w, _ = h.do(http.MethodGet, "/api/task?stage=blocked", h.user, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateTask(t *testing.T) {
	h := newHarness(t)
	id := h.create("Draft", "low")

	w, body := h.do(http.MethodPut, "/api/task/update/"+id, h.admin,
		`{"title":"Final","priority":"medium","activities":[],"_id":"other"}`)
	require.Equal(t, http.StatusOK, w.Code, body)
	task := body["task"].(map[string]any)
	assert.Equal(t, id, task["_id"])
	assert.Equal(t, "Final", task["title"])
	assert.Equal(t, "medium", task["priority"])
	assert.Len(t, task["activities"].([]any), 1)

	w, _ = h.do(http.MethodPut, "/api/task/update/"+id, h.admin, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = h.do(http.MethodPut, "/api/task/update/missing", h.admin, `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateSubTaskAndDuplicate(t *testing.T) {
	h := newHarness(t)
	id := h.create("Parent", "normal")

	w, body := h.do(http.MethodPut, "/api/task/create-subtask/"+id, h.admin,
		`{"title":"Child","date":"2024-02-10","tag":"design"}`)
	require.Equal(t, http.StatusOK, w.Code, body)
	subs := body["task"].(map[string]any)["subTasks"].([]any)
	require.Len(t, subs, 1)
	assert.Equal(t, "Child", subs[0].(map[string]any)["title"])

	w, body = h.do(http.MethodPost, "/api/task/duplicate/"+id, h.admin, "")
	require.Equal(t, http.StatusCreated, w.Code, body)
	dup := body["task"].(map[string]any)
	assert.NotEqual(t, id, dup["_id"])
	assert.Equal(t, "Parent", dup["title"])
	assert.Len(t, dup["subTasks"].([]any), 1)
	assert.Empty(t, dup["activities"])
}

func TestTrashRestoreDelete(t *testing.T) {
	h := newHarness(t)
	a := h.create("A", "low")
	b := h.create("B", "low")

	for _, id := range []string{a, b} {
		w, body := h.do(http.MethodPut, "/api/task/"+id, h.admin, "")
		require.Equal(t, http.StatusOK, w.Code, body)
	}

	w, body := h.do(http.MethodGet, "/api/task?isTrashed=true", h.user, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["tasks"].([]any), 2)

	w, body = h.do(http.MethodDelete, "/api/task/delete-restore/"+a+"?actionType=restore", h.admin, "")
	require.Equal(t, http.StatusOK, w.Code, body)
	assert.Equal(t, "Task restored successfully", body["message"])

	w, body = h.do(http.MethodDelete, "/api/task/delete-restore/all?actionType=delete", h.admin, "")
	require.Equal(t, http.StatusOK, w.Code, body)
	result := body["result"].(map[string]any)
	assert.Equal(t, true, result["all"])
	assert.EqualValues(t, 1, result["affected"])

	w, _ = h.do(http.MethodGet, "/api/task/"+b, h.user, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = h.do(http.MethodGet, "/api/task/"+a, h.user, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, body = h.do(http.MethodDelete, "/api/task/delete-restore/"+a, h.admin, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "actionType", body["field"])

	w, _ = h.do(http.MethodDelete, "/api/task/delete-restore/all?actionType=trash", h.admin, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboardStatistics(t *testing.T) {
	h := newHarness(t)
	h.create("One", "high")
	h.create("Two", "low")

	w, body := h.do(http.MethodGet, "/api/task/dashboard", h.user, "")
	require.Equal(t, http.StatusOK, w.Code, body)
	stats := body["statistics"].(map[string]any)
	assert.EqualValues(t, 2, stats["totalTasks"])
	assert.EqualValues(t, 2, stats["tasks"].(map[string]any)["todo"])
	assert.EqualValues(t, 0, stats["tasks"].(map[string]any)["completed"])
	assert.Len(t, stats["graphData"].([]any), 4)
}

// brokenStore fails every read with err.
type brokenStore struct {
	store.TaskStore
	err error
}

func (b brokenStore) Get(context.Context, string) (*model.Task, error) { return nil, b.err }

func (b brokenStore) List(context.Context, store.Query) ([]*model.Task, error) { return nil, b.err }

func routerWith(t *testing.T, st store.TaskStore) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	TaskController(router, services.NewTaskService(st, services.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))), secret)
	user, err := services.CreateAccessToken(secret, "user-1", "member", time.Hour)
	require.NoError(t, err)
	return &harness{t: t, router: router, user: user}
}

func TestStoreFailures(t *testing.T) {
	h := routerWith(t, brokenStore{err: apperr.Unavailable("get task", errors.New("connection refused"))})

	for _, path := range []string{"/api/task/t1", "/api/task", "/api/task/dashboard"} {
		w, body := h.do(http.MethodGet, path, h.user, "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
		assert.Equal(t, false, body["status"])
		assert.Equal(t, "store_unavailable", body["error"])
		assert.NotContains(t, body["message"], "connection refused")
	}

	h = routerWith(t, brokenStore{err: errors.New("unexpected")})
	w, body := h.do(http.MethodGet, "/api/task/t1", h.user, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal", body["error"])
}
