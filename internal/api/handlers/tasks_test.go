package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/teamboard/internal/api/handlers"
	"github.com/hugh/teamboard/internal/api/middleware"
	"github.com/hugh/teamboard/internal/auth"
	"github.com/hugh/teamboard/internal/database/models"
	"github.com/hugh/teamboard/internal/task"
	"github.com/hugh/teamboard/internal/team"
	"github.com/hugh/teamboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTaskTestRouter(t *testing.T) (*chi.Mux, *testutil.TestSetup, uint) {
	tc := testutil.NewTestContext(t)

	teamService := team.NewService(tc.DB)
	detail, err := teamService.CreateTeam(testutil.TestContext(t), "Task Team", tc.User.ID)
	require.NoError(t, err)

	taskService := task.NewService(tc.DB)
	revoker := auth.NewTokenRevoker(nil)
	handler := handlers.NewTaskHandler(taskService)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(tc.JWTService, revoker))
		r.Get("/api/v1/tasks", handler.List)
		r.Post("/api/v1/tasks", handler.Create)
		r.Get("/api/v1/tasks/{id}", handler.Get)
		r.Put("/api/v1/tasks/{id}", handler.Update)
		r.Delete("/api/v1/tasks/{id}", handler.Delete)
		r.Put("/api/v1/tasks/{id}/status", handler.UpdateStatus)
	})

	return r, tc, detail.ID
}

func TestTaskHandler_Create(t *testing.T) {
	router, tc, teamID := setupTaskTestRouter(t)
	defer tc.Cleanup()

	t.Run("requires authentication", func(t *testing.T) {
		body := map[string]interface{}{"team_id": teamID, "title": "Nope"}
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/tasks", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("member creates with due date", func(t *testing.T) {
		body := map[string]interface{}{
			"team_id":  teamID,
			"title":    "Ship the release",
			"due_date": "2026-10-01",
		}
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/tasks", body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		env := testutil.ParseEnvelope(t, rr)
		var created models.Task
		require.NoError(t, json.Unmarshal(env.Data, &created))
		assert.Equal(t, models.TaskStatusPending, created.Status)
		require.NotNil(t, created.DueDate)
	})

	t.Run("outsider gets 403", func(t *testing.T) {
		outsider := testutil.CreateTestUser(t, tc.DB)
		token := testutil.GenerateTestToken(t, tc.JWTService, outsider)

		body := map[string]interface{}{"team_id": teamID, "title": "Intrusion"}
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/tasks", body, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("bad due date fails validation", func(t *testing.T) {
		body := map[string]interface{}{
			"team_id":  teamID,
			"title":    "Bad date",
			"due_date": "next tuesday",
		}
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/tasks", body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		env := testutil.ParseEnvelope(t, rr)
		assert.Contains(t, env.Details, "due_date")
	})

	t.Run("invalid status fails validation", func(t *testing.T) {
		body := map[string]interface{}{
			"team_id": teamID,
			"title":   "Bad status",
			"status":  "Done-ish",
		}
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/tasks", body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestTaskHandler_ListAndGet(t *testing.T) {
	router, tc, teamID := setupTaskTestRouter(t)
	defer tc.Cleanup()

	teamRef := &models.Team{Base: models.Base{ID: teamID}}
	created := testutil.CreateTestTask(t, tc.DB, teamRef, "Visible task")

	t.Run("member sees team tasks", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/tasks", nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		env := testutil.ParseEnvelope(t, rr)
		var tasks []models.Task
		require.NoError(t, json.Unmarshal(env.Data, &tasks))
		require.Len(t, tasks, 1)
		assert.Equal(t, "Visible task", tasks[0].Title)
	})

	t.Run("outsider sees nothing", func(t *testing.T) {
		outsider := testutil.CreateTestUser(t, tc.DB)
		token := testutil.GenerateTestToken(t, tc.JWTService, outsider)

		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/tasks", nil, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		env := testutil.ParseEnvelope(t, rr)
		var tasks []models.Task
		require.NoError(t, json.Unmarshal(env.Data, &tasks))
		assert.Empty(t, tasks)
	})

	t.Run("invalid status filter is 400", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/tasks?status=Whatever", nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing task is 404", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/tasks/99999", nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("outsider read of existing task is 403", func(t *testing.T) {
		outsider := testutil.CreateTestUser(t, tc.DB)
		token := testutil.GenerateTestToken(t, tc.JWTService, outsider)

		req := testutil.AuthenticatedRequest(t, "GET", fmt.Sprintf("/api/v1/tasks/%d", created.ID), nil, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestTaskHandler_UpdateStatus(t *testing.T) {
	router, tc, teamID := setupTaskTestRouter(t)
	defer tc.Cleanup()

	teamRef := &models.Team{Base: models.Base{ID: teamID}}
	member := testutil.CreateTestUser(t, tc.DB)
	testutil.AddTestMember(t, tc.DB, teamRef, member, models.RoleMember)
	memberToken := testutil.GenerateTestToken(t, tc.JWTService, member)

	unassigned := testutil.CreateTestTask(t, tc.DB, teamRef, "Unassigned")
	path := fmt.Sprintf("/api/v1/tasks/%d/status", unassigned.ID)

	t.Run("plain member cannot move unassigned task", func(t *testing.T) {
		body := map[string]string{"status": "Completed"}
		req := testutil.AuthenticatedRequest(t, "PUT", path, body, memberToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("admin moves unassigned task", func(t *testing.T) {
		body := map[string]string{"status": "Completed"}
		req := testutil.AuthenticatedRequest(t, "PUT", path, body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("assignee moves own task", func(t *testing.T) {
		assigned := testutil.CreateTestTask(t, tc.DB, teamRef, "Mine")
		require.NoError(t, tc.DB.Model(assigned).Update("assigned_to", member.ID).Error)

		body := map[string]string{"status": "In Progress"}
		req := testutil.AuthenticatedRequest(t, "PUT", fmt.Sprintf("/api/v1/tasks/%d/status", assigned.ID), body, memberToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("missing status is 400", func(t *testing.T) {
		body := map[string]string{}
		req := testutil.AuthenticatedRequest(t, "PUT", path, body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestTaskHandler_UpdateAndDelete(t *testing.T) {
	router, tc, teamID := setupTaskTestRouter(t)
	defer tc.Cleanup()

	teamRef := &models.Team{Base: models.Base{ID: teamID}}
	created := testutil.CreateTestTask(t, tc.DB, teamRef, "Editable")
	path := fmt.Sprintf("/api/v1/tasks/%d", created.ID)

	t.Run("empty update is 400", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PUT", path, map[string]string{}, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("member edits title", func(t *testing.T) {
		body := map[string]string{"title": "Edited title"}
		req := testutil.AuthenticatedRequest(t, "PUT", path, body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		env := testutil.ParseEnvelope(t, rr)
		var updated models.Task
		require.NoError(t, json.Unmarshal(env.Data, &updated))
		assert.Equal(t, "Edited title", updated.Title)
	})

	t.Run("member deletes", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "DELETE", path, nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		req = testutil.AuthenticatedRequest(t, "GET", path, nil, tc.Token)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
