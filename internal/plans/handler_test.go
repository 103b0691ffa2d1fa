package plans

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlukic/planka/internal/auth"
	"github.com/mlukic/planka/internal/telemetry/metrics"
)

func testPlansRouter(t *testing.T, repo *repoMock) *mux.Router {
	t.Helper()
	defaultPlan := validTestPlan()
	handler := NewHandler(repo, NewResolver(repo, &defaultPlan), metrics.NewTestManager())
	router := mux.NewRouter()
	handler.SetupRoutes(router)
	return router
}

func sessionRequest(method, target string, body []byte, accountID int) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	ctx := auth.ContextWithSession(req.Context(), &auth.Session{
		AccountID: accountID,
		Username:  "mile",
	})
	return req.WithContext(ctx)
}

func TestHandler_getPlan_default(t *testing.T) {
	router := testPlansRouter(t, newRepoMock())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, sessionRequest("GET", "/plan", nil, 42))

	require.Equal(t, http.StatusOK, rr.Code)

	var resp effectivePlanResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, SourceDefault, resp.Source)
	require.NotNil(t, resp.Plan)
	assert.Equal(t, "push pull legs", resp.Plan.Name)
}

func TestHandler_getPlan_user(t *testing.T) {
	repo := newRepoMock()
	router := testPlansRouter(t, repo)

	accountID := 42
	userPlan := validTestPlan()
	userPlan.Name = "my own plan"
	userPlan.AccountID = &accountID
	_, err := repo.InsertAsActive(context.Background(), userPlan)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, sessionRequest("GET", "/plan", nil, accountID))

	require.Equal(t, http.StatusOK, rr.Code)

	var resp effectivePlanResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, SourceUser, resp.Source)
	assert.Equal(t, "my own plan", resp.Plan.Name)
}

func TestHandler_getPlan_noSession(t *testing.T) {
	router := testPlansRouter(t, newRepoMock())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/plan", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandler_today(t *testing.T) {
	router := testPlansRouter(t, newRepoMock())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, sessionRequest("GET", "/plan/today", nil, 42))

	require.Equal(t, http.StatusOK, rr.Code)

	var resolved ResolvedDay
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resolved))
	assert.Equal(t, SourceDefault, resolved.Source)
	assert.NotEmpty(t, resolved.Date)
	// either a workout or an explicit rest day, depending on the weekday
	if resolved.RestDay {
		assert.Nil(t, resolved.Workout)
	} else {
		assert.NotNil(t, resolved.Workout)
	}
}

func TestHandler_upload(t *testing.T) {
	repo := newRepoMock()
	router := testPlansRouter(t, repo)

	plan := validTestPlan()
	plan.Name = "uploaded plan"
	body, err := json.Marshal(plan)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, sessionRequest("POST", "/plan", body, 42))

	require.Equal(t, http.StatusCreated, rr.Code)

	var stored Plan
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stored))
	assert.Equal(t, "uploaded plan", stored.Name)
	assert.True(t, stored.Active)
	require.NotNil(t, stored.AccountID)
	assert.Equal(t, 42, *stored.AccountID)

	// the upload is now the caller's active plan
	active, err := repo.GetActive(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "uploaded plan", active.Name)
}

func TestHandler_upload_invalid(t *testing.T) {
	router := testPlansRouter(t, newRepoMock())

	plan := validTestPlan()
	plan.Schedule = Schedule{}
	body, err := json.Marshal(plan)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, sessionRequest("POST", "/plan", body, 42))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "plan schedule is empty")
}

func TestHandler_upload_badJson(t *testing.T) {
	router := testPlansRouter(t, newRepoMock())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, sessionRequest("POST", "/plan", []byte("{not json"), 42))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
