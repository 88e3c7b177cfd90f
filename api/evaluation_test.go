package api

import (
	"net/http"
	"testing"

	"github.com/fyerfyer/legal-summary/api/model"
	"github.com/fyerfyer/legal-summary/internal/loader"
	"github.com/fyerfyer/legal-summary/internal/services"
	"github.com/fyerfyer/legal-summary/pkg/taskqueue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEvaluation_Sync(t *testing.T) {
	env := setupTestEnv(t)

	w := env.doJSON(t, http.MethodPost, "/api/evaluations", model.EvaluationRequest{
		CaseIDs:   []string{"1", "2"},
		Reference: "semantic",
	})
	requireStatus(t, w, http.StatusOK)

	var result services.EvaluationResult
	decodeResponse(t, w, &result)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, loader.TokenWise, result.Best)
	assert.Equal(t, []string{"1"}, result.Aggregate.Evaluated)
	assert.Equal(t, []string{"2"}, result.Aggregate.Skipped)
	assert.Equal(t, 1, result.Aggregate.Strategies[loader.TokenWise].CaseCount)

	w = env.do(t, http.MethodGet, "/api/evaluations", nil, "")
	requireStatus(t, w, http.StatusOK)
	var list model.EvaluationListResponse
	decodeResponse(t, w, &list)
	assert.Equal(t, int64(1), list.Total)
	require.Len(t, list.Runs, 1)
	assert.Equal(t, result.RunID, list.Runs[0].ID)
	assert.Equal(t, "tokenwise", list.Runs[0].BestStrategy)
}

func TestCreateEvaluation_Invalid(t *testing.T) {
	env := setupTestEnv(t)

	w := env.doJSON(t, http.MethodPost, "/api/evaluations", model.EvaluationRequest{Reference: "chapters"})
	requireStatus(t, w, http.StatusBadRequest)

	w = env.doJSON(t, http.MethodPost, "/api/evaluations", model.EvaluationRequest{CaseIDs: []string{"abc"}})
	requireStatus(t, w, http.StatusBadRequest)

	// 未启用队列时不能提交异步任务
	w = env.doJSON(t, http.MethodPost, "/api/evaluations", model.EvaluationRequest{Async: true})
	requireStatus(t, w, http.StatusServiceUnavailable)

	w = env.do(t, http.MethodGet, "/api/evaluations/tasks/abc", nil, "")
	requireStatus(t, w, http.StatusServiceUnavailable)
}

func TestCreateEvaluation_Async(t *testing.T) {
	env := setupTestEnv(t, withAsync())

	w := env.do(t, http.MethodGet, "/api/health", nil, "")
	var health model.HealthResponse
	decodeResponse(t, w, &health)
	assert.True(t, health.AsyncEnabled)

	w = env.doJSON(t, http.MethodPost, "/api/evaluations", model.EvaluationRequest{
		CaseIDs: []string{"1"},
		Async:   true,
	})
	requireStatus(t, w, http.StatusAccepted)

	var submitted model.EvaluationSubmitResponse
	decodeResponse(t, w, &submitted)
	require.NotEmpty(t, submitted.TaskID)
	assert.Equal(t, string(taskqueue.StatusPending), submitted.Status)

	w = env.do(t, http.MethodGet, "/api/evaluations/tasks/"+submitted.TaskID, nil, "")
	requireStatus(t, w, http.StatusOK)

	var status services.EvaluationTask
	decodeResponse(t, w, &status)
	require.NotNil(t, status.Task)
	assert.Equal(t, submitted.TaskID, status.Task.ID)
	assert.Equal(t, taskqueue.StatusPending, status.Task.Status)
	require.NotNil(t, status.Run)
	assert.Equal(t, submitted.TaskID, status.Run.TaskID)

	w = env.do(t, http.MethodGet, "/api/evaluations/tasks/missing", nil, "")
	requireStatus(t, w, http.StatusNotFound)
}
