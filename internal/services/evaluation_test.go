package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fyerfyer/legal-summary/internal/evaluation"
	"github.com/fyerfyer/legal-summary/internal/loader"
	"github.com/fyerfyer/legal-summary/internal/models"
	"github.com/fyerfyer/legal-summary/internal/repository"
	"github.com/fyerfyer/legal-summary/pkg/taskqueue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEvaluationQueue(t *testing.T) *taskqueue.RedisQueue {
	t.Helper()
	mr := miniredis.RunT(t)
	q, err := taskqueue.NewRedisQueue(&taskqueue.Config{
		RedisAddr:   mr.Addr(),
		Concurrency: 1,
		RetryLimit:  1,
		RetryDelay:  time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { q.Close() })
	return q
}

func TestEvaluationRun_WithoutRepository(t *testing.T) {
	s := NewEvaluationService(newTestComparison(t, newTestLoader(t)))

	result, err := s.Run(context.Background(), []string{"1", "2"}, loader.Semantic)
	require.NoError(t, err)
	assert.Empty(t, result.RunID)
	assert.Equal(t, evaluation.ModeApprox, result.Mode)
	assert.Equal(t, loader.TokenWise, result.Best)
	assert.Equal(t, []string{"2"}, result.Aggregate.Skipped)

	_, err = s.Run(context.Background(), nil, loader.Strategy("nope"))
	assert.Error(t, err)
}

func TestEvaluationRun_Persisted(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewEvaluationRepository(setupTestDB(t))
	s := NewEvaluationService(newTestComparison(t, newTestLoader(t)), WithEvaluationRepository(repo))

	result, err := s.Run(ctx, []string{"1"}, loader.Semantic)
	require.NoError(t, err)
	require.NotEmpty(t, result.RunID)

	run, err := repo.GetByID(result.RunID)
	require.NoError(t, err)
	assert.Equal(t, models.EvalStatusCompleted, run.Status)
	assert.Equal(t, "tokenwise", run.BestStrategy)
	assert.Equal(t, "semantic", run.ReferenceStrategy)
	assert.JSONEq(t, `["1"]`, string(run.CaseIDs))
	assert.NotNil(t, run.CompletedAt)

	var stored EvaluationResult
	require.NoError(t, json.Unmarshal(run.Result, &stored))
	assert.Equal(t, result.Best, stored.Best)
	assert.Equal(t, []string{"1"}, stored.Aggregate.Evaluated)

	runs, total, err := s.ListRuns(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, runs, 1)
}

func TestEvaluationSubmit_AsyncDisabled(t *testing.T) {
	s := NewEvaluationService(newTestComparison(t, newTestLoader(t)))
	assert.False(t, s.AsyncEnabled())

	_, err := s.Submit(context.Background(), nil, loader.Semantic)
	assert.True(t, errors.Is(err, ErrAsyncDisabled))

	_, err = s.GetTask(context.Background(), "x")
	assert.True(t, errors.Is(err, ErrAsyncDisabled))

	runs, total, err := s.ListRuns(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.Zero(t, total)
}

// TestEvaluationAsyncLifecycle 模拟工作者执行任务并回写结果
func TestEvaluationAsyncLifecycle(t *testing.T) {
	ctx := context.Background()
	q := setupEvaluationQueue(t)
	repo := repository.NewEvaluationRepository(setupTestDB(t))
	s := NewEvaluationService(newTestComparison(t, newTestLoader(t)),
		WithEvaluationRepository(repo),
		WithEvaluationQueue(q),
	)
	require.True(t, s.AsyncEnabled())

	_, err := s.Submit(ctx, nil, loader.Strategy("bad"))
	assert.Error(t, err)

	taskID, err := s.Submit(ctx, []string{"1", "2"}, loader.Semantic)
	require.NoError(t, err)

	status, err := s.GetTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, taskqueue.StatusPending, status.Task.Status)
	require.NotNil(t, status.Run)
	assert.Equal(t, taskID, status.Run.TaskID)
	assert.Equal(t, models.EvalStatusPending, status.Run.Status)
	assert.Nil(t, status.Result)

	task, err := q.GetTask(ctx, taskID)
	require.NoError(t, err)

	var progress []float64
	out, err := s.HandleAggregateTask(ctx, task, func(p float64) {
		progress = append(progress, p)
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{50, 100}, progress)

	run, err := repo.GetByID(task.RunID)
	require.NoError(t, err)
	assert.Equal(t, models.EvalStatusRunning, run.Status)

	require.NoError(t, q.UpdateTaskStatus(ctx, taskID, taskqueue.StatusCompleted, out, ""))
	task, err = q.GetTask(ctx, taskID)
	require.NoError(t, err)
	require.NoError(t, s.OnTaskFinished(ctx, task))

	status, err = s.GetTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, float64(100), status.Task.Progress)
	require.NotNil(t, status.Result)
	assert.Equal(t, loader.TokenWise, status.Result.Best)
	assert.Equal(t, task.RunID, status.Result.RunID)
	assert.Equal(t, models.EvalStatusCompleted, status.Run.Status)
	assert.Equal(t, "tokenwise", status.Run.BestStrategy)
}

func TestEvaluationOnTaskFinished_Failed(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewEvaluationRepository(setupTestDB(t))
	s := NewEvaluationService(newTestComparison(t, newTestLoader(t)), WithEvaluationRepository(repo))

	run := &models.EvaluationRun{ID: "run-1", ReferenceStrategy: "semantic"}
	require.NoError(t, repo.Create(run))

	err := s.OnTaskFinished(ctx, &taskqueue.Task{
		ID:     "task-1",
		RunID:  "run-1",
		Status: taskqueue.StatusFailed,
		Error:  "data dir unreadable",
	})
	require.NoError(t, err)

	got, err := repo.GetByID("run-1")
	require.NoError(t, err)
	assert.Equal(t, models.EvalStatusFailed, got.Status)
	assert.Equal(t, "data dir unreadable", got.Error)

	// 没有关联评估记录的任务直接忽略
	assert.NoError(t, s.OnTaskFinished(ctx, &taskqueue.Task{ID: "task-2", Status: taskqueue.StatusCompleted}))
}

func TestHandleAggregateTask_InvalidPayload(t *testing.T) {
	s := NewEvaluationService(newTestComparison(t, newTestLoader(t)))

	_, err := s.HandleAggregateTask(context.Background(), &taskqueue.Task{Payload: []byte("{")}, nil)
	assert.True(t, errors.Is(err, taskqueue.ErrInvalidPayload))

	payload, err := taskqueue.MarshalPayload(&taskqueue.AggregateEvaluationPayload{ReferenceStrategy: "x"})
	require.NoError(t, err)
	_, err = s.HandleAggregateTask(context.Background(), &taskqueue.Task{Payload: payload}, nil)
	assert.Error(t, err)
}
