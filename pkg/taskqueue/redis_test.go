package taskqueue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupQueue 使用miniredis创建队列
func setupQueue(t *testing.T) (*RedisQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	q, err := NewRedisQueue(&Config{
		RedisAddr:   mr.Addr(),
		Concurrency: 1,
		RetryLimit:  1,
		RetryDelay:  time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { q.Close() })
	return q, mr
}

func TestNewRedisQueue_ConnectionFailure(t *testing.T) {
	_, err := NewRedisQueue(&Config{RedisAddr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestRedisQueue_Enqueue(t *testing.T) {
	q, _ := setupQueue(t)
	ctx := context.Background()

	payload := &AggregateEvaluationPayload{
		CaseIDs:           []string{"1", "2"},
		ReferenceStrategy: "semantic",
	}
	taskID, err := q.Enqueue(ctx, TaskAggregateEvaluation, "run-1", payload)
	require.NoError(t, err)
	assert.NotEmpty(t, taskID)

	task, err := q.GetTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, TaskAggregateEvaluation, task.Type)
	assert.Equal(t, "run-1", task.RunID)
	assert.Equal(t, StatusPending, task.Status)
	assert.Equal(t, 1, task.MaxRetries)

	var got AggregateEvaluationPayload
	require.NoError(t, UnmarshalPayload(task.Payload, &got))
	assert.Equal(t, *payload, got)

	_, err = q.GetTask(ctx, "missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestRedisQueue_UpdateTaskStatus(t *testing.T) {
	q, _ := setupQueue(t)
	ctx := context.Background()

	taskID, err := q.Enqueue(ctx, TaskAggregateEvaluation, "", &AggregateEvaluationPayload{CaseIDs: []string{"1"}})
	require.NoError(t, err)

	require.NoError(t, q.UpdateTaskStatus(ctx, taskID, StatusProcessing, nil, ""))
	task, err := q.GetTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, task.Status)
	assert.NotNil(t, task.StartedAt)
	assert.Nil(t, task.CompletedAt)

	require.NoError(t, q.UpdateProgress(ctx, taskID, 150))
	task, _ = q.GetTask(ctx, taskID)
	assert.Equal(t, 100.0, task.Progress, "进度上限为100")

	require.NoError(t, q.UpdateTaskStatus(ctx, taskID, StatusCompleted, map[string]int{"cases": 1}, ""))
	task, _ = q.GetTask(ctx, taskID)
	assert.Equal(t, StatusCompleted, task.Status)
	assert.NotNil(t, task.CompletedAt)
	assert.JSONEq(t, `{"cases":1}`, string(task.Result))

	assert.ErrorIs(t, q.UpdateTaskStatus(ctx, "missing", StatusFailed, nil, "x"), ErrTaskNotFound)
}

func TestRedisQueue_TaskExpiry(t *testing.T) {
	q, mr := setupQueue(t)
	ctx := context.Background()

	taskID, err := q.Enqueue(ctx, TaskAggregateEvaluation, "", nil)
	require.NoError(t, err)

	mr.FastForward(8 * 24 * time.Hour)
	_, err = q.GetTask(ctx, taskID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestRedisQueue_WaitForTask(t *testing.T) {
	q, _ := setupQueue(t)
	ctx := context.Background()

	taskID, err := q.Enqueue(ctx, TaskAggregateEvaluation, "run-2", nil)
	require.NoError(t, err)

	go func() {
		time.Sleep(100 * time.Millisecond)
		q.UpdateTaskStatus(context.Background(), taskID, StatusFailed, nil, "boom")
	}()

	task, err := q.WaitForTask(ctx, taskID, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, task.Status)
	assert.Equal(t, "boom", task.Error)

	// 超时
	pendingID, err := q.Enqueue(ctx, TaskAggregateEvaluation, "run-3", nil)
	require.NoError(t, err)
	_, err = q.WaitForTask(ctx, pendingID, 200*time.Millisecond)
	assert.ErrorIs(t, err, ErrTaskTimeout)
}

func TestRedisQueue_DeleteTask(t *testing.T) {
	q, _ := setupQueue(t)
	ctx := context.Background()

	taskID, err := q.Enqueue(ctx, TaskAggregateEvaluation, "", nil)
	require.NoError(t, err)

	require.NoError(t, q.DeleteTask(ctx, taskID))
	_, err = q.GetTask(ctx, taskID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.ErrorIs(t, q.DeleteTask(ctx, taskID), ErrTaskNotFound)
}

func TestRedisWorker_Run(t *testing.T) {
	q, _ := setupQueue(t)
	ctx := context.Background()

	var dispatched []*Task
	callbacks := NewCallbackProcessor(nil)
	callbacks.RegisterHandler(TaskAggregateEvaluation, func(ctx context.Context, task *Task) error {
		dispatched = append(dispatched, task)
		return nil
	})

	w := NewRedisWorker(q, callbacks)

	t.Run("success", func(t *testing.T) {
		taskID, err := q.Enqueue(ctx, TaskAggregateEvaluation, "run-1", nil)
		require.NoError(t, err)

		handler := HandlerFunc(func(ctx context.Context, task *Task, progress ProgressFunc) (interface{}, error) {
			progress(50)
			return map[string]string{"best": "tokenwise"}, nil
		})
		require.NoError(t, w.run(ctx, taskID, handler))

		task, err := q.GetTask(ctx, taskID)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, task.Status)
		assert.Equal(t, 100.0, task.Progress)
		assert.JSONEq(t, `{"best":"tokenwise"}`, string(task.Result))

		require.Len(t, dispatched, 1)
		assert.Equal(t, taskID, dispatched[0].ID)
		assert.Equal(t, StatusCompleted, dispatched[0].Status)
	})

	t.Run("failure", func(t *testing.T) {
		taskID, err := q.Enqueue(ctx, TaskAggregateEvaluation, "run-2", nil)
		require.NoError(t, err)

		handler := HandlerFunc(func(ctx context.Context, task *Task, progress ProgressFunc) (interface{}, error) {
			return nil, errors.New("no cases")
		})
		assert.Error(t, w.run(ctx, taskID, handler))

		task, _ := q.GetTask(ctx, taskID)
		assert.Equal(t, StatusFailed, task.Status)
		assert.Equal(t, "no cases", task.Error)
		assert.Len(t, dispatched, 2)
	})

	t.Run("missing task", func(t *testing.T) {
		err := w.run(ctx, "missing", HandlerFunc(func(ctx context.Context, task *Task, progress ProgressFunc) (interface{}, error) {
			t.Fatal("handler should not run")
			return nil, nil
		}))
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestQueueFactory(t *testing.T) {
	mr := miniredis.RunT(t)
	q, err := NewQueue("redis", &Config{RedisAddr: mr.Addr()})
	require.NoError(t, err)
	defer q.Close()

	_, err = NewQueue("kafka", nil)
	assert.Error(t, err)
}
