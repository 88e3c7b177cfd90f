package taskqueue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallbackProcessor_Dispatch(t *testing.T) {
	p := NewCallbackProcessor(nil)
	ctx := context.Background()

	var got []TaskType
	p.RegisterHandler(TaskAggregateEvaluation, func(ctx context.Context, task *Task) error {
		got = append(got, task.Type)
		return nil
	})

	assert.NoError(t, p.Dispatch(ctx, &Task{ID: "1", Type: TaskAggregateEvaluation, Status: StatusCompleted}))
	assert.Equal(t, []TaskType{TaskAggregateEvaluation}, got)

	// 未注册类型且没有默认回调
	assert.NoError(t, p.Dispatch(ctx, &Task{ID: "2", Type: "report:render", Status: StatusFailed}))

	// 默认回调
	p.SetDefaultHandler(func(ctx context.Context, task *Task) error {
		got = append(got, "default")
		return nil
	})
	assert.NoError(t, p.Dispatch(ctx, &Task{ID: "3", Type: "report:render", Status: StatusCompleted}))
	assert.Equal(t, []TaskType{TaskAggregateEvaluation, "default"}, got)

	// 未结束的任务不分发
	assert.Error(t, p.Dispatch(ctx, &Task{ID: "4", Type: TaskAggregateEvaluation, Status: StatusProcessing}))
	assert.ErrorIs(t, p.Dispatch(ctx, nil), ErrTaskNotFound)
}

func TestNewTaskInfo(t *testing.T) {
	info := NewTaskInfo(&Task{ID: "t", Type: TaskAggregateEvaluation, Status: StatusCompleted, Progress: 40})
	assert.Equal(t, 100.0, info.Progress)

	info = NewTaskInfo(&Task{ID: "t", Status: StatusProcessing, Progress: 40})
	assert.Equal(t, 40.0, info.Progress)
	assert.True(t, StatusFailed.Done())
	assert.False(t, StatusPending.Done())
}

func TestUnmarshalPayload(t *testing.T) {
	var p AggregateEvaluationPayload
	assert.NoError(t, UnmarshalPayload(nil, &p))
	assert.ErrorIs(t, UnmarshalPayload([]byte("{bad"), &p), ErrInvalidPayload)
}
