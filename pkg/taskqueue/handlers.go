package taskqueue

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// TaskCallbackHandler 任务结束后的回调
type TaskCallbackHandler func(ctx context.Context, task *Task) error

// CallbackProcessor 按任务类型分发任务结束回调
// 例如将评估结果回写到数据库
type CallbackProcessor struct {
	mu        sync.RWMutex
	handlers  map[TaskType]TaskCallbackHandler
	defaultFn TaskCallbackHandler
	logger    *logrus.Logger
}

// NewCallbackProcessor 创建回调处理器
func NewCallbackProcessor(logger *logrus.Logger) *CallbackProcessor {
	if logger == nil {
		logger = logrus.New()
	}
	return &CallbackProcessor{
		handlers: make(map[TaskType]TaskCallbackHandler),
		logger:   logger,
	}
}

// RegisterHandler 注册特定类型的回调
func (p *CallbackProcessor) RegisterHandler(taskType TaskType, handler TaskCallbackHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[taskType] = handler
	p.logger.WithField("task_type", taskType).Debug("Registered task callback")
}

// SetDefaultHandler 设置未注册类型使用的回调
func (p *CallbackProcessor) SetDefaultHandler(handler TaskCallbackHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.defaultFn = handler
}

// Dispatch 调用任务类型对应的回调，只处理已结束的任务
func (p *CallbackProcessor) Dispatch(ctx context.Context, task *Task) error {
	if task == nil {
		return ErrTaskNotFound
	}
	if !task.Status.Done() {
		return fmt.Errorf("task %s is still %s", task.ID, task.Status)
	}

	p.mu.RLock()
	handler, ok := p.handlers[task.Type]
	if !ok {
		handler = p.defaultFn
	}
	p.mu.RUnlock()

	if handler == nil {
		p.logger.WithField("task_type", task.Type).Debug("No callback registered for task type")
		return nil
	}

	if task.Status == StatusFailed {
		p.logger.WithFields(logrus.Fields{
			"task_id": task.ID,
			"error":   task.Error,
		}).Warn("Task failed")
	}

	return handler(ctx, task)
}
