package taskqueue

import (
	"context"
	"time"
)

// Queue 任务队列接口
type Queue interface {
	// Enqueue 将任务加入队列，返回任务ID
	Enqueue(ctx context.Context, taskType TaskType, runID string, payload interface{}) (string, error)

	// GetTask 获取任务信息
	GetTask(ctx context.Context, taskID string) (*Task, error)

	// WaitForTask 等待任务结束，timeout为0表示不设置超时
	WaitForTask(ctx context.Context, taskID string, timeout time.Duration) (*Task, error)

	// UpdateTaskStatus 更新任务状态和结果
	UpdateTaskStatus(ctx context.Context, taskID string, status TaskStatus, result interface{}, errorMsg string) error

	// UpdateProgress 更新任务进度
	UpdateProgress(ctx context.Context, taskID string, progress float64) error

	// DeleteTask 删除任务
	DeleteTask(ctx context.Context, taskID string) error

	// Close 关闭队列连接
	Close() error
}

// Handler 任务处理器
// 返回的结果会序列化后写入任务记录
type Handler interface {
	ProcessTask(ctx context.Context, task *Task, progress ProgressFunc) (interface{}, error)
}

// HandlerFunc 函数形式的Handler
type HandlerFunc func(ctx context.Context, task *Task, progress ProgressFunc) (interface{}, error)

// ProcessTask 实现Handler接口
func (f HandlerFunc) ProcessTask(ctx context.Context, task *Task, progress ProgressFunc) (interface{}, error) {
	return f(ctx, task, progress)
}

// ProgressFunc 报告处理进度(0-100)
type ProgressFunc func(progress float64)

// Worker 运行一组Handler处理队列中的任务
type Worker interface {
	RegisterHandler(taskType TaskType, handler Handler)
	Start() error
	Stop()
}

// Config 队列配置
type Config struct {
	RedisAddr     string         // Redis地址
	RedisPassword string         // Redis密码
	RedisDB       int            // Redis数据库
	Concurrency   int            // 并发处理任务数
	RetryLimit    int            // 最大重试次数
	RetryDelay    time.Duration  // 重试延迟
	TaskExpiry    time.Duration  // 任务记录保留时间
	Queues        map[string]int // 队列名称到优先级的映射
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		RedisAddr:   "localhost:6379",
		Concurrency: 4,
		RetryLimit:  1,
		RetryDelay:  30 * time.Second,
		TaskExpiry:  7 * 24 * time.Hour,
		Queues: map[string]int{
			"default": 1,
		},
	}
}

// Factory 队列工厂函数
type Factory func(cfg *Config) (Queue, error)

// ErrTaskNotFound 任务未找到
var ErrTaskNotFound = TaskError("task not found")

// ErrTaskTimeout 等待任务超时
var ErrTaskTimeout = TaskError("task timed out")

// ErrInvalidPayload 无效的任务载荷
var ErrInvalidPayload = TaskError("invalid task payload")

// TaskError 任务错误类型
type TaskError string

// Error 实现error接口
func (e TaskError) Error() string {
	return string(e)
}
