package taskqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// 任务记录键前缀
	taskKeyPrefix = "legal-summary:task:"
	// 任务状态变化的发布频道前缀
	taskChannelPrefix = "legal-summary:task_status:"
	// 默认队列
	defaultQueueName = "default"
)

// RedisQueue 基于asynq和Redis的任务队列
// asynq负责调度，任务记录单独保存在Redis中供查询
type RedisQueue struct {
	client      *asynq.Client
	inspector   *asynq.Inspector
	redisClient *redis.Client
	cfg         *Config
	logger      *logrus.Logger
}

// QueueOption 队列配置选项
type QueueOption func(*RedisQueue)

// WithQueueLogger 设置日志记录器
func WithQueueLogger(logger *logrus.Logger) QueueOption {
	return func(q *RedisQueue) {
		q.logger = logger
	}
}

// NewRedisQueue 创建Redis任务队列实例
func NewRedisQueue(cfg *Config, opts ...QueueOption) (*RedisQueue, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.TaskExpiry <= 0 {
		cfg.TaskExpiry = DefaultConfig().TaskExpiry
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	q := &RedisQueue{
		client:      asynq.NewClient(redisOpt),
		inspector:   asynq.NewInspector(redisOpt),
		redisClient: redisClient,
		cfg:         cfg,
		logger:      logrus.New(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

// Enqueue 保存任务记录并交给asynq调度
func (q *RedisQueue) Enqueue(ctx context.Context, taskType TaskType, runID string, payload interface{}) (string, error) {
	payloadBytes, err := MarshalPayload(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	now := time.Now()
	task := &Task{
		ID:         uuid.New().String(),
		Type:       taskType,
		RunID:      runID,
		Status:     StatusPending,
		Payload:    payloadBytes,
		CreatedAt:  now,
		UpdatedAt:  now,
		MaxRetries: q.cfg.RetryLimit,
	}

	if err := q.saveTask(ctx, task); err != nil {
		return "", err
	}

	_, err = q.client.EnqueueContext(ctx,
		asynq.NewTask(string(taskType), []byte(task.ID)),
		asynq.TaskID(task.ID),
		asynq.Queue(defaultQueueName),
		asynq.MaxRetry(q.cfg.RetryLimit),
	)
	if err != nil {
		q.redisClient.Del(ctx, taskKeyPrefix+task.ID)
		return "", fmt.Errorf("failed to enqueue task: %w", err)
	}

	q.logger.WithFields(logrus.Fields{
		"task_id":   task.ID,
		"task_type": taskType,
		"run_id":    runID,
	}).Info("Task enqueued successfully")

	return task.ID, nil
}

// GetTask 获取任务信息
func (q *RedisQueue) GetTask(ctx context.Context, taskID string) (*Task, error) {
	data, err := q.redisClient.Get(ctx, taskKeyPrefix+taskID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task from redis: %w", err)
	}

	var task Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task data: %w", err)
	}
	return &task, nil
}

// WaitForTask 等待任务结束
// 订阅状态频道，同时每秒轮询一次以防错过通知
func (q *RedisQueue) WaitForTask(ctx context.Context, taskID string, timeout time.Duration) (*Task, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	pubsub := q.redisClient.Subscribe(ctx, taskChannelPrefix+taskID)
	defer pubsub.Close()

	task, err := q.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status.Done() {
		return task, nil
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ErrTaskTimeout
		case <-pubsub.Channel():
		case <-ticker.C:
		}

		task, err := q.GetTask(ctx, taskID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ErrTaskTimeout
			}
			return nil, err
		}
		if task.Status.Done() {
			return task, nil
		}
	}
}

// UpdateTaskStatus 更新任务状态并发布通知
func (q *RedisQueue) UpdateTaskStatus(ctx context.Context, taskID string, status TaskStatus, result interface{}, errMsg string) error {
	task, err := q.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	now := time.Now()
	task.Status = status
	task.UpdatedAt = now

	if status == StatusProcessing && task.StartedAt == nil {
		task.StartedAt = &now
	}
	if status.Done() {
		task.CompletedAt = &now
	}
	if status == StatusCompleted {
		task.Progress = 100
	}

	if result != nil {
		resultBytes, err := MarshalPayload(result)
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		task.Result = resultBytes
	}
	if errMsg != "" {
		task.Error = errMsg
	}

	if err := q.saveTask(ctx, task); err != nil {
		return err
	}
	return q.notify(ctx, taskID)
}

// UpdateProgress 更新任务进度
func (q *RedisQueue) UpdateProgress(ctx context.Context, taskID string, progress float64) error {
	task, err := q.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	task.Progress = progress
	task.UpdatedAt = time.Now()
	return q.saveTask(ctx, task)
}

// DeleteTask 删除任务记录，尚未执行的asynq任务一并删除
func (q *RedisQueue) DeleteTask(ctx context.Context, taskID string) error {
	if _, err := q.GetTask(ctx, taskID); err != nil {
		return err
	}

	if err := q.redisClient.Del(ctx, taskKeyPrefix+taskID).Err(); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if err := q.inspector.DeleteTask(defaultQueueName, taskID); err != nil {
		q.logger.WithError(err).WithField("task_id", taskID).Debug("Task not removed from asynq queue")
	}
	return nil
}

// Close 关闭队列连接
func (q *RedisQueue) Close() error {
	if err := q.client.Close(); err != nil {
		return err
	}
	if err := q.inspector.Close(); err != nil {
		return err
	}
	return q.redisClient.Close()
}

func (q *RedisQueue) saveTask(ctx context.Context, task *Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}
	if err := q.redisClient.Set(ctx, taskKeyPrefix+task.ID, data, q.cfg.TaskExpiry).Err(); err != nil {
		return fmt.Errorf("failed to save task data: %w", err)
	}
	return nil
}

func (q *RedisQueue) notify(ctx context.Context, taskID string) error {
	return q.redisClient.Publish(ctx, taskChannelPrefix+taskID, "updated").Err()
}

// RedisWorker asynq服务端封装
type RedisWorker struct {
	server    *asynq.Server
	queue     *RedisQueue
	handlers  map[TaskType]Handler
	callbacks *CallbackProcessor
	logger    *logrus.Logger
}

// NewRedisWorker 创建工作者，callbacks可以为nil
func NewRedisWorker(queue *RedisQueue, callbacks *CallbackProcessor) *RedisWorker {
	cfg := queue.cfg

	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		},
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues:      cfg.Queues,
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				return cfg.RetryDelay
			},
			Logger: queue.logger,
		},
	)

	return &RedisWorker{
		server:    server,
		queue:     queue,
		handlers:  make(map[TaskType]Handler),
		callbacks: callbacks,
		logger:    queue.logger,
	}
}

// RegisterHandler 注册任务处理器
func (w *RedisWorker) RegisterHandler(taskType TaskType, handler Handler) {
	w.handlers[taskType] = handler
}

// Start 启动工作者，非阻塞
func (w *RedisWorker) Start() error {
	mux := asynq.NewServeMux()
	for taskType, handler := range w.handlers {
		h := handler
		mux.HandleFunc(string(taskType), func(ctx context.Context, t *asynq.Task) error {
			return w.run(ctx, string(t.Payload()), h)
		})
		w.logger.WithField("task_type", taskType).Info("Registered handler for task type")
	}
	return w.server.Start(mux)
}

// Stop 停止工作者
func (w *RedisWorker) Stop() {
	w.server.Shutdown()
}

// run 执行单个任务并维护任务记录的状态
func (w *RedisWorker) run(ctx context.Context, taskID string, h Handler) error {
	log := w.logger.WithField("task_id", taskID)

	task, err := w.queue.GetTask(ctx, taskID)
	if err != nil {
		log.WithError(err).Error("Failed to get task info")
		if errors.Is(err, ErrTaskNotFound) {
			return fmt.Errorf("%w: %w", asynq.SkipRetry, err)
		}
		return err
	}

	if err := w.queue.UpdateTaskStatus(ctx, taskID, StatusProcessing, nil, ""); err != nil {
		log.WithError(err).Warn("Failed to update task status to processing")
	}

	progress := func(p float64) {
		if err := w.queue.UpdateProgress(ctx, taskID, p); err != nil {
			log.WithError(err).Debug("Failed to update task progress")
		}
	}

	start := time.Now()
	result, procErr := h.ProcessTask(ctx, task, progress)

	status := StatusCompleted
	errMsg := ""
	if procErr != nil {
		status = StatusFailed
		errMsg = procErr.Error()
	}
	if err := w.queue.UpdateTaskStatus(ctx, taskID, status, result, errMsg); err != nil {
		log.WithError(err).Error("Failed to update final task status")
	}

	log.WithFields(logrus.Fields{
		"status":   status,
		"duration": time.Since(start).String(),
	}).Info("Task finished")

	if w.callbacks != nil {
		if final, err := w.queue.GetTask(ctx, taskID); err == nil {
			if err := w.callbacks.Dispatch(ctx, final); err != nil {
				log.WithError(err).Error("Task callback failed")
			}
		}
	}

	return procErr
}

var queueFactories = make(map[string]Factory)

// RegisterQueueFactory 注册队列工厂函数
func RegisterQueueFactory(name string, factory Factory) {
	queueFactories[name] = factory
}

// NewQueue 根据名称创建队列实例
func NewQueue(name string, cfg *Config) (Queue, error) {
	factory, exists := queueFactories[name]
	if !exists {
		return nil, fmt.Errorf("unknown queue implementation: %s", name)
	}
	return factory(cfg)
}

func init() {
	RegisterQueueFactory("redis", func(cfg *Config) (Queue, error) {
		q, err := NewRedisQueue(cfg)
		if err != nil {
			return nil, err
		}
		return q, nil
	})
}
