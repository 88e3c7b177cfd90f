package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fyerfyer/legal-summary/internal/evaluation"
	"github.com/fyerfyer/legal-summary/internal/loader"
	"github.com/fyerfyer/legal-summary/internal/models"
	"github.com/fyerfyer/legal-summary/internal/repository"
	"github.com/fyerfyer/legal-summary/pkg/taskqueue"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// ErrAsyncDisabled 没有配置任务队列
var ErrAsyncDisabled = errors.New("async evaluation is not enabled")

// EvaluationResult 一次聚合评估的结果
type EvaluationResult struct {
	RunID     string          `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Mode      evaluation.Mode `json:"mode" yaml:"mode"`
	Best      loader.Strategy `json:"best_strategy,omitempty" yaml:"best_strategy,omitempty"`
	Aggregate Aggregate       `json:"aggregate" yaml:"aggregate"`
}

// EvaluationTask 异步评估任务的状态
type EvaluationTask struct {
	Task   *taskqueue.TaskInfo   `json:"task"`
	Run    *models.EvaluationRun `json:"run,omitempty"`
	Result *EvaluationResult     `json:"result,omitempty"`
}

// EvaluationService 分块策略评估服务
// 同步执行或提交到任务队列，评估记录可选持久化
type EvaluationService struct {
	comparison *ComparisonService
	repo       repository.EvaluationRepository
	queue      taskqueue.Queue
	logger     *logrus.Logger
}

// EvaluationOption 评估服务配置选项
type EvaluationOption func(*EvaluationService)

// WithEvaluationRepository 持久化评估记录
func WithEvaluationRepository(repo repository.EvaluationRepository) EvaluationOption {
	return func(s *EvaluationService) {
		s.repo = repo
	}
}

// WithEvaluationQueue 启用异步评估
func WithEvaluationQueue(q taskqueue.Queue) EvaluationOption {
	return func(s *EvaluationService) {
		s.queue = q
	}
}

// WithEvaluationLogger 设置日志记录器
func WithEvaluationLogger(logger *logrus.Logger) EvaluationOption {
	return func(s *EvaluationService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewEvaluationService 创建评估服务
func NewEvaluationService(comparison *ComparisonService, opts ...EvaluationOption) *EvaluationService {
	s := &EvaluationService{
		comparison: comparison,
		logger:     logrus.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AsyncEnabled 是否可以提交异步评估
func (s *EvaluationService) AsyncEnabled() bool {
	return s.queue != nil
}

// Run 同步执行聚合评估
func (s *EvaluationService) Run(ctx context.Context, caseIDs []string, reference loader.Strategy) (*EvaluationResult, error) {
	if _, err := loader.ParseStrategy(string(reference)); err != nil {
		return nil, err
	}

	runID, err := s.createRun(caseIDs, reference)
	if err != nil {
		return nil, err
	}

	result, err := s.evaluate(ctx, caseIDs, reference, nil)
	if err != nil {
		s.markFailed(runID, err)
		return nil, err
	}
	result.RunID = runID

	if err := s.saveResult(runID, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Submit 提交异步评估任务，返回任务ID
func (s *EvaluationService) Submit(ctx context.Context, caseIDs []string, reference loader.Strategy) (string, error) {
	if s.queue == nil {
		return "", ErrAsyncDisabled
	}
	if _, err := loader.ParseStrategy(string(reference)); err != nil {
		return "", err
	}

	runID, err := s.createRun(caseIDs, reference)
	if err != nil {
		return "", err
	}

	taskID, err := s.queue.Enqueue(ctx, taskqueue.TaskAggregateEvaluation, runID, &taskqueue.AggregateEvaluationPayload{
		CaseIDs:           caseIDs,
		ReferenceStrategy: string(reference),
	})
	if err != nil {
		s.markFailed(runID, err)
		return "", fmt.Errorf("failed to enqueue evaluation: %w", err)
	}

	if s.repo != nil && runID != "" {
		if err := s.repo.SetTaskID(runID, taskID); err != nil {
			s.logger.WithError(err).WithField("run_id", runID).Warn("Failed to link task to evaluation run")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"task_id":   taskID,
		"run_id":    runID,
		"reference": reference,
		"cases":     len(caseIDs),
	}).Info("Evaluation submitted")

	return taskID, nil
}

// GetTask 查询异步评估任务
func (s *EvaluationService) GetTask(ctx context.Context, taskID string) (*EvaluationTask, error) {
	if s.queue == nil {
		return nil, ErrAsyncDisabled
	}

	task, err := s.queue.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	out := &EvaluationTask{Task: taskqueue.NewTaskInfo(task)}
	if task.Status == taskqueue.StatusCompleted && len(task.Result) > 0 {
		var result EvaluationResult
		if err := json.Unmarshal(task.Result, &result); err == nil {
			out.Result = &result
		}
	}
	if s.repo != nil && task.RunID != "" {
		if run, err := s.repo.GetByID(task.RunID); err == nil {
			out.Run = run
		}
	}
	return out, nil
}

// ListRuns 分页列出评估记录
func (s *EvaluationService) ListRuns(ctx context.Context, offset, limit int) ([]*models.EvaluationRun, int64, error) {
	if s.repo == nil {
		return []*models.EvaluationRun{}, 0, nil
	}
	return s.repo.List(offset, limit)
}

// HandleAggregateTask 任务队列中聚合评估任务的处理函数
func (s *EvaluationService) HandleAggregateTask(ctx context.Context, task *taskqueue.Task, progress taskqueue.ProgressFunc) (interface{}, error) {
	var payload taskqueue.AggregateEvaluationPayload
	if err := taskqueue.UnmarshalPayload(task.Payload, &payload); err != nil {
		return nil, err
	}
	reference, err := loader.ParseStrategy(payload.ReferenceStrategy)
	if err != nil {
		return nil, err
	}

	if s.repo != nil && task.RunID != "" {
		if err := s.repo.UpdateStatus(task.RunID, models.EvalStatusRunning, ""); err != nil {
			s.logger.WithError(err).WithField("run_id", task.RunID).Warn("Failed to mark evaluation running")
		}
	}

	result, err := s.evaluate(ctx, payload.CaseIDs, reference, func(done, total int) {
		if progress != nil && total > 0 {
			progress(float64(done) * 100 / float64(total))
		}
	})
	if err != nil {
		return nil, err
	}
	result.RunID = task.RunID
	return result, nil
}

// OnTaskFinished 任务结束后把结果回写到评估记录
func (s *EvaluationService) OnTaskFinished(ctx context.Context, task *taskqueue.Task) error {
	if s.repo == nil || task.RunID == "" {
		return nil
	}

	if task.Status == taskqueue.StatusFailed {
		return s.repo.UpdateStatus(task.RunID, models.EvalStatusFailed, task.Error)
	}

	var result EvaluationResult
	if err := json.Unmarshal(task.Result, &result); err != nil {
		return fmt.Errorf("failed to decode task result: %w", err)
	}
	return s.repo.SaveResult(task.RunID, string(result.Best), task.Result)
}

// RegisterTaskHandlers 向工作者和回调处理器注册评估任务
func (s *EvaluationService) RegisterTaskHandlers(worker taskqueue.Worker, callbacks *taskqueue.CallbackProcessor) {
	worker.RegisterHandler(taskqueue.TaskAggregateEvaluation, taskqueue.HandlerFunc(s.HandleAggregateTask))
	if callbacks != nil {
		callbacks.RegisterHandler(taskqueue.TaskAggregateEvaluation, s.OnTaskFinished)
	}
}

func (s *EvaluationService) evaluate(ctx context.Context, caseIDs []string, reference loader.Strategy, progress ProgressFunc) (*EvaluationResult, error) {
	agg, err := s.comparison.AggregateWithProgress(ctx, caseIDs, reference, progress)
	if err != nil {
		return nil, err
	}

	result := &EvaluationResult{
		Mode:      s.comparison.Evaluator().Mode(),
		Aggregate: agg,
	}
	if best, ok := agg.Best(); ok {
		result.Best = best
	}
	return result, nil
}

// createRun 创建评估记录，没有仓储时返回空ID
func (s *EvaluationService) createRun(caseIDs []string, reference loader.Strategy) (string, error) {
	if s.repo == nil {
		return "", nil
	}

	if caseIDs == nil {
		caseIDs = []string{}
	}
	ids, err := json.Marshal(caseIDs)
	if err != nil {
		return "", err
	}

	run := &models.EvaluationRun{
		ID:                uuid.New().String(),
		ReferenceStrategy: string(reference),
		CaseIDs:           datatypes.JSON(ids),
		Status:            models.EvalStatusPending,
	}
	if err := s.repo.Create(run); err != nil {
		return "", fmt.Errorf("failed to create evaluation run: %w", err)
	}
	return run.ID, nil
}

func (s *EvaluationService) saveResult(runID string, result *EvaluationResult) error {
	if s.repo == nil || runID == "" {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode evaluation result: %w", err)
	}
	if err := s.repo.SaveResult(runID, string(result.Best), data); err != nil {
		return fmt.Errorf("failed to save evaluation result: %w", err)
	}
	return nil
}

func (s *EvaluationService) markFailed(runID string, cause error) {
	if s.repo == nil || runID == "" {
		return
	}
	if err := s.repo.UpdateStatus(runID, models.EvalStatusFailed, cause.Error()); err != nil {
		s.logger.WithError(err).WithField("run_id", runID).Warn("Failed to mark evaluation failed")
	}
}
