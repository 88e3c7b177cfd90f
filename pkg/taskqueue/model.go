package taskqueue

import (
	"encoding/json"
	"time"
)

// TaskType 任务类型
type TaskType string

const (
	// TaskAggregateEvaluation 多案件分块策略聚合评估任务
	TaskAggregateEvaluation TaskType = "evaluation:aggregate"
)

// TaskStatus 任务状态
type TaskStatus string

const (
	// StatusPending 等待处理
	StatusPending TaskStatus = "pending"
	// StatusProcessing 处理中
	StatusProcessing TaskStatus = "processing"
	// StatusCompleted 已完成
	StatusCompleted TaskStatus = "completed"
	// StatusFailed 处理失败
	StatusFailed TaskStatus = "failed"
)

// Done 任务是否已结束
func (s TaskStatus) Done() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Task 任务基础结构
type Task struct {
	ID          string          `json:"id"`           // 任务唯一标识符
	Type        TaskType        `json:"type"`         // 任务类型
	RunID       string          `json:"run_id"`       // 关联的评估记录ID
	Status      TaskStatus      `json:"status"`       // 任务状态
	Payload     json.RawMessage `json:"payload"`      // 任务载荷
	Result      json.RawMessage `json:"result"`       // 任务结果
	Error       string          `json:"error"`        // 错误信息
	Progress    float64         `json:"progress"`     // 处理进度(0-100)
	CreatedAt   time.Time       `json:"created_at"`   // 创建时间
	UpdatedAt   time.Time       `json:"updated_at"`   // 更新时间
	StartedAt   *time.Time      `json:"started_at"`   // 开始处理时间
	CompletedAt *time.Time      `json:"completed_at"` // 完成时间
	MaxRetries  int             `json:"max_retries"`  // 最大重试次数
}

// AggregateEvaluationPayload 聚合评估任务载荷
type AggregateEvaluationPayload struct {
	CaseIDs           []string `json:"case_ids"`           // 参与评估的案件ID
	ReferenceStrategy string   `json:"reference_strategy"` // 参考摘要所用策略
}

// TaskInfo 返回给客户端的简化任务信息
type TaskInfo struct {
	ID          string     `json:"id"`
	Type        TaskType   `json:"type"`
	RunID       string     `json:"run_id"`
	Status      TaskStatus `json:"status"`
	Error       string     `json:"error,omitempty"`
	Progress    float64    `json:"progress"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewTaskInfo 从Task创建TaskInfo
func NewTaskInfo(task *Task) *TaskInfo {
	progress := task.Progress
	if task.Status == StatusCompleted {
		progress = 100
	}
	return &TaskInfo{
		ID:          task.ID,
		Type:        task.Type,
		RunID:       task.RunID,
		Status:      task.Status,
		Error:       task.Error,
		Progress:    progress,
		CreatedAt:   task.CreatedAt,
		StartedAt:   task.StartedAt,
		CompletedAt: task.CompletedAt,
	}
}

// MarshalPayload 将任务载荷序列化为JSON
func MarshalPayload(payload interface{}) (json.RawMessage, error) {
	if payload == nil {
		return json.RawMessage("{}"), nil
	}
	return json.Marshal(payload)
}

// UnmarshalPayload 将JSON反序列化为任务载荷
func UnmarshalPayload(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return ErrInvalidPayload
	}
	return nil
}
