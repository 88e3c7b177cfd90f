package repository

import "github.com/fyerfyer/legal-summary/internal/models"

// SummaryRepository 摘要记录仓储接口
type SummaryRepository interface {
	// Create 创建摘要记录
	Create(record *models.SummaryRecord) error

	// GetByID 根据ID获取摘要记录
	GetByID(id string) (*models.SummaryRecord, error)

	// List 列出摘要记录，支持分页和按邮箱筛选
	List(offset, limit int, filters map[string]interface{}) ([]*models.SummaryRecord, int64, error)

	// Delete 删除摘要记录
	Delete(id string) error
}

// EvaluationRepository 评估记录仓储接口
type EvaluationRepository interface {
	// Create 创建评估记录
	Create(run *models.EvaluationRun) error

	// GetByID 根据ID获取评估记录
	GetByID(id string) (*models.EvaluationRun, error)

	// GetByTaskID 根据异步任务ID获取评估记录
	GetByTaskID(taskID string) (*models.EvaluationRun, error)

	// UpdateStatus 更新评估状态
	UpdateStatus(id string, status models.EvaluationStatus, errorMsg string) error

	// SetTaskID 关联异步任务ID
	SetTaskID(id, taskID string) error

	// SaveResult 保存评估结果并标记完成
	SaveResult(id string, best string, result []byte) error

	// List 按创建时间倒序列出评估记录
	List(offset, limit int) ([]*models.EvaluationRun, int64, error)
}
