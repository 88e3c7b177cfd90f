package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/fyerfyer/legal-summary/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// evaluationRepository 评估记录仓储实现
type evaluationRepository struct {
	db *gorm.DB
}

// NewEvaluationRepository 使用指定的数据库连接创建评估仓储
func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

// Create 创建评估记录
func (r *evaluationRepository) Create(run *models.EvaluationRun) error {
	if run.ID == "" {
		return errors.New("evaluation run ID cannot be empty")
	}
	return r.db.Create(run).Error
}

// GetByID 根据ID获取评估记录
func (r *evaluationRepository) GetByID(id string) (*models.EvaluationRun, error) {
	return r.first("id = ?", id)
}

// GetByTaskID 根据任务ID获取评估记录
func (r *evaluationRepository) GetByTaskID(taskID string) (*models.EvaluationRun, error) {
	return r.first("task_id = ?", taskID)
}

func (r *evaluationRepository) first(cond string, arg string) (*models.EvaluationRun, error) {
	var run models.EvaluationRun
	err := r.db.Where(cond, arg).First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", models.ErrEvaluationNotFound, arg)
		}
		return nil, err
	}
	return &run, nil
}

// UpdateStatus 更新评估状态
func (r *evaluationRepository) UpdateStatus(id string, status models.EvaluationStatus, errorMsg string) error {
	if !status.IsValid() {
		return models.ErrInvalidEvaluationStatus
	}

	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if errorMsg != "" {
		updates["error"] = errorMsg
	}
	if status == models.EvalStatusCompleted || status == models.EvalStatusFailed {
		now := time.Now()
		updates["completed_at"] = &now
	}

	result := r.db.Model(&models.EvaluationRun{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", models.ErrEvaluationNotFound, id)
	}
	return nil
}

// SetTaskID 关联异步任务ID
func (r *evaluationRepository) SetTaskID(id, taskID string) error {
	res := r.db.Model(&models.EvaluationRun{}).Where("id = ?", id).Updates(map[string]interface{}{
		"task_id":    taskID,
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", models.ErrEvaluationNotFound, id)
	}
	return nil
}

// SaveResult 保存评估结果并标记完成
func (r *evaluationRepository) SaveResult(id string, best string, result []byte) error {
	now := time.Now()
	res := r.db.Model(&models.EvaluationRun{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":        models.EvalStatusCompleted,
		"best_strategy": best,
		"result":        datatypes.JSON(result),
		"updated_at":    now,
		"completed_at":  &now,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", models.ErrEvaluationNotFound, id)
	}
	return nil
}

// List 按创建时间倒序列出评估记录
func (r *evaluationRepository) List(offset, limit int) ([]*models.EvaluationRun, int64, error) {
	var runs []*models.EvaluationRun
	var total int64

	query := r.db.Model(&models.EvaluationRun{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&runs).Error; err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}
