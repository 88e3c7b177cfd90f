package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EvaluationStatus 批量评估的状态
type EvaluationStatus string

const (
	// EvalStatusPending 已提交，等待执行
	EvalStatusPending EvaluationStatus = "pending"
	// EvalStatusRunning 执行中
	EvalStatusRunning EvaluationStatus = "running"
	// EvalStatusCompleted 执行完成
	EvalStatusCompleted EvaluationStatus = "completed"
	// EvalStatusFailed 执行失败
	EvalStatusFailed EvaluationStatus = "failed"
)

// IsValid 判断状态是否合法
func (s EvaluationStatus) IsValid() bool {
	switch s {
	case EvalStatusPending, EvalStatusRunning, EvalStatusCompleted, EvalStatusFailed:
		return true
	}
	return false
}

// EvaluationRun 一次跨案件的分块策略评估
type EvaluationRun struct {
	ID                string           `gorm:"primaryKey" json:"id"`                   // 评估ID
	TaskID            string           `gorm:"size:64;index" json:"task_id,omitempty"` // 异步任务ID
	ReferenceStrategy string           `gorm:"size:20;not null" json:"reference"`      // 参考策略
	CaseIDs           datatypes.JSON   `gorm:"type:json" json:"case_ids"`              // 参与评估的案件
	Status            EvaluationStatus `gorm:"size:20;not null;index" json:"status"`   // 状态
	BestStrategy      string           `gorm:"size:20" json:"best_strategy,omitempty"` // ROUGE-1最高的策略
	Result            datatypes.JSON   `gorm:"type:json" json:"result,omitempty"`      // 汇总结果
	Error             string           `gorm:"type:text" json:"error,omitempty"`       // 错误信息
	CreatedAt         time.Time        `gorm:"not null;index" json:"created_at"`       // 创建时间
	UpdatedAt         time.Time        `gorm:"not null" json:"updated_at"`             // 更新时间
	CompletedAt       *time.Time       `json:"completed_at,omitempty"`                 // 完成时间
}

// BeforeCreate GORM的钩子函数，创建记录前自动设置时间
func (e *EvaluationRun) BeforeCreate(tx *gorm.DB) (err error) {
	now := time.Now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	if e.Status == "" {
		e.Status = EvalStatusPending
	}
	return nil
}

// BeforeUpdate GORM的钩子函数，更新记录前自动设置更新时间
func (e *EvaluationRun) BeforeUpdate(tx *gorm.DB) (err error) {
	e.UpdatedAt = time.Now()
	return nil
}

// TableName 明确指定表名
func (EvaluationRun) TableName() string {
	return "evaluation_runs"
}
