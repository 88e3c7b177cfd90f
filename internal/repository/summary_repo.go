package repository

import (
	"errors"
	"fmt"

	"github.com/fyerfyer/legal-summary/internal/models"
	"gorm.io/gorm"
)

// summaryRepository 摘要记录仓储实现
type summaryRepository struct {
	db *gorm.DB
}

// NewSummaryRepository 使用指定的数据库连接创建摘要仓储
func NewSummaryRepository(db *gorm.DB) SummaryRepository {
	return &summaryRepository{db: db}
}

// Create 创建摘要记录
func (r *summaryRepository) Create(record *models.SummaryRecord) error {
	if record.ID == "" {
		return errors.New("summary record ID cannot be empty")
	}
	return r.db.Create(record).Error
}

// GetByID 根据ID获取摘要记录
func (r *summaryRepository) GetByID(id string) (*models.SummaryRecord, error) {
	var record models.SummaryRecord
	err := r.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", models.ErrSummaryNotFound, id)
		}
		return nil, err
	}
	return &record, nil
}

// List 列出摘要记录
func (r *summaryRepository) List(offset, limit int, filters map[string]interface{}) ([]*models.SummaryRecord, int64, error) {
	var records []*models.SummaryRecord
	var total int64

	query := r.db.Model(&models.SummaryRecord{})

	if filters != nil {
		if email, ok := filters["user_email"].(string); ok && email != "" {
			query = query.Where("user_email = ?", email)
		}
		if name, ok := filters["case_name"].(string); ok && name != "" {
			query = query.Where("case_name LIKE ?", "%"+name+"%")
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// Delete 删除摘要记录
func (r *summaryRepository) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&models.SummaryRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", models.ErrSummaryNotFound, id)
	}
	return nil
}
