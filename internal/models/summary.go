package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SummaryRecord 用户上传判决书后生成的摘要记录
type SummaryRecord struct {
	ID               string         `gorm:"primaryKey" json:"id"`               // 记录ID
	UserEmail        string         `gorm:"size:255;index" json:"user_email"`   // 上传者邮箱
	CaseName         string         `gorm:"not null" json:"case_name"`          // 案件名称（原文件名）
	OriginalFileName string         `gorm:"not null" json:"original_file_name"` // 原始文件名
	OriginalFileID   string         `gorm:"size:64" json:"original_file_id"`    // 原文的存储ID
	SummaryFileName  string         `json:"summary_file_name"`                  // 摘要JSON文件名
	SummaryFileID    string         `gorm:"size:64" json:"summary_file_id"`     // 摘要JSON的存储ID
	Judges           datatypes.JSON `gorm:"type:json" json:"judges"`            // 法官列表
	Citations        datatypes.JSON `gorm:"type:json" json:"citations"`         // 引用列表
	Acts             datatypes.JSON `gorm:"type:json" json:"acts"`              // 法案列表
	Sections         datatypes.JSON `gorm:"type:json" json:"sections"`          // 条款列表
	Overview         string         `gorm:"type:text" json:"overview"`          // 案情概述
	Decision         string         `gorm:"type:text" json:"decision"`          // 裁决摘要
	CreatedAt        time.Time      `gorm:"not null;index" json:"created_at"`   // 创建时间
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`         // 更新时间
}

// BeforeCreate GORM的钩子函数，创建记录前自动设置时间
func (s *SummaryRecord) BeforeCreate(tx *gorm.DB) (err error) {
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	return nil
}

// BeforeUpdate GORM的钩子函数，更新记录前自动设置更新时间
func (s *SummaryRecord) BeforeUpdate(tx *gorm.DB) (err error) {
	s.UpdatedAt = time.Now()
	return nil
}

// TableName 明确指定表名
func (SummaryRecord) TableName() string {
	return "summary_records"
}
