package model

import "mime/multipart"

// PaginationRequest 分页请求参数
type PaginationRequest struct {
	Page     int `form:"page" json:"page" binding:"omitempty,min=1"`           // 当前页码，从1开始
	PageSize int `form:"page_size" json:"page_size" binding:"omitempty,min=1"` // 每页记录数
}

// GetPage 获取页码，默认为1
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页记录数，默认为10，最大为100
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 10
	}
	if p.PageSize > 100 {
		return 100
	}
	return p.PageSize
}

// Offset 当前页的偏移量
func (p *PaginationRequest) Offset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// IDRequest 路径中的资源ID
type IDRequest struct {
	ID string `uri:"id" binding:"required"`
}

// SummarizeTextRequest 文本摘要请求
type SummarizeTextRequest struct {
	Text string `json:"text" binding:"required"` // 判决书全文
}

// SummarizeUploadRequest 上传判决书摘要请求
type SummarizeUploadRequest struct {
	File      *multipart.FileHeader `form:"file" binding:"required"`              // 判决书文件
	UserEmail string                `form:"user_email" binding:"omitempty,email"` // 上传者邮箱
}

// SummaryListRequest 摘要记录列表请求
type SummaryListRequest struct {
	PaginationRequest
	UserEmail string `form:"user_email" binding:"omitempty,email"` // 按上传者过滤
}

// CaseAnalysisRequest 案件分析请求
type CaseAnalysisRequest struct {
	Strategy string `form:"strategy"`                                // 分块策略，默认semantic
	Length   int    `form:"length" binding:"omitempty,min=1,max=50"` // 摘要句子数
}

// SimilarCasesRequest 相似案件请求
type SimilarCasesRequest struct {
	Top int `form:"top" binding:"omitempty,min=1,max=50"` // 返回数量
}

// CompareRequest 策略对比请求
type CompareRequest struct {
	Reference string `form:"reference"` // 参考策略，默认semantic
}

// ReportRequest 综合报告请求
type ReportRequest struct {
	Format string `form:"format" binding:"omitempty,oneof=markdown html json"` // 输出格式
}

// EvaluationRequest 跨案件评估请求
type EvaluationRequest struct {
	CaseIDs   []string `json:"case_ids" binding:"omitempty,dive,numeric"` // 为空时评估全部案件
	Reference string   `json:"reference"`                                 // 参考策略，默认semantic
	Async     bool     `json:"async"`                                     // 是否提交为异步任务
}
