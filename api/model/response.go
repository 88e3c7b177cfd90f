package model

import (
	"time"

	"github.com/fyerfyer/legal-summary/internal/models"
)

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`               // 响应状态码，0表示成功
	Message string      `json:"message"`            // 响应消息
	Data    interface{} `json:"data,omitempty"`     // 响应数据，可能为空
	TraceID string      `json:"trace_id,omitempty"` // 调用链追踪ID
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) *Response {
	return &Response{
		Code:    code,
		Message: message,
	}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status       string `json:"status"`        // 服务状态
	EvalMode     string `json:"eval_mode"`     // ROUGE计算方式
	AsyncEnabled bool   `json:"async_enabled"` // 是否启用异步评估
	Cases        int    `json:"cases"`         // 已索引的案件数
}

// SummaryListResponse 摘要记录列表响应
type SummaryListResponse struct {
	Total     int64                   `json:"total"`     // 总数量
	Page      int                     `json:"page"`      // 当前页码
	PageSize  int                     `json:"page_size"` // 每页大小
	Summaries []*models.SummaryRecord `json:"summaries"` // 摘要记录
}

// EvaluationListResponse 评估记录列表响应
type EvaluationListResponse struct {
	Total    int64                   `json:"total"`     // 总数量
	Page     int                     `json:"page"`      // 当前页码
	PageSize int                     `json:"page_size"` // 每页大小
	Runs     []*models.EvaluationRun `json:"runs"`      // 评估记录
}

// DeleteResponse 删除响应
type DeleteResponse struct {
	Success bool   `json:"success"` // 是否成功
	ID      string `json:"id"`      // 资源ID
}

// CaseListResponse 案件列表响应
type CaseListResponse struct {
	Total int      `json:"total"` // 案件数量
	Cases []string `json:"cases"` // 案件编号
}

// EvaluationSubmitResponse 异步评估提交响应
type EvaluationSubmitResponse struct {
	TaskID      string    `json:"task_id"`      // 任务ID
	Status      string    `json:"status"`       // 任务状态
	SubmittedAt time.Time `json:"submitted_at"` // 提交时间
}
