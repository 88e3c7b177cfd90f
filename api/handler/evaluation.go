package handler

import (
	"net/http"
	"time"

	"github.com/fyerfyer/legal-summary/api/middleware"
	"github.com/fyerfyer/legal-summary/api/model"
	"github.com/fyerfyer/legal-summary/internal/services"
	"github.com/fyerfyer/legal-summary/pkg/taskqueue"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// EvaluationHandler 处理分块策略评估相关的API请求
type EvaluationHandler struct {
	service *services.EvaluationService // 评估服务
	logger  *logrus.Logger              // 日志记录器
}

// NewEvaluationHandler 创建评估处理器
func NewEvaluationHandler(service *services.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{
		service: service,
		logger:  middleware.GetLogger(),
	}
}

// CreateEvaluation 执行跨案件评估，async为true时提交到任务队列
// POST /api/evaluations
func (h *EvaluationHandler) CreateEvaluation(c *gin.Context) {
	var req model.EvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("无效的评估请求", err.Error()))
		return
	}
	reference, ok := parseStrategy(c, req.Reference)
	if !ok {
		return
	}

	if req.Async {
		taskID, err := h.service.Submit(c.Request.Context(), req.CaseIDs, reference)
		if err != nil {
			respondError(c, err, "提交评估任务失败")
			return
		}
		c.JSON(http.StatusAccepted, model.NewSuccessResponse(model.EvaluationSubmitResponse{
			TaskID:      taskID,
			Status:      string(taskqueue.StatusPending),
			SubmittedAt: time.Now(),
		}))
		return
	}

	result, err := h.service.Run(c.Request.Context(), req.CaseIDs, reference)
	if err != nil {
		respondError(c, err, "评估失败")
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(result))
}

// ListEvaluations 分页列出评估记录
// GET /api/evaluations
func (h *EvaluationHandler) ListEvaluations(c *gin.Context) {
	var req model.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("无效的查询参数", err.Error()))
		return
	}

	runs, total, err := h.service.ListRuns(c.Request.Context(), req.Offset(), req.GetPageSize())
	if err != nil {
		respondError(c, err, "获取评估记录失败")
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.EvaluationListResponse{
		Total:    total,
		Page:     req.GetPage(),
		PageSize: req.GetPageSize(),
		Runs:     runs,
	}))
}

// GetTask 查询异步评估任务的状态和结果
// GET /api/evaluations/tasks/:id
func (h *EvaluationHandler) GetTask(c *gin.Context) {
	var uri model.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("任务ID不能为空"))
		return
	}

	task, err := h.service.GetTask(c.Request.Context(), uri.ID)
	if err != nil {
		respondError(c, err, "获取任务状态失败")
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(task))
}
