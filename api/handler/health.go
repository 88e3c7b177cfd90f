package handler

import (
	"net/http"

	"github.com/fyerfyer/legal-summary/api/model"
	"github.com/fyerfyer/legal-summary/internal/services"
	"github.com/gin-gonic/gin"
)

// HealthHandler 健康检查
type HealthHandler struct {
	analysis   *services.AnalysisService
	comparison *services.ComparisonService
	evaluation *services.EvaluationService
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(analysis *services.AnalysisService, comparison *services.ComparisonService, evaluation *services.EvaluationService) *HealthHandler {
	return &HealthHandler{
		analysis:   analysis,
		comparison: comparison,
		evaluation: evaluation,
	}
}

// Check 返回服务状态和评估配置
// GET /api/health
func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, model.NewSuccessResponse(model.HealthResponse{
		Status:       "ok",
		EvalMode:     string(h.comparison.Evaluator().Mode()),
		AsyncEnabled: h.evaluation.AsyncEnabled(),
		Cases:        len(h.analysis.ListCases()),
	}))
}
