package handler

import (
	"fmt"
	"net/http"

	"github.com/fyerfyer/legal-summary/api/middleware"
	"github.com/fyerfyer/legal-summary/api/model"
	"github.com/fyerfyer/legal-summary/internal/report"
	"github.com/fyerfyer/legal-summary/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CaseHandler 处理预分块案件数据相关的API请求
type CaseHandler struct {
	analysis   *services.AnalysisService   // 案件分析服务
	comparison *services.ComparisonService // 策略对比服务
	logger     *logrus.Logger              // 日志记录器
}

// NewCaseHandler 创建案件处理器
func NewCaseHandler(analysis *services.AnalysisService, comparison *services.ComparisonService) *CaseHandler {
	return &CaseHandler{
		analysis:   analysis,
		comparison: comparison,
		logger:     middleware.GetLogger(),
	}
}

// ListCases 列出所有案件编号
// GET /api/cases
func (h *CaseHandler) ListCases(c *gin.Context) {
	cases := h.analysis.ListCases()
	c.JSON(http.StatusOK, model.NewSuccessResponse(model.CaseListResponse{
		Total: len(cases),
		Cases: cases,
	}))
}

// AnalyzeCase 对案件做综合分析
// GET /api/cases/:id
func (h *CaseHandler) AnalyzeCase(c *gin.Context) {
	var uri model.IDRequest
	var req model.CaseAnalysisRequest
	if !bindCaseRequest(c, &uri, &req) {
		return
	}
	strategy, ok := parseStrategy(c, req.Strategy)
	if !ok {
		return
	}

	analysis, err := h.analysis.AnalyzeCase(c.Request.Context(), uri.ID, strategy, req.Length)
	if err != nil {
		respondError(c, err, "案件分析失败")
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(analysis))
}

// GetChunkingStats 获取案件在各策略下的分块统计
// GET /api/cases/:id/chunks
func (h *CaseHandler) GetChunkingStats(c *gin.Context) {
	var uri model.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("无效的案件编号"))
		return
	}

	stats, err := h.comparison.ChunkingStats(uri.ID)
	if err != nil {
		respondError(c, err, "获取分块统计失败")
		return
	}

	available := false
	for _, st := range stats {
		available = available || st.Available
	}
	if !available {
		middleware.HandleError(c, middleware.NewNotFoundError("案件不存在或缺少对应的分块数据"))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(stats))
}

// SimilarCases 查找相似案件
// GET /api/cases/:id/similar
func (h *CaseHandler) SimilarCases(c *gin.Context) {
	var uri model.IDRequest
	var req model.SimilarCasesRequest
	if !bindCaseRequest(c, &uri, &req) {
		return
	}

	similar, err := h.analysis.SimilarCases(c.Request.Context(), uri.ID, req.Top)
	if err != nil {
		respondError(c, err, "查找相似案件失败")
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(similar))
}

// CompareStrategies 以参考策略为基准对比各分块策略的摘要
// GET /api/cases/:id/compare
func (h *CaseHandler) CompareStrategies(c *gin.Context) {
	var uri model.IDRequest
	var req model.CompareRequest
	if !bindCaseRequest(c, &uri, &req) {
		return
	}
	reference, ok := parseStrategy(c, req.Reference)
	if !ok {
		return
	}

	comparison, err := h.comparison.CompareStrategies(c.Request.Context(), uri.ID, reference)
	if err != nil {
		respondError(c, err, "策略对比失败")
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(comparison))
}

// GetReport 生成案件综合报告
// GET /api/cases/:id/report
func (h *CaseHandler) GetReport(c *gin.Context) {
	var uri model.IDRequest
	var req model.ReportRequest
	if !bindCaseRequest(c, &uri, &req) {
		return
	}

	r, err := h.analysis.Report(c.Request.Context(), uri.ID)
	if err != nil {
		respondError(c, err, "生成报告失败")
		return
	}

	switch req.Format {
	case "json":
		c.JSON(http.StatusOK, model.NewSuccessResponse(r))
	case "html":
		c.Data(http.StatusOK, "text/html; charset=utf-8", report.HTML(report.Markdown(r)))
	default:
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown(r)))
	}
}

// GetPDFReport 生成摘要和要点的PDF报告
// GET /api/cases/:id/report/pdf
func (h *CaseHandler) GetPDFReport(c *gin.Context) {
	var uri model.IDRequest
	var req model.CaseAnalysisRequest
	if !bindCaseRequest(c, &uri, &req) {
		return
	}
	strategy, ok := parseStrategy(c, req.Strategy)
	if !ok {
		return
	}

	data, info, err := h.analysis.PDFReport(c.Request.Context(), uri.ID, strategy, req.Length)
	if err != nil {
		respondError(c, err, "生成PDF报告失败")
		return
	}

	if info.ID != "" {
		c.Header("X-Report-ID", info.ID)
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.PDFFileName(uri.ID)))
	c.Data(http.StatusOK, "application/pdf", data)
}

// bindCaseRequest 绑定路径中的案件编号和查询参数
func bindCaseRequest(c *gin.Context, uri *model.IDRequest, query interface{}) bool {
	if err := c.ShouldBindUri(uri); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("无效的案件编号"))
		return false
	}
	if err := c.ShouldBindQuery(query); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("无效的查询参数", err.Error()))
		return false
	}
	return true
}
