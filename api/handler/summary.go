package handler

import (
	"net/http"

	"github.com/fyerfyer/legal-summary/api/middleware"
	"github.com/fyerfyer/legal-summary/api/model"
	"github.com/fyerfyer/legal-summary/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SummaryHandler 处理判决书摘要相关的API请求
type SummaryHandler struct {
	service *services.SummaryService // 摘要服务
	logger  *logrus.Logger           // 日志记录器
}

// NewSummaryHandler 创建摘要处理器
func NewSummaryHandler(service *services.SummaryService) *SummaryHandler {
	return &SummaryHandler{
		service: service,
		logger:  middleware.GetLogger(),
	}
}

// SummarizeText 对提交的判决书文本生成摘要
// POST /api/summarize/text
func (h *SummaryHandler) SummarizeText(c *gin.Context) {
	var req model.SummarizeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("未提供判决书文本", err.Error()))
		return
	}

	result, err := h.service.SummarizeText(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, err, "生成摘要失败")
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(result))
}

// SummarizeUpload 解析上传的判决书并生成摘要
// POST /api/summarize/pdf
func (h *SummaryHandler) SummarizeUpload(c *gin.Context) {
	var req model.SummarizeUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid summarize upload request")
		middleware.HandleError(c, middleware.NewValidationError("未提供文件或参数无效", err.Error()))
		return
	}

	file, err := req.File.Open()
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"error":    err.Error(),
			"filename": req.File.Filename,
		}).Error("Failed to open uploaded file")
		middleware.HandleError(c, middleware.NewInternalError("无法打开上传的文件"))
		return
	}
	defer file.Close()

	result, err := h.service.SummarizeUpload(c.Request.Context(), file, req.File.Filename, req.UserEmail)
	if err != nil {
		respondError(c, err, "处理判决书失败")
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(result))
}

// ListSummaries 分页列出摘要记录
// GET /api/summaries
func (h *SummaryHandler) ListSummaries(c *gin.Context) {
	var req model.SummaryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("无效的查询参数", err.Error()))
		return
	}

	records, total, err := h.service.ListRecords(c.Request.Context(), req.Offset(), req.GetPageSize(), req.UserEmail)
	if err != nil {
		respondError(c, err, "获取摘要列表失败")
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.SummaryListResponse{
		Total:     total,
		Page:      req.GetPage(),
		PageSize:  req.GetPageSize(),
		Summaries: records,
	}))
}

// GetSummary 获取摘要记录
// GET /api/summaries/:id
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	var req model.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("无效的摘要ID"))
		return
	}

	record, err := h.service.GetRecord(c.Request.Context(), req.ID)
	if err != nil {
		respondError(c, err, "获取摘要记录失败")
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(record))
}

// DownloadSummary 下载摘要JSON文件
// GET /api/summaries/:id/download
func (h *SummaryHandler) DownloadSummary(c *gin.Context) {
	var req model.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("无效的摘要ID"))
		return
	}

	record, rc, err := h.service.OpenSummaryFile(c.Request.Context(), req.ID)
	if err != nil {
		respondError(c, err, "读取摘要文件失败")
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, -1, "application/json", rc, map[string]string{
		"Content-Disposition": `attachment; filename="` + record.SummaryFileName + `"`,
	})
}

// DeleteSummary 删除摘要记录
// DELETE /api/summaries/:id
func (h *SummaryHandler) DeleteSummary(c *gin.Context) {
	var req model.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("无效的摘要ID"))
		return
	}

	if err := h.service.DeleteRecord(c.Request.Context(), req.ID); err != nil {
		respondError(c, err, "删除摘要记录失败")
		return
	}

	h.logger.WithField("summary_id", req.ID).Info("Summary record deleted")
	c.JSON(http.StatusOK, model.NewSuccessResponse(model.DeleteResponse{
		Success: true,
		ID:      req.ID,
	}))
}
