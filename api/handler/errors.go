package handler

import (
	"errors"

	"github.com/fyerfyer/legal-summary/api/middleware"
	"github.com/fyerfyer/legal-summary/internal/document"
	"github.com/fyerfyer/legal-summary/internal/loader"
	"github.com/fyerfyer/legal-summary/internal/models"
	"github.com/fyerfyer/legal-summary/internal/services"
	"github.com/fyerfyer/legal-summary/pkg/storage"
	"github.com/fyerfyer/legal-summary/pkg/taskqueue"
	"github.com/gin-gonic/gin"
)

// respondError 把服务层错误映射为对应的应用错误
func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, loader.ErrCaseNotFound):
		middleware.HandleError(c, middleware.NewNotFoundError("案件不存在或缺少对应的分块数据"))
	case errors.Is(err, services.ErrReferenceMissing):
		middleware.HandleError(c, middleware.NewNotFoundError("案件缺少参考策略的分块数据"))
	case errors.Is(err, models.ErrSummaryNotFound):
		middleware.HandleError(c, middleware.NewNotFoundError("摘要记录不存在"))
	case errors.Is(err, models.ErrEvaluationNotFound):
		middleware.HandleError(c, middleware.NewNotFoundError("评估记录不存在"))
	case errors.Is(err, storage.ErrFileNotFound):
		middleware.HandleError(c, middleware.NewNotFoundError("文件不存在"))
	case errors.Is(err, taskqueue.ErrTaskNotFound):
		middleware.HandleError(c, middleware.NewNotFoundError("任务未找到"))
	case errors.Is(err, services.ErrEmptyText):
		middleware.HandleError(c, middleware.NewValidationError("未提供判决书文本"))
	case errors.Is(err, document.ErrUnsupportedType):
		middleware.HandleError(c, middleware.NewValidationError("不支持的文件类型，仅支持 .pdf, .md, .markdown, .txt"))
	case errors.Is(err, document.ErrEmptyContent):
		middleware.HandleError(c, middleware.NewValidationError("文件中没有可提取的文本"))
	case errors.Is(err, services.ErrFileTooLarge):
		middleware.HandleError(c, middleware.NewValidationError("文件过大", err.Error()))
	case errors.Is(err, services.ErrAsyncDisabled):
		middleware.HandleError(c, middleware.NewUnavailableError("未启用异步评估"))
	default:
		middleware.HandleError(c, middleware.NewInternalError(fallback, err.Error()))
	}
}

// parseStrategy 解析查询参数中的策略，空值使用默认策略
func parseStrategy(c *gin.Context, value string) (loader.Strategy, bool) {
	if value == "" {
		return loader.Semantic, true
	}
	st, err := loader.ParseStrategy(value)
	if err != nil {
		middleware.HandleError(c, middleware.NewValidationError("无效的分块策略", err.Error()))
		return "", false
	}
	return st, true
}
