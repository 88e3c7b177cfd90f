package api

import (
	"github.com/fyerfyer/legal-summary/api/handler"
	"github.com/fyerfyer/legal-summary/api/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers 路由使用的全部处理器
type Handlers struct {
	Health     *handler.HealthHandler
	Summary    *handler.SummaryHandler
	Case       *handler.CaseHandler
	Evaluation *handler.EvaluationHandler
}

// SetupRouter 设置API路由
// 配置所有的API端点并应用中间件
func SetupRouter(h Handlers) *gin.Engine {
	router := gin.New()

	// 追踪ID需要先于日志和错误处理设置
	router.Use(middleware.SetTraceID())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorMiddleware())

	// 在调试模式下记录请求体和响应体
	if gin.Mode() == gin.DebugMode {
		router.Use(middleware.RequestBodyLog())
		router.Use(middleware.ResponseLogger())
	}

	router.Use(Cors())

	api := router.Group("/api")
	{
		// 健康检查 - GET /api/health
		api.GET("/health", h.Health.Check)

		// 判决书摘要API
		summarize := api.Group("/summarize")
		{
			summarize.POST("/text", h.Summary.SummarizeText)
			summarize.POST("/pdf", h.Summary.SummarizeUpload)
		}

		// 摘要记录API
		summaries := api.Group("/summaries")
		{
			summaries.GET("", h.Summary.ListSummaries)
			summaries.GET("/:id", h.Summary.GetSummary)
			summaries.GET("/:id/download", h.Summary.DownloadSummary)
			summaries.DELETE("/:id", h.Summary.DeleteSummary)
		}

		// 案件分析API
		cases := api.Group("/cases")
		{
			cases.GET("", h.Case.ListCases)
			cases.GET("/:id", h.Case.AnalyzeCase)
			cases.GET("/:id/chunks", h.Case.GetChunkingStats)
			cases.GET("/:id/similar", h.Case.SimilarCases)
			cases.GET("/:id/compare", h.Case.CompareStrategies)
			cases.GET("/:id/report", h.Case.GetReport)
			cases.GET("/:id/report/pdf", h.Case.GetPDFReport)
		}

		// 策略评估API
		evaluations := api.Group("/evaluations")
		{
			evaluations.POST("", h.Evaluation.CreateEvaluation)
			evaluations.GET("", h.Evaluation.ListEvaluations)
			evaluations.GET("/tasks/:id", h.Evaluation.GetTask)
		}
	}

	return router
}

// Cors 跨域资源共享中间件
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Trace-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Trace-ID, X-Report-ID, Content-Disposition")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
