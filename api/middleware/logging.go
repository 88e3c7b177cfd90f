package middleware

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// 初始化日志配置
func init() {
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})

	if os.Getenv("DEBUG") == "true" {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
}

// Configure 按配置调整共享日志记录器的级别和输出
func Configure(level string, output io.Writer) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	if output != nil {
		log.SetOutput(output)
	}
	return nil
}

// Logger 日志中间件
// 记录请求信息和响应时间
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.WithFields(logrus.Fields{
			FieldStatus:   c.Writer.Status(),
			FieldLatency:  time.Since(start).String(),
			FieldClientIP: c.ClientIP(),
			FieldMethod:   c.Request.Method,
			FieldPath:     path,
			FieldTraceID:  c.GetString(TraceIDKey),
			"user_agent":  c.Request.UserAgent(),
		}).Info("HTTP request")
	}
}

// RequestBodyLog 请求体日志中间件
// 在DEBUG模式下记录请求体内容，multipart上传不记录
func RequestBodyLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		if log.Level >= logrus.DebugLevel && c.ContentType() == gin.MIMEJSON {
			var buf bytes.Buffer
			tee := io.TeeReader(c.Request.Body, &buf)
			body, _ := io.ReadAll(tee)
			c.Request.Body = io.NopCloser(&buf)

			if len(body) > 0 {
				log.WithFields(logrus.Fields{
					FieldMethod: c.Request.Method,
					FieldPath:   c.Request.URL.Path,
					"body":      string(body),
				}).Debug("Request body")
			}
		}

		c.Next()
	}
}

// ResponseLogger 响应日志中间件
// 记录响应体内容，通常仅用于开发调试
func ResponseLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		if log.Level < logrus.DebugLevel {
			c.Next()
			return
		}

		writer := &responseBodyWriter{
			ResponseWriter: c.Writer,
			body:           bytes.NewBufferString(""),
		}
		c.Writer = writer

		c.Next()

		// PDF等二进制响应只记录长度
		fields := logrus.Fields{
			FieldMethod: c.Request.Method,
			FieldPath:   c.Request.URL.Path,
			FieldStatus: c.Writer.Status(),
		}
		if ct := c.Writer.Header().Get("Content-Type"); ct == "application/pdf" {
			fields["response_bytes"] = writer.body.Len()
		} else {
			fields["response"] = writer.body.String()
		}
		log.WithFields(fields).Debug("Response body")
	}
}

// responseBodyWriter 自定义的响应写入器
// 用于捕获响应体内容
type responseBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write 重写Write方法，将响应体同时写入buffer
func (r *responseBodyWriter) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// TraceIDKey 追踪ID在gin上下文中的键
const TraceIDKey = "TraceID"

// SetTraceID 将追踪ID设置到上下文和响应头中
func SetTraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.New().String()
		}

		c.Set(TraceIDKey, traceID)
		c.Header("X-Trace-ID", traceID)

		c.Next()
	}
}

// 常用日志字段
const (
	FieldTraceID  = "trace_id"    // 追踪ID
	FieldPath     = "path"        // 请求路径
	FieldMethod   = "method"      // 请求方法
	FieldStatus   = "status_code" // 状态码
	FieldLatency  = "latency"     // 延迟时间
	FieldClientIP = "client_ip"   // 客户端IP
	FieldError    = "error"       // 错误信息
)

// GetLogger 返回共享的日志记录器
func GetLogger() *logrus.Logger {
	return log
}
