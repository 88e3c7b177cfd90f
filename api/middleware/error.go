package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/fyerfyer/legal-summary/api/model"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// 定义应用中的错误类型常量
const (
	ErrorTypeValidation  = "VALIDATION_ERROR"  // 输入验证错误
	ErrorTypeNotFound    = "NOT_FOUND_ERROR"   // 资源不存在错误
	ErrorTypeInternal    = "INTERNAL_ERROR"    // 内部服务器错误
	ErrorTypeBusiness    = "BUSINESS_ERROR"    // 业务逻辑错误
	ErrorTypeUnavailable = "UNAVAILABLE_ERROR" // 依赖服务不可用
)

// AppError 应用错误结构体
type AppError struct {
	Type    string // 错误类型
	Message string // 错误消息
	Details string // 详细错误信息
	Code    int    // 错误代码
}

// Error 实现error接口的方法
func (e AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// NewValidationError 创建输入验证错误
func NewValidationError(message string, details ...string) AppError {
	return AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Details: strings.Join(details, "; "),
		Code:    http.StatusBadRequest,
	}
}

// NewNotFoundError 创建资源不存在错误
func NewNotFoundError(message string) AppError {
	return AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
		Code:    http.StatusNotFound,
	}
}

// NewInternalError 创建内部服务器错误
func NewInternalError(message string, details ...string) AppError {
	return AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Details: strings.Join(details, "; "),
		Code:    http.StatusInternalServerError,
	}
}

// NewBusinessError 创建业务逻辑错误
func NewBusinessError(message string, details ...string) AppError {
	return AppError{
		Type:    ErrorTypeBusiness,
		Message: message,
		Details: strings.Join(details, "; "),
		Code:    http.StatusBadRequest,
	}
}

// NewUnavailableError 创建依赖不可用错误
func NewUnavailableError(message string) AppError {
	return AppError{
		Type:    ErrorTypeUnavailable,
		Message: message,
		Code:    http.StatusServiceUnavailable,
	}
}

// ErrorMiddleware 统一错误处理中间件
// 处理器中的panic和通过HandleError登记的错误都转换为统一的错误响应
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.WithFields(logrus.Fields{
					FieldError: err,
					"stack":    string(debug.Stack()),
					FieldPath:  c.Request.URL.Path,
				}).Error("Panic recovered in API request")

				errorResponse := model.NewErrorResponse(
					http.StatusInternalServerError,
					"服务器内部错误",
				)
				if gin.Mode() == gin.DebugMode {
					errorResponse.Message = fmt.Sprintf("Panic: %v", err)
				}
				errorResponse.TraceID = c.GetString(TraceIDKey)

				c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse)
			}
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		traceID := c.GetString(TraceIDKey)

		var appErr AppError
		var appErrPtr *AppError
		switch {
		case errors.As(err, &appErr):
		case errors.As(err, &appErrPtr) && appErrPtr != nil:
			appErr = *appErrPtr
		default:
			// 未归类的错误作为内部错误处理
			log.WithFields(logrus.Fields{
				FieldTraceID: traceID,
				FieldPath:    c.Request.URL.Path,
			}).Error(err.Error())

			errResp := model.NewErrorResponse(http.StatusInternalServerError, "服务器内部错误")
			errResp.TraceID = traceID
			if gin.Mode() == gin.DebugMode {
				errResp.Message = err.Error()
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, errResp)
			return
		}

		entry := log.WithFields(logrus.Fields{
			"error_type": appErr.Type,
			FieldTraceID: traceID,
			FieldPath:    c.Request.URL.Path,
		})
		if appErr.Details != "" {
			entry = entry.WithField("details", appErr.Details)
		}
		if appErr.Code >= http.StatusInternalServerError {
			entry.Error(appErr.Message)
		} else {
			entry.Warn(appErr.Message)
		}

		errResp := model.NewErrorResponse(appErr.Code, appErr.Message)
		errResp.TraceID = traceID
		c.AbortWithStatusJSON(appErr.Code, errResp)
	}
}

// HandleError 在处理器中使用的错误处理辅助函数
func HandleError(c *gin.Context, err error) {
	_ = c.Error(err)
}
