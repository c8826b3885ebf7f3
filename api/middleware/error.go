package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/fyerfyer/english-practice-api/api/model"
	"github.com/fyerfyer/english-practice-api/internal/article"
	"github.com/fyerfyer/english-practice-api/internal/fetcher"
	"github.com/fyerfyer/english-practice-api/internal/llm"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// 定义应用中的错误类型常量
const (
	ErrorTypeValidation    = "VALIDATION_ERROR"    // 输入验证错误
	ErrorTypeFetch         = "FETCH_ERROR"         // URL抓取错误
	ErrorTypeGeneration    = "GENERATION_ERROR"    // LLM内容生成错误
	ErrorTypeConfiguration = "CONFIGURATION_ERROR" // 服务配置错误
	ErrorTypeInternal      = "INTERNAL_ERROR"      // 内部服务器错误
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

// NewFetchError 创建URL抓取错误
func NewFetchError(message string) AppError {
	return AppError{
		Type:    ErrorTypeFetch,
		Message: message,
		Code:    http.StatusBadRequest,
	}
}

// NewGenerationError 创建内容生成错误
func NewGenerationError(message string) AppError {
	return AppError{
		Type:    ErrorTypeGeneration,
		Message: message,
		Code:    http.StatusInternalServerError,
	}
}

// NewConfigurationError 创建服务配置错误
func NewConfigurationError(message string) AppError {
	return AppError{
		Type:    ErrorTypeConfiguration,
		Message: message,
		Code:    http.StatusInternalServerError,
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

// ClassifyError 将领域错误映射为带HTTP状态码的应用错误
// 抓取失败属于客户端错误(400)，LLM传输失败属于服务端错误(500)，
// 缺少凭证按配置错误处理
func ClassifyError(err error) AppError {
	var fetchErr *fetcher.FetchError
	if errors.As(err, &fetchErr) {
		return NewFetchError(fetchErr.Error())
	}

	var llmErr llm.LLMError
	hasLLMErr := errors.As(err, &llmErr)
	if hasLLMErr && llmErr.Code == llm.ErrCodeInvalidAPIKey {
		return NewConfigurationError(llmErr.Error())
	}

	var genErr *article.GenerationError
	if errors.As(err, &genErr) {
		return NewGenerationError(genErr.Error())
	}
	if hasLLMErr {
		return NewGenerationError(llmErr.Error())
	}

	return NewInternalError("Internal server error")
}

// ErrorMiddleware 统一错误处理中间件
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 捕获 panic
		defer func() {
			if err := recover(); err != nil {
				// 获取堆栈跟踪信息
				stack := string(debug.Stack())

				// 记录错误日志
				log.WithFields(logrus.Fields{
					"error": err,
					"stack": stack,
					"path":  c.Request.URL.Path,
				}).Error("Panic recovered in API request")

				// 构造客户端响应
				errorResponse := model.NewErrorResponse(
					http.StatusInternalServerError,
					"An unexpected error occurred",
				)

				// 在开发环境中可以返回详细错误
				if gin.Mode() == gin.DebugMode {
					errorResponse.Message = fmt.Sprintf("Panic: %v", err)
				}

				// 添加请求跟踪ID
				traceID, exists := c.Get("TraceID")
				if exists {
					errorResponse.TraceID = traceID.(string)
				}

				// 中止请求处理并返回错误响应
				c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse)
			}
		}()

		// 处理请求
		c.Next()

		// 检查是否已经有错误被处理
		if len(c.Errors) > 0 {
			// 取最后一个错误进行处理
			err := c.Errors.Last().Err

			// 获取跟踪ID
			traceID := ""
			if traceIDValue, exists := c.Get("TraceID"); exists {
				traceID = traceIDValue.(string)
			}

			// 根据错误类型进行处理
			switch e := err.(type) {
			case AppError:
				// 记录应用错误日志
				log.WithFields(logrus.Fields{
					"error_type": e.Type,
					"trace_id":   traceID,
					"path":       c.Request.URL.Path,
				}).Error(e.Message)

				// 返回对应的HTTP状态码和错误响应
				errResp := model.NewErrorResponse(e.Code, e.Message)
				errResp.TraceID = traceID

				c.JSON(e.Code, errResp)

			case *AppError:
				// 指针类型的应用错误处理
				log.WithFields(logrus.Fields{
					"error_type": e.Type,
					"trace_id":   traceID,
					"path":       c.Request.URL.Path,
				}).Error(e.Message)

				errResp := model.NewErrorResponse(e.Code, e.Message)
				errResp.TraceID = traceID

				c.JSON(e.Code, errResp)

			default:
				// 领域错误按错误分类映射到HTTP状态码
				appErr := ClassifyError(err)

				log.WithFields(logrus.Fields{
					"error_type": appErr.Type,
					"trace_id":   traceID,
					"path":       c.Request.URL.Path,
				}).Error(err.Error())

				errResp := model.NewErrorResponse(appErr.Code, appErr.Message)
				errResp.TraceID = traceID

				// 在开发环境下显示具体错误信息
				if appErr.Type == ErrorTypeInternal && gin.Mode() == gin.DebugMode {
					errResp.Message = err.Error()
				}

				c.JSON(appErr.Code, errResp)
			}

			// 中止继续处理
			c.Abort()
		}
	}
}

// HandleError 在处理器中使用的错误处理辅助函数
func HandleError(c *gin.Context, err error) {
	// 添加错误到上下文中
	_ = c.Error(err)
}
