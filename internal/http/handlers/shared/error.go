package shared

import (
	"github.com/boxmart-next/internal/http/response"
	"github.com/boxmart-next/internal/i18n"
	"github.com/boxmart-next/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回国际化错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, key string, err error) {
	RespondAppError(c, response.NewAppError(code, key, err))
}

// RespondErrorWithMsg 返回自定义消息错误响应，并在有原始错误时记录日志。
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	RespondAppError(c, response.WrapError(code, msg, err))
}

// RespondAppError 按请求语言解析文案后输出错误
func RespondAppError(c *gin.Context, appErr *response.AppError) {
	if appErr == nil {
		appErr = response.NewAppError(response.CodeInternal, "error.internal", nil)
	}
	if appErr.Message == "" && appErr.Key != "" {
		locale := i18n.ResolveLocale(c)
		if len(appErr.Args) > 0 {
			appErr.Message = i18n.Sprintf(locale, appErr.Key, appErr.Args...)
		} else {
			appErr.Message = i18n.T(locale, appErr.Key)
		}
	}
	if appErr.Err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"key", appErr.Key,
			"message", appErr.Message,
			"error", appErr.Err,
		)
	}
	response.ErrorFrom(c, appErr)
}
