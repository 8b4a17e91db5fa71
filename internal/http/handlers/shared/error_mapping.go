package shared

import (
	"errors"

	"github.com/boxmart-next/internal/http/response"
	"github.com/boxmart-next/internal/service"

	"github.com/gin-gonic/gin"
)

// MappedError 业务错误到响应码与文案 key 的映射
type MappedError struct {
	Target error
	Code   int
	Key    string
}

// localizedError 自带 i18n key 与参数的错误（如密码策略）
type localizedError interface {
	error
	Key() string
	Args() []interface{}
}

var kindRules = []MappedError{
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.not_found"},
	{Target: service.ErrValidation, Code: response.CodeBadRequest, Key: "error.bad_request"},
	{Target: service.ErrConflict, Code: response.CodeConflict, Key: "error.conflict"},
	{Target: service.ErrUnauthorized, Code: response.CodeForbidden, Key: "error.forbidden"},
	{Target: service.ErrExternalService, Code: response.CodeBadGateway, Key: "error.external_service"},
}

// MapError 将业务错误转换为 AppError：先按调用方映射表，再按错误大类兜底，
// 仍无法识别时视为内部错误并保留原始错误用于日志
func MapError(err error, rules ...[]MappedError) *response.AppError {
	var localized localizedError
	if errors.As(err, &localized) {
		return response.NewAppError(response.CodeBadRequest, localized.Key(), nil, localized.Args()...)
	}
	for _, group := range rules {
		for _, rule := range group {
			if errors.Is(err, rule.Target) {
				return response.NewAppError(rule.Code, rule.Key, nil)
			}
		}
	}
	for _, rule := range kindRules {
		if errors.Is(err, rule.Target) {
			var cause error
			if rule.Code == response.CodeBadGateway {
				cause = err
			}
			return response.NewAppError(rule.Code, rule.Key, cause)
		}
	}
	return response.NewAppError(response.CodeInternal, "error.internal", err)
}

// RespondMapped 按映射表返回错误
func RespondMapped(c *gin.Context, err error, rules ...[]MappedError) {
	RespondAppError(c, MapError(err, rules...))
}
