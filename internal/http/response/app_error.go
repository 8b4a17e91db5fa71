package response

import "github.com/gin-gonic/gin"

// AppError 统一错误包装
// Key 为 i18n 文案 key，Message 为已本地化的文案；Err 非空时表示需要记录的原始错误。
type AppError struct {
	Code    int
	Key     string
	Args    []interface{}
	Message string
	Err     error
}

func (e *AppError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Key
	}
	if e.Err == nil {
		return msg
	}
	return msg + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError 以文案 key 构造错误，文案在响应前按请求语言解析
func NewAppError(code int, key string, err error, args ...interface{}) *AppError {
	return &AppError{
		Code: code,
		Key:  key,
		Args: args,
		Err:  err,
	}
}

// WrapError 包装已本地化文案的错误
func WrapError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ErrorFrom 输出 AppError，Message 为空时退回 Key
func ErrorFrom(c *gin.Context, appErr *AppError) {
	if appErr == nil {
		Error(c, CodeInternal, "internal error")
		return
	}
	msg := appErr.Message
	if msg == "" {
		msg = appErr.Key
	}
	Error(c, appErr.Code, msg)
}
