package public

import "github.com/boxmart-next/internal/provider"

// Handler 前台/公开接口处理器入口
// 说明：该处理器仅用于前台、顾客侧 API 与支付回调。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
