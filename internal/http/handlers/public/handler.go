package public

import "github.com/orderdesk-next/internal/provider"

// Handler 公开接口处理器入口
// 说明：仅承载无会话的机器端点（支付 webhook、定时触发）。
type Handler struct {
	*provider.Container
}

// New 创建公开处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
