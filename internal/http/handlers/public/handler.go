package public

import "github.com/devfolio-next/internal/provider"

// Handler 前台/公开接口处理器入口
// 说明：认证、找回密码与个人资料接口共用该处理器。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
