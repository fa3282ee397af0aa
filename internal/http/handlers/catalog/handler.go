package catalog

import "github.com/luxdecor-shop/internal/provider"

// Handler 商品服务侧接口：商品快照与库存账本调整
type Handler struct {
	*provider.Container
}

// New 创建商品服务处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
