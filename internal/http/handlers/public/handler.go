package public

import "github.com/luxdecor-shop/internal/provider"

// Handler 用户侧接口处理器入口
// 说明：购物车、下单、订单查询与支付接口，均以令牌中的身份为调用者。
type Handler struct {
	*provider.Container
}

// New 创建用户侧处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
