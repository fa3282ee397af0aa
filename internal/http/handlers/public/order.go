package public

import (
	handlershared "github.com/luxdecor-shop/internal/http/handlers/shared"
	"github.com/luxdecor-shop/internal/http/response"
	"github.com/luxdecor-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// PlaceOrderRequest 下单请求
type PlaceOrderRequest struct {
	FullName           string `json:"fullName" binding:"required"`
	PhoneNumber        string `json:"phoneNumber" binding:"required"`
	Address            string `json:"address" binding:"required"`
	Note               string `json:"note"`
	PaymentMethod      string `json:"paymentMethod"`
	SelectedProductIDs []uint `json:"selectedProductIds" binding:"required"`
}

// PlaceOrder 将购物车中选中的商品下单
func (h *Handler) PlaceOrder(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithMsg(c, response.CodeBadRequest, "bad request", nil)
		return
	}
	order, err := h.OrderService.PlaceOrder(c.Request.Context(), identity, service.PlaceOrderInput{
		FullName:           req.FullName,
		PhoneNumber:        req.PhoneNumber,
		Address:            req.Address,
		Note:               req.Note,
		PaymentMethod:      req.PaymentMethod,
		SelectedProductIDs: req.SelectedProductIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, order)
}

// GetOrderHistory 当前用户订单历史
func (h *Handler) GetOrderHistory(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	page, size := handlershared.ParsePagination(c)
	orders, total, err := h.OrderService.ListHistory(identity, page, size)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, size, total))
}

// GetOrder 订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	order, err := h.OrderService.GetOrder(identity, c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, order)
}

// CancelOrder 用户取消待处理订单
func (h *Handler) CancelOrder(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	order, err := h.OrderService.CancelOrder(c.Request.Context(), identity, c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, order)
}
