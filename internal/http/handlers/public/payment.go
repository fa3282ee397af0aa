package public

import (
	"net/http"

	handlershared "github.com/luxdecor-shop/internal/http/handlers/shared"
	"github.com/luxdecor-shop/internal/http/response"
	"github.com/luxdecor-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// CreatePayment 为当前用户的待支付订单生成 VNPay 支付链接
func (h *Handler) CreatePayment(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	url, err := h.PaymentService.CreatePaymentURL(c.Request.Context(), identity, service.CreatePaymentInput{
		OrderID:   c.Query("orderId"),
		Amount:    c.Query("amount"),
		OrderInfo: c.Query("orderInfo"),
		ClientIP:  c.ClientIP(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"url": url})
}

// VNPayCallback 网关回调入口，始终返回结构化结果
func (h *Handler) VNPayCallback(c *gin.Context) {
	result := h.PaymentService.HandleCallback(c.Request.Context(), c.Request.URL.Query())
	handlershared.RequestLog(c).Infow("payment_callback_handled",
		"order_id", result.OrderID,
		"status", result.Status,
		"message", result.Message,
	)
	c.JSON(http.StatusOK, result)
}
