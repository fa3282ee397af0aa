package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/luxdecor-shop/internal/http/handlers/shared"
	"github.com/luxdecor-shop/internal/http/response"
	"github.com/luxdecor-shop/internal/repository"

	"github.com/gin-gonic/gin"
)

// AdminListOrders 管理端订单列表
func (h *Handler) AdminListOrders(c *gin.Context) {
	page, size := handlershared.ParsePagination(c)
	orders, total, err := h.OrderService.ListOrdersForAdmin(repository.OrderListFilter{
		Page:     page,
		PageSize: size,
		Status:   strings.TrimSpace(c.Query("status")),
		Keyword:  strings.TrimSpace(c.Query("keyword")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, size, total))
}

// AdminUpdateOrderStatus 管理端修改订单状态
func (h *Handler) AdminUpdateOrderStatus(c *gin.Context) {
	orderID := c.Param("orderId")
	status := c.Query("status")
	if strings.TrimSpace(status) == "" {
		respondErrorWithMsg(c, response.CodeBadRequest, "status is required", nil)
		return
	}
	order, err := h.OrderService.UpdateOrderStatus(c.Request.Context(), orderID, status)
	if err != nil {
		respondError(c, err)
		return
	}
	requestLog(c).Infow("admin_order_status_updated", "order_id", order.OrderID, "status", order.Status)
	response.Success(c, order)
}

// AdminOrderStats 订单概览
func (h *Handler) AdminOrderStats(c *gin.Context) {
	stats, err := h.OrderService.Stats()
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, stats)
}

// AdminRevenueChart 月度收入图表，year 缺省为当年
func (h *Handler) AdminRevenueChart(c *gin.Context) {
	year := 0
	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondErrorWithMsg(c, response.CodeBadRequest, "invalid year", nil)
			return
		}
		year = parsed
	}
	chart, err := h.OrderService.RevenueChart(year)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, chart)
}
