package service

import (
	"fmt"
	"time"

	"github.com/luxdecor-shop/internal/authn"
	"github.com/luxdecor-shop/internal/constants"
	"github.com/luxdecor-shop/internal/models"
	"github.com/luxdecor-shop/internal/repository"
)

// OrderStats 订单统计
type OrderStats struct {
	TotalRevenue    models.Money `json:"totalRevenue"`
	TotalOrders     int64        `json:"totalOrders"`
	PendingOrders   int64        `json:"pendingOrders"`
	ConfirmedOrders int64        `json:"confirmedOrders"`
	ShippingOrders  int64        `json:"shippingOrders"`
	DeliveredOrders int64        `json:"deliveredOrders"`
	CancelledOrders int64        `json:"cancelledOrders"`
}

// MonthlyRevenue 月度收入
type MonthlyRevenue struct {
	Month   int          `json:"month"`
	Revenue models.Money `json:"revenue"`
}

// GetOrder 查询订单详情，仅订单所有者或管理员可见
func (s *OrderService) GetOrder(identity authn.Identity, orderID string) (*models.Order, error) {
	order, err := s.getActiveOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != identity.UserID && !identity.IsAdmin() {
		return nil, ErrOrderForbidden
	}
	return order, nil
}

// ListHistory 用户订单历史
func (s *OrderService) ListHistory(identity authn.Identity, page, pageSize int) ([]models.Order, int64, error) {
	if identity.UserID == 0 {
		return nil, 0, ErrInvalidArgument
	}
	page, pageSize = repository.NormalizePage(page, pageSize)
	return s.orderRepo.ListByUser(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   identity.UserID,
	})
}

// ListOrdersForAdmin 管理端订单列表
func (s *OrderService) ListOrdersForAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	filter.Page, filter.PageSize = repository.NormalizePage(filter.Page, filter.PageSize)
	if filter.Status != "" {
		status, err := NormalizeOrderStatus(filter.Status)
		if err != nil {
			return nil, 0, err
		}
		filter.Status = status
	}
	return s.orderRepo.ListAdmin(filter)
}

// Stats 订单概览；收入只统计已送达订单
func (s *OrderService) Stats() (*OrderStats, error) {
	counts, err := s.orderRepo.CountByStatus()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}
	revenue, err := s.orderRepo.SumRevenueByStatus(constants.OrderStatusDelivered)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}
	stats := &OrderStats{TotalRevenue: revenue}
	for _, row := range counts {
		stats.TotalOrders += row.Count
		switch row.Status {
		case constants.OrderStatusPending:
			stats.PendingOrders = row.Count
		case constants.OrderStatusConfirmed:
			stats.ConfirmedOrders = row.Count
		case constants.OrderStatusShipping:
			stats.ShippingOrders = row.Count
		case constants.OrderStatusDelivered:
			stats.DeliveredOrders = row.Count
		case constants.OrderStatusCancelled:
			stats.CancelledOrders = row.Count
		}
	}
	return stats, nil
}

// RevenueChart 指定年份 12 个月的已送达订单收入，无数据的月份补零
func (s *OrderService) RevenueChart(year int) ([]MonthlyRevenue, error) {
	if year == 0 {
		year = time.Now().Year()
	}
	if year < 2000 || year > 9999 {
		return nil, ErrInvalidArgument
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
	to := from.AddDate(1, 0, 0)
	rows, err := s.orderRepo.ListRevenueRows(constants.OrderStatusDelivered, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}
	chart := make([]MonthlyRevenue, 12)
	for i := range chart {
		chart[i].Month = i + 1
	}
	for _, row := range rows {
		month := int(row.OrderDate.In(time.Local).Month())
		chart[month-1].Revenue = chart[month-1].Revenue.Plus(row.TotalMoney)
	}
	return chart, nil
}
