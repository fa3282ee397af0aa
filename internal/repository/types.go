package repository

import (
	"time"

	"github.com/luxdecor-shop/internal/models"
)

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	Status   string
	Keyword  string // 匹配订单编号、收货人、电话、邮箱
}

// OrderStatusCount 按状态聚合的订单数量
type OrderStatusCount struct {
	Status string
	Count  int64
}

// OrderRevenueRow 收入统计所需的订单行
type OrderRevenueRow struct {
	OrderDate  time.Time
	TotalMoney models.Money
}

// StockLine 库存调整明细
type StockLine struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}
