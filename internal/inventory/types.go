package inventory

import (
	"context"
	"sort"

	"github.com/luxdecor-shop/internal/models"
)

// ProductSnapshot 商品只读快照
type ProductSnapshot struct {
	ID            uint         `json:"id"`
	Name          string       `json:"productName"`
	Price         models.Money `json:"price"`
	Image         string       `json:"image"`
	StockQuantity int          `json:"stockQuantity"`
}

// StockItem 库存调整项
type StockItem struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

// Client 订单侧访问库存账本的边界
// reference 为业务引用（订单编号），为空时不做幂等登记
type Client interface {
	FetchProduct(ctx context.Context, productID uint) (*ProductSnapshot, error)
	ReduceStock(ctx context.Context, reference string, items []StockItem) error
	RestoreStock(ctx context.Context, reference string, items []StockItem) error
}

// SnapshotFromProduct 从商品记录构建快照
func SnapshotFromProduct(product *models.Product) *ProductSnapshot {
	if product == nil {
		return nil
	}
	return &ProductSnapshot{
		ID:            product.ID,
		Name:          product.Name,
		Price:         product.Price,
		Image:         product.Image,
		StockQuantity: product.StockQuantity,
	}
}

// MergeStockItems 校验并合并重复商品，按商品 ID 升序返回
// 固定的加锁顺序避免并发批量扣减之间互相死锁
func MergeStockItems(items []StockItem) ([]StockItem, error) {
	if len(items) == 0 {
		return nil, ErrInvalidStockItem
	}
	totals := make(map[uint]int, len(items))
	for _, item := range items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			return nil, ErrInvalidStockItem
		}
		totals[item.ProductID] += item.Quantity
	}
	merged := make([]StockItem, 0, len(totals))
	for productID, quantity := range totals {
		merged = append(merged, StockItem{ProductID: productID, Quantity: quantity})
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].ProductID < merged[j].ProductID
	})
	return merged, nil
}
