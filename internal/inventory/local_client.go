package inventory

import (
	"context"
)

// LocalClient 进程内直接访问库存账本
type LocalClient struct {
	ledger *Ledger
}

// NewLocalClient 创建进程内客户端
func NewLocalClient(ledger *Ledger) *LocalClient {
	return &LocalClient{ledger: ledger}
}

// FetchProduct 查询商品快照
func (c *LocalClient) FetchProduct(ctx context.Context, productID uint) (*ProductSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.ledger.FetchProduct(productID)
}

// ReduceStock 批量扣减库存
func (c *LocalClient) ReduceStock(ctx context.Context, reference string, items []StockItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.ledger.ReduceStock(reference, items)
}

// RestoreStock 批量归还库存
func (c *LocalClient) RestoreStock(ctx context.Context, reference string, items []StockItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.ledger.RestoreStock(reference, items)
}
