package inventory

import (
	"context"
	"time"

	"github.com/luxdecor-shop/internal/cache"
	"github.com/luxdecor-shop/internal/logger"
)

// CachedClient 在 Redis 中缓存商品快照，仅用于购物车展示
// 库存修改直接透传，并使相关快照失效
type CachedClient struct {
	next Client
	ttl  time.Duration
}

// NewCachedClient 创建带快照缓存的客户端
func NewCachedClient(next Client, ttl time.Duration) *CachedClient {
	return &CachedClient{next: next, ttl: ttl}
}

// Bypass 返回不读缓存的客户端，库存修改仍会使快照失效；结账取价使用
func (c *CachedClient) Bypass() *CachedClient {
	return &CachedClient{next: c.next}
}

// CachesSnapshots 是否读取缓存快照
func (c *CachedClient) CachesSnapshots() bool {
	return c.ttl > 0
}

// FetchProduct 优先读取缓存快照
func (c *CachedClient) FetchProduct(ctx context.Context, productID uint) (*ProductSnapshot, error) {
	if c.ttl <= 0 || !cache.Enabled() {
		return c.next.FetchProduct(ctx, productID)
	}
	key := cache.ProductSnapshotKey(productID)
	var cached ProductSnapshot
	hit, err := cache.GetJSON(ctx, key, &cached)
	if err != nil {
		logger.Warnw("product_snapshot_cache_get_failed", "product_id", productID, "error", err)
	}
	if hit {
		return &cached, nil
	}
	snapshot, err := c.next.FetchProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, key, snapshot, c.ttl); err != nil {
		logger.Warnw("product_snapshot_cache_set_failed", "product_id", productID, "error", err)
	}
	return snapshot, nil
}

// ReduceStock 扣减库存并使快照失效
func (c *CachedClient) ReduceStock(ctx context.Context, reference string, items []StockItem) error {
	err := c.next.ReduceStock(ctx, reference, items)
	c.invalidate(ctx, items)
	return err
}

// RestoreStock 归还库存并使快照失效
func (c *CachedClient) RestoreStock(ctx context.Context, reference string, items []StockItem) error {
	err := c.next.RestoreStock(ctx, reference, items)
	c.invalidate(ctx, items)
	return err
}

func (c *CachedClient) invalidate(ctx context.Context, items []StockItem) {
	if !cache.Enabled() || len(items) == 0 {
		return
	}
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	if err := cache.Del(ctx, cache.ProductSnapshotKeys(ids)...); err != nil {
		logger.Warnw("product_snapshot_cache_del_failed", "product_ids", ids, "error", err)
	}
}
