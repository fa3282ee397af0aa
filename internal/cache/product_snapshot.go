package cache

import (
	"fmt"
)

// ProductSnapshotKey 商品快照缓存键
// 快照只用于购物车展示，结账时的价格与库存始终直接读取商品服务
func ProductSnapshotKey(productID uint) string {
	return fmt.Sprintf("catalog:product:%d", productID)
}

// ProductSnapshotKeys 批量生成商品快照缓存键
func ProductSnapshotKeys(productIDs []uint) []string {
	keys := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		keys = append(keys, ProductSnapshotKey(id))
	}
	return keys
}
