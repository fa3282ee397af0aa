package models

import (
	"time"
)

// Cart 购物车（每个用户一个）
type Cart struct {
	ID        uint      `gorm:"primarykey" json:"cartId"`           // 主键
	UserID    uint      `gorm:"uniqueIndex;not null" json:"userId"` // 用户ID
	CreatedAt time.Time `json:"createdAt"`                          // 创建时间
	UpdatedAt time.Time `json:"updatedAt"`                          // 更新时间

	Items []CartItem `gorm:"foreignKey:CartID" json:"items,omitempty"` // 购物车项
}

// TableName 指定表名
func (Cart) TableName() string {
	return "carts"
}

// CartItem 购物车项（同一购物车内商品唯一，数量累加）
type CartItem struct {
	ID        uint      `gorm:"primarykey" json:"cartItemId"`                                // 主键
	CartID    uint      `gorm:"not null;uniqueIndex:idx_cart_item_product" json:"-"`         // 购物车ID
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_item_product" json:"productId"` // 商品ID
	Quantity  int       `gorm:"not null" json:"quantity"`                                    // 数量
	CreatedAt time.Time `gorm:"index" json:"createdAt"`                                      // 加入时间
	UpdatedAt time.Time `json:"updatedAt"`                                                   // 更新时间
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}
