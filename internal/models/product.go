package models

import (
	"time"
)

// Product 商品库存账本（商品服务所有）
// 库存只能通过账本的原子扣减/归还操作修改
type Product struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                              // 主键
	Name          string    `gorm:"type:varchar(255);not null" json:"productName"`                     // 商品名称
	Price         Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price"`                // 当前售价
	Image         string    `gorm:"type:varchar(500)" json:"image"`                                    // 主图
	StockQuantity int       `gorm:"not null;default:0;check:stock_quantity >= 0" json:"stockQuantity"` // 可售库存
	QuantitySold  int       `gorm:"not null;default:0;check:quantity_sold >= 0" json:"quantitySold"`   // 已售数量
	IsActive      bool      `gorm:"default:true;index" json:"isActive"`                                // 是否上架
	CreatedAt     time.Time `gorm:"index" json:"createdAt"`                                            // 创建时间
	UpdatedAt     time.Time `json:"updatedAt"`                                                         // 更新时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// StockAdjustment 库存调整流水
// 每个业务引用（订单编号）只有一行，状态只会 REDUCED→RESTORED，或直接写入 VOIDED 占位
type StockAdjustment struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                   // 主键
	Reference string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"reference"` // 业务引用
	State     string    `gorm:"type:varchar(16);index;not null" json:"state"`           // REDUCED / RESTORED / VOIDED
	Items     string    `gorm:"type:text" json:"items"`                                 // 调整明细（JSON）
	CreatedAt time.Time `gorm:"index" json:"createdAt"`                                 // 创建时间
	UpdatedAt time.Time `json:"updatedAt"`                                              // 更新时间
}

// TableName 指定表名
func (StockAdjustment) TableName() string {
	return "stock_adjustments"
}
