package models

import (
	"time"
)

// Order 订单表
// 订单在结账时以临时态（Active=false）写入，库存扣减成功后才对读路径可见
type Order struct {
	ID             uint       `gorm:"primarykey" json:"-"`                                                // 主键
	OrderID        string     `gorm:"type:varchar(40);uniqueIndex;not null" json:"orderId"`               // 订单编号
	UserID         uint       `gorm:"index;not null" json:"userId"`                                       // 用户ID
	Email          string     `gorm:"type:varchar(255);index" json:"email"`                               // 下单邮箱
	FullName       string     `gorm:"type:varchar(120);not null" json:"fullName"`                         // 收货人
	PhoneNumber    string     `gorm:"type:varchar(32);not null" json:"phoneNumber"`                       // 联系电话
	Address        string     `gorm:"type:varchar(500);not null" json:"address"`                          // 收货地址
	Note           string     `gorm:"type:varchar(500)" json:"note"`                                      // 备注
	Status         string     `gorm:"type:varchar(20);index;not null" json:"status"`                      // 订单状态
	PaymentMethod  string     `gorm:"type:varchar(20);not null" json:"paymentMethod"`                     // 支付方式
	PaymentStatus  string     `gorm:"type:varchar(20);index;not null" json:"paymentStatus"`               // 支付状态
	TotalMoney     Money      `gorm:"type:decimal(20,2);not null;default:0" json:"totalMoney"`            // 订单总额（明细小计之和）
	OrderDate      time.Time  `gorm:"index;not null" json:"orderDate"`                                    // 下单时间
	ShippingMethod string     `gorm:"type:varchar(20);not null;default:'STANDARD'" json:"shippingMethod"` // 配送方式
	ShippingDate   *time.Time `json:"shippingDate"`                                                       // 送达时间
	TrackingNumber string     `gorm:"type:varchar(64)" json:"trackingNumber"`                             // 物流单号
	Active         bool       `gorm:"index;not null;default:false" json:"-"`                              // 是否已生效（临时订单为 false）
	StockState     string     `gorm:"type:varchar(20);index;not null;default:'NONE'" json:"-"`            // 库存扣减/归还状态
	CreatedAt      time.Time  `json:"createdAt"`                                                          // 创建时间
	UpdatedAt      time.Time  `json:"updatedAt"`                                                          // 更新时间

	Details []OrderDetail `gorm:"foreignKey:OrderID;references:OrderID" json:"details,omitempty"` // 订单明细
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// OrderDetail 订单明细表
// 仅通过 OrderID 关联所属订单，不持有订单指针
type OrderDetail struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                    // 主键
	OrderID     string    `gorm:"type:varchar(40);index;not null" json:"orderId"`          // 订单编号
	ProductID   uint      `gorm:"index;not null" json:"productId"`                         // 商品ID
	ProductName string    `gorm:"type:varchar(255)" json:"productName"`                    // 商品名称快照
	Quantity    int       `gorm:"not null" json:"quantity"`                                // 数量
	Price       Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price"`      // 下单时单价快照
	TotalPrice  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"totalPrice"` // 小计 = 单价 × 数量
	Thumbnail   string    `gorm:"type:varchar(500)" json:"thumbnail"`                      // 缩略图快照
	CreatedAt   time.Time `json:"-"`                                                       // 创建时间
}

// TableName 指定表名
func (OrderDetail) TableName() string {
	return "order_details"
}
