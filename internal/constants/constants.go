package constants

// 订单状态常量
const (
	OrderStatusPending   = "PENDING"
	OrderStatusConfirmed = "CONFIRMED"
	OrderStatusShipping  = "SHIPPING"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCancelled = "CANCELLED"
)

// 订单支付状态常量
const (
	PaymentStatusUnpaid = "UNPAID"
	PaymentStatusPaid   = "PAID"
	PaymentStatusFailed = "FAILED"
)

// 支付方式常量
const (
	PaymentMethodCOD   = "COD"
	PaymentMethodVNPay = "VNPAY"
)

// 订单库存状态常量（补偿回滚的持久化守卫）
const (
	StockStateNone      = "NONE"      // 尚未扣减
	StockStateReduced   = "REDUCED"   // 已扣减，尚未归还
	StockStateRestoring = "RESTORING" // 已认领归还，等待商品服务确认
	StockStateRestored  = "RESTORED"  // 已归还
)

// 库存流水状态常量
const (
	StockAdjustReduced  = "REDUCED"  // 已扣减
	StockAdjustRestored = "RESTORED" // 扣减后已归还
	StockAdjustVoided   = "VOIDED"   // 未扣减即被归还，占位阻止迟到的扣减
)

// 配送相关常量
const (
	ShippingMethodStandard = "STANDARD"
)

// 身份角色常量
const (
	RoleUser    = "USER"
	RoleAdmin   = "ADMIN"
	RoleService = "SERVICE"
)

// 队列任务类型
const (
	TaskOrderTimeoutCancel = "order:timeout_cancel"
	TaskOrderStockRestore  = "order:stock_restore"
)

// 订单事件类型
const (
	EventOrderPlaced         = "order.placed"
	EventOrderStatusChanged  = "order.status_changed"
	EventOrderPaymentUpdated = "order.payment_updated"
)

// VNPay 回调结果状态
const (
	CallbackResultSuccess = "success"
	CallbackResultFailed  = "failed"
	CallbackResultError   = "error"
)

// 商品服务访问模式
const (
	CatalogModeLocal = "local"
	CatalogModeHTTP  = "http"
)

// 购物车占位展示
const (
	CartUnavailableProductName = "product unavailable"
)
