package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/luxdecor-shop/internal/constants"
	"github.com/luxdecor-shop/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order) error
	GetByOrderID(orderID string) (*models.Order, error)
	GetActiveByOrderID(orderID string) (*models.Order, error)
	ListByUser(filter OrderListFilter) ([]models.Order, int64, error)
	ListAdmin(filter OrderListFilter) ([]models.Order, int64, error)
	Activate(orderID string) (int64, error)
	AbandonProvisional(orderID string) (int64, error)
	CompareAndSetStatus(orderID, fromStatus string, updates map[string]interface{}) (int64, error)
	CompareAndSetStockState(orderID, fromState, toState string) (int64, error)
	ListStockRestorePending(before time.Time, limit int) ([]models.Order, error)
	CountByStatus() ([]OrderStatusCount, error)
	SumRevenueByStatus(status string) (models.Money, error)
	ListRevenueRows(status string, from, to time.Time) ([]OrderRevenueRow, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) OrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) OrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Transaction 执行事务
func (r *GormOrderRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

func (r *GormOrderRepository) withDetails(query *gorm.DB) *gorm.DB {
	return query.Preload("Details", func(db *gorm.DB) *gorm.DB {
		return db.Order("id asc")
	})
}

// Create 创建订单与订单明细
func (r *GormOrderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

// GetByOrderID 根据订单编号获取订单（包含临时订单）
func (r *GormOrderRepository) GetByOrderID(orderID string) (*models.Order, error) {
	return r.findOne(r.db.Where("order_id = ?", orderID))
}

// GetActiveByOrderID 根据订单编号获取已生效订单
func (r *GormOrderRepository) GetActiveByOrderID(orderID string) (*models.Order, error) {
	return r.findOne(r.db.Where("order_id = ? AND active = ?", orderID, true))
}

func (r *GormOrderRepository) findOne(query *gorm.DB) (*models.Order, error) {
	var order models.Order
	if err := r.withDetails(query).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// ListByUser 用户订单历史（下单时间倒序）
func (r *GormOrderRepository) ListByUser(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{}).Where("user_id = ? AND active = ?", filter.UserID, true)
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	return r.list(query, filter)
}

// ListAdmin 管理端订单列表
func (r *GormOrderRepository) ListAdmin(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{}).Where("active = ?", true)
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		condition, argCount := buildKeywordCondition(r.db, []string{"order_id", "full_name", "phone_number", "email"})
		query = query.Where(condition, repeatLikeArgs("%"+keyword+"%", argCount)...)
	}
	return r.list(query, filter)
}

func (r *GormOrderRepository) list(query *gorm.DB, filter OrderListFilter) ([]models.Order, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var orders []models.Order
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := r.withDetails(query).Order("order_date desc, id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListStockRestorePending 列出库存归还未完成的订单：已认领归还，或已取消但仍处于扣减状态
func (r *GormOrderRepository) ListStockRestorePending(before time.Time, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	var orders []models.Order
	query := r.db.Model(&models.Order{}).
		Where("(stock_state = ? OR (status = ? AND stock_state = ?)) AND updated_at < ?",
			constants.StockStateRestoring, constants.OrderStatusCancelled, constants.StockStateReduced, before).
		Order("updated_at asc").
		Limit(limit)
	if err := r.withDetails(query).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Activate 将临时订单转为生效订单，并记录库存已扣减
func (r *GormOrderRepository) Activate(orderID string) (int64, error) {
	result := r.db.Model(&models.Order{}).
		Where("order_id = ? AND active = ? AND status = ?", orderID, false, constants.OrderStatusPending).
		Updates(map[string]interface{}{
			"active":      true,
			"stock_state": constants.StockStateReduced,
			"updated_at":  time.Now(),
		})
	return result.RowsAffected, result.Error
}

// AbandonProvisional 将未生效的临时订单标记为已取消
func (r *GormOrderRepository) AbandonProvisional(orderID string) (int64, error) {
	result := r.db.Model(&models.Order{}).
		Where("order_id = ? AND active = ?", orderID, false).
		Updates(map[string]interface{}{
			"status":     constants.OrderStatusCancelled,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// CompareAndSetStatus 仅当订单当前状态等于 fromStatus 时更新
func (r *GormOrderRepository) CompareAndSetStatus(orderID, fromStatus string, updates map[string]interface{}) (int64, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	result := r.db.Model(&models.Order{}).
		Where("order_id = ? AND active = ? AND status = ?", orderID, true, fromStatus).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// CompareAndSetStockState 仅当库存状态等于 fromState 时切换，用于认领库存归还
func (r *GormOrderRepository) CompareAndSetStockState(orderID, fromState, toState string) (int64, error) {
	result := r.db.Model(&models.Order{}).
		Where("order_id = ? AND stock_state = ?", orderID, fromState).
		Updates(map[string]interface{}{
			"stock_state": toState,
			"updated_at":  time.Now(),
		})
	return result.RowsAffected, result.Error
}

// CountByStatus 按状态统计生效订单数量
func (r *GormOrderRepository) CountByStatus() ([]OrderStatusCount, error) {
	var rows []OrderStatusCount
	err := r.db.Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Where("active = ?", true).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SumRevenueByStatus 汇总指定状态的订单金额
func (r *GormOrderRepository) SumRevenueByStatus(status string) (models.Money, error) {
	var row struct {
		Total models.Money
	}
	err := r.db.Model(&models.Order{}).
		Select("COALESCE(SUM(total_money), 0) AS total").
		Where("active = ? AND status = ?", true, status).
		Scan(&row).Error
	if err != nil {
		return models.Money{}, err
	}
	return row.Total, nil
}

// ListRevenueRows 列出区间内指定状态订单的下单时间与金额
func (r *GormOrderRepository) ListRevenueRows(status string, from, to time.Time) ([]OrderRevenueRow, error) {
	var rows []OrderRevenueRow
	err := r.db.Model(&models.Order{}).
		Select("order_date, total_money").
		Where("active = ? AND status = ? AND order_date >= ? AND order_date < ?", true, status, from, to).
		Order("order_date asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
