package repository

import (
	"errors"
	"time"

	"github.com/luxdecor-shop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	GetByUser(userID uint) (*models.Cart, error)
	GetOrCreate(userID uint) (*models.Cart, error)
	AddQuantity(cartID, productID uint, quantity int) error
	DeleteItem(cartID, productID uint) error
	DeleteItems(cartID uint, productIDs []uint) (int64, error)
	WithTx(tx *gorm.DB) CartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// GetByUser 获取用户购物车（含购物车项），不存在返回 nil
func (r *GormCartRepository) GetByUser(userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id asc")
	}).Where("user_id = ?", userID).First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// GetOrCreate 获取或创建用户购物车，并发首次加购只会产生一个购物车
func (r *GormCartRepository) GetOrCreate(userID uint) (*models.Cart, error) {
	cart := models.Cart{UserID: userID}
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&cart).Error; err != nil {
		return nil, err
	}
	var stored models.Cart
	if err := r.db.Where("user_id = ?", userID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// AddQuantity 累加购物车项数量（不存在则插入）
func (r *GormCartRepository) AddQuantity(cartID, productID uint, quantity int) error {
	now := time.Now()
	item := models.CartItem{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + ?", quantity),
			"updated_at": now,
		}),
	}).Create(&item).Error
}

// DeleteItem 删除购物车项，不存在时不报错
func (r *GormCartRepository) DeleteItem(cartID, productID uint) error {
	return r.db.Where("cart_id = ? AND product_id = ?", cartID, productID).Delete(&models.CartItem{}).Error
}

// DeleteItems 批量删除购物车项
func (r *GormCartRepository) DeleteItems(cartID uint, productIDs []uint) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	result := r.db.Where("cart_id = ? AND product_id IN ?", cartID, productIDs).Delete(&models.CartItem{})
	return result.RowsAffected, result.Error
}
