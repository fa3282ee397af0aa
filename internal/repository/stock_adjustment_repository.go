package repository

import (
	"errors"

	"github.com/luxdecor-shop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockAdjustmentRepository 库存调整流水数据访问接口
type StockAdjustmentRepository interface {
	Insert(adjustment *models.StockAdjustment) (bool, error)
	GetByReference(reference string) (*models.StockAdjustment, error)
	TransitionState(reference, fromState, toState string) (int64, error)
	WithTx(tx *gorm.DB) StockAdjustmentRepository
}

// GormStockAdjustmentRepository GORM 实现
type GormStockAdjustmentRepository struct {
	db *gorm.DB
}

// NewStockAdjustmentRepository 创建库存流水仓库
func NewStockAdjustmentRepository(db *gorm.DB) *GormStockAdjustmentRepository {
	return &GormStockAdjustmentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStockAdjustmentRepository) WithTx(tx *gorm.DB) StockAdjustmentRepository {
	if tx == nil {
		return r
	}
	return &GormStockAdjustmentRepository{db: tx}
}

// Insert 写入流水；同一引用已存在时返回 false
// 引用上的唯一索引使并发写入串行化，后到者在先到者提交后才会得到冲突结果
func (r *GormStockAdjustmentRepository) Insert(adjustment *models.StockAdjustment) (bool, error) {
	if adjustment == nil {
		return false, errors.New("stock adjustment is nil")
	}
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "reference"}},
		DoNothing: true,
	}).Create(adjustment)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetByReference 按业务引用查询流水，不存在返回 nil
func (r *GormStockAdjustmentRepository) GetByReference(reference string) (*models.StockAdjustment, error) {
	var adjustment models.StockAdjustment
	if err := r.db.Where("reference = ?", reference).First(&adjustment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &adjustment, nil
}

// TransitionState 条件切换流水状态
func (r *GormStockAdjustmentRepository) TransitionState(reference, fromState, toState string) (int64, error) {
	result := r.db.Model(&models.StockAdjustment{}).
		Where("reference = ? AND state = ?", reference, fromState).
		Update("state", toState)
	return result.RowsAffected, result.Error
}
