package inventory

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/luxdecor-shop/internal/constants"
	"github.com/luxdecor-shop/internal/logger"
	"github.com/luxdecor-shop/internal/metrics"
	"github.com/luxdecor-shop/internal/models"
	"github.com/luxdecor-shop/internal/repository"

	"gorm.io/gorm"
)

const (
	restoreApplied  = "applied"
	restoreVoided   = "voided"
	restoreReplayed = "replayed"
)

// Ledger 商品服务侧的库存账本
// 所有库存修改都在单个本地事务内完成，批量扣减要么全部成功要么全部不变
type Ledger struct {
	productRepo    repository.ProductRepository
	adjustmentRepo repository.StockAdjustmentRepository
}

// NewLedger 创建库存账本
func NewLedger(productRepo repository.ProductRepository, adjustmentRepo repository.StockAdjustmentRepository) *Ledger {
	return &Ledger{
		productRepo:    productRepo,
		adjustmentRepo: adjustmentRepo,
	}
}

// FetchProduct 查询商品快照
func (l *Ledger) FetchProduct(productID uint) (*ProductSnapshot, error) {
	if productID == 0 {
		return nil, ErrProductNotFound
	}
	product, err := l.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotFound
	}
	return SnapshotFromProduct(product), nil
}

// ReduceStock 批量扣减库存
func (l *Ledger) ReduceStock(reference string, items []StockItem) error {
	merged, err := MergeStockItems(items)
	if err != nil {
		return err
	}
	reference = strings.TrimSpace(reference)

	err = l.productRepo.Transaction(func(tx *gorm.DB) error {
		productRepo := l.productRepo.WithTx(tx)
		if reference != "" {
			if err := l.openReference(tx, reference, merged); err != nil {
				return err
			}
		}
		for _, item := range merged {
			affected, err := productRepo.DecrementStock(item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if affected > 0 {
				continue
			}
			product, err := productRepo.GetByID(item.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("%w: %d", ErrProductNotFound, item.ProductID)
			}
			return &InsufficientStockError{ProductID: item.ProductID}
		}
		return nil
	})
	if errors.Is(err, errStockReferenceReplay) {
		logger.Infow("stock_reduce_replayed", "reference", reference)
		metrics.StockAdjustTotal.WithLabelValues("reduce", "replayed").Inc()
		return nil
	}
	if err != nil {
		metrics.StockAdjustTotal.WithLabelValues("reduce", "rejected").Inc()
		return err
	}
	metrics.StockAdjustTotal.WithLabelValues("reduce", "applied").Inc()
	logger.Debugw("stock_reduced", "reference", reference, "items", merged)
	return nil
}

// RestoreStock 批量归还库存
// 带引用时仅归还该引用实际扣减过的库存，且只归还一次
func (l *Ledger) RestoreStock(reference string, items []StockItem) error {
	merged, err := MergeStockItems(items)
	if err != nil {
		return err
	}
	reference = strings.TrimSpace(reference)

	outcome := restoreApplied
	err = l.productRepo.Transaction(func(tx *gorm.DB) error {
		productRepo := l.productRepo.WithTx(tx)
		if reference != "" {
			claimed, err := l.closeReference(tx, reference, merged)
			if err != nil {
				return err
			}
			// 作废占位需要随事务提交，因此这里返回 nil 而不是错误
			if claimed != restoreApplied {
				outcome = claimed
				return nil
			}
		}
		for _, item := range merged {
			affected, err := productRepo.IncrementStock(item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				return fmt.Errorf("%w: %d", ErrProductNotFound, item.ProductID)
			}
		}
		return nil
	})
	if err != nil {
		metrics.StockAdjustTotal.WithLabelValues("restore", "rejected").Inc()
		return err
	}
	metrics.StockAdjustTotal.WithLabelValues("restore", outcome).Inc()
	if outcome == restoreApplied {
		logger.Debugw("stock_restored", "reference", reference, "items", merged)
	} else {
		logger.Infow("stock_restore_skipped", "reference", reference, "outcome", outcome)
	}
	return nil
}

// openReference 登记扣减流水；已扣减的引用视为重放，已归还或作废的引用拒绝扣减
func (l *Ledger) openReference(tx *gorm.DB, reference string, items []StockItem) error {
	adjustmentRepo := l.adjustmentRepo.WithTx(tx)
	created, err := adjustmentRepo.Insert(&models.StockAdjustment{
		Reference: reference,
		State:     constants.StockAdjustReduced,
		Items:     encodeStockItems(items),
	})
	if err != nil {
		return err
	}
	if created {
		return nil
	}
	existing, err := adjustmentRepo.GetByReference(reference)
	if err != nil {
		return err
	}
	if existing != nil && existing.State == constants.StockAdjustReduced {
		return errStockReferenceReplay
	}
	return ErrStockReferenceClosed
}

// closeReference 认领归还；无扣减记录时写入作废占位
func (l *Ledger) closeReference(tx *gorm.DB, reference string, items []StockItem) (string, error) {
	adjustmentRepo := l.adjustmentRepo.WithTx(tx)
	created, err := adjustmentRepo.Insert(&models.StockAdjustment{
		Reference: reference,
		State:     constants.StockAdjustVoided,
		Items:     encodeStockItems(items),
	})
	if err != nil {
		return "", err
	}
	if created {
		return restoreVoided, nil
	}
	affected, err := adjustmentRepo.TransitionState(reference, constants.StockAdjustReduced, constants.StockAdjustRestored)
	if err != nil {
		return "", err
	}
	if affected == 0 {
		return restoreReplayed, nil
	}
	return restoreApplied, nil
}

func encodeStockItems(items []StockItem) string {
	payload, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(payload)
}
