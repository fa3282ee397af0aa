package inventory

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrInvalidStockItem     = errors.New("invalid stock item")
	ErrStockReferenceClosed = errors.New("stock reference already restored")
	ErrUpstreamUnavailable  = errors.New("catalog service unavailable")
	errStockReferenceReplay = errors.New("stock reference already applied")
)

// InsufficientStockError 指明库存不足的商品
type InsufficientStockError struct {
	ProductID uint
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d", e.ProductID)
}

// Is 使 errors.Is(err, ErrInsufficientStock) 成立
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
