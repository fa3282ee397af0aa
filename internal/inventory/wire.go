package inventory

import (
	"errors"
	"net/http"
)

// 商品服务错误响应中的原因码
const (
	ReasonProductNotFound    = "product_not_found"
	ReasonInsufficientStock  = "insufficient_stock"
	ReasonReferenceClosed    = "reference_closed"
	ReasonInvalidStockItem   = "invalid_stock_item"
	ReasonUpstreamUnexpected = "unexpected"
)

// ErrorDetail 商品服务错误响应的数据部分，HTTP 客户端据此还原错误类型
type ErrorDetail struct {
	Reason    string `json:"reason"`
	ProductID uint   `json:"productId,omitempty"`
}

// DescribeError 将账本错误映射为 HTTP 状态码与错误详情
func DescribeError(err error) (int, ErrorDetail) {
	var insufficient *InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		return http.StatusConflict, ErrorDetail{Reason: ReasonInsufficientStock, ProductID: insufficient.ProductID}
	case errors.Is(err, ErrProductNotFound):
		return http.StatusNotFound, ErrorDetail{Reason: ReasonProductNotFound}
	case errors.Is(err, ErrStockReferenceClosed):
		return http.StatusConflict, ErrorDetail{Reason: ReasonReferenceClosed}
	case errors.Is(err, ErrInvalidStockItem):
		return http.StatusBadRequest, ErrorDetail{Reason: ReasonInvalidStockItem}
	default:
		return http.StatusInternalServerError, ErrorDetail{Reason: ReasonUpstreamUnexpected}
	}
}

// errorFromDetail DescribeError 的逆映射
func errorFromDetail(statusCode int, detail ErrorDetail) error {
	switch detail.Reason {
	case ReasonInsufficientStock:
		return &InsufficientStockError{ProductID: detail.ProductID}
	case ReasonProductNotFound:
		return ErrProductNotFound
	case ReasonReferenceClosed:
		return ErrStockReferenceClosed
	case ReasonInvalidStockItem:
		return ErrInvalidStockItem
	}
	switch statusCode {
	case http.StatusNotFound:
		return ErrProductNotFound
	case http.StatusConflict:
		return ErrInsufficientStock
	case http.StatusBadRequest:
		return ErrInvalidStockItem
	}
	return ErrUpstreamUnavailable
}
