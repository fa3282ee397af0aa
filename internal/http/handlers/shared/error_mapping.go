package shared

import (
	"errors"

	"github.com/luxdecor-shop/internal/http/response"
	"github.com/luxdecor-shop/internal/inventory"
	"github.com/luxdecor-shop/internal/payment/vnpay"
	"github.com/luxdecor-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
}

var handlerErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidArgument, code: response.CodeBadRequest},
	{target: service.ErrEmptyCart, code: response.CodeBadRequest},
	{target: service.ErrNoSelection, code: response.CodeBadRequest},
	{target: service.ErrInvalidOrderInput, code: response.CodeBadRequest},
	{target: service.ErrInvalidPaymentMethod, code: response.CodeBadRequest},
	{target: service.ErrInvalidStatus, code: response.CodeBadRequest},
	{target: service.ErrPaymentAmountInvalid, code: response.CodeBadRequest},
	{target: inventory.ErrInvalidStockItem, code: response.CodeBadRequest},
	{target: vnpay.ErrInputInvalid, code: response.CodeBadRequest},
	{target: service.ErrCartNotFound, code: response.CodeNotFound},
	{target: service.ErrOrderNotFound, code: response.CodeNotFound},
	{target: inventory.ErrProductNotFound, code: response.CodeNotFound},
	{target: service.ErrOrderForbidden, code: response.CodeForbidden},
	{target: service.ErrInvalidTransition, code: response.CodeConflict},
	{target: service.ErrOrderStatusTerminal, code: response.CodeConflict},
	{target: service.ErrOrderStatusConflict, code: response.CodeConflict},
	{target: service.ErrOrderCancelNotAllowed, code: response.CodeConflict},
	{target: service.ErrCartChanged, code: response.CodeConflict},
	{target: service.ErrPaymentNotAllowed, code: response.CodeConflict},
	{target: inventory.ErrStockReferenceClosed, code: response.CodeConflict},
	{target: inventory.ErrUpstreamUnavailable, code: response.CodeBadGateway},
	{target: service.ErrPaymentNotConfigured, code: response.CodeInternal},
}

// MapError 将业务错误映射为接口错误；库存不足附带商品 ID
func MapError(err error) *response.AppError {
	if err == nil {
		return response.WrapError(response.CodeInternal, "internal error", nil)
	}
	var insufficient *inventory.InsufficientStockError
	if errors.As(err, &insufficient) {
		return response.WrapError(response.CodeConflict, inventory.ErrInsufficientStock.Error(), nil).
			WithData(gin.H{"productId": insufficient.ProductID})
	}
	if errors.Is(err, inventory.ErrInsufficientStock) {
		return response.WrapError(response.CodeConflict, inventory.ErrInsufficientStock.Error(), nil)
	}
	for _, rule := range handlerErrorRules {
		if errors.Is(err, rule.target) {
			if rule.code >= response.CodeInternal {
				return response.WrapError(rule.code, rule.target.Error(), err)
			}
			return response.WrapError(rule.code, rule.target.Error(), nil)
		}
	}
	return response.WrapError(response.CodeInternal, "internal error", err)
}
