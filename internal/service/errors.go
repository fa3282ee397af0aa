package service

import "errors"

// 订单与购物车相关错误
var (
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrCartNotFound          = errors.New("cart not found")
	ErrEmptyCart             = errors.New("cart is empty")
	ErrNoSelection           = errors.New("no cart item selected")
	ErrCartChanged           = errors.New("cart items already checked out")
	ErrInvalidOrderInput     = errors.New("invalid order input")
	ErrInvalidPaymentMethod  = errors.New("invalid payment method")
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderForbidden        = errors.New("order does not belong to caller")
	ErrInvalidStatus         = errors.New("invalid order status")
	ErrInvalidTransition     = errors.New("invalid order status transition")
	ErrOrderStatusTerminal   = errors.New("order status is terminal")
	ErrOrderStatusConflict   = errors.New("order status changed concurrently")
	ErrOrderCancelNotAllowed = errors.New("order can only be cancelled while pending")
	ErrOrderCreateFailed     = errors.New("order create failed")
	ErrOrderUpdateFailed     = errors.New("order update failed")
	ErrOrderFetchFailed      = errors.New("order fetch failed")
)

// 支付相关错误
var (
	ErrPaymentNotConfigured = errors.New("payment gateway not configured")
	ErrPaymentNotAllowed    = errors.New("order is not awaiting payment")
	ErrPaymentAmountInvalid = errors.New("payment amount mismatch")
)
