package service

import (
	"context"
	"errors"
	"strings"

	"github.com/luxdecor-shop/internal/authn"
	"github.com/luxdecor-shop/internal/constants"
	"github.com/luxdecor-shop/internal/logger"
	"github.com/luxdecor-shop/internal/metrics"
	"github.com/luxdecor-shop/internal/payment/vnpay"
	"github.com/luxdecor-shop/internal/repository"

	"github.com/shopspring/decimal"
)

// CreatePaymentInput 生成支付链接输入
type CreatePaymentInput struct {
	OrderID   string
	Amount    string // 可选；提供时必须与订单金额一致
	OrderInfo string
	ClientIP  string
}

// PaymentCallbackResult 回调处理结果，始终以结构化形式返回给网关
type PaymentCallbackResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	OrderID string `json:"orderId"`
}

// PaymentService VNPay 支付服务
type PaymentService struct {
	orderRepo    repository.OrderRepository
	orderService *OrderService
	gateway      *vnpay.Config
}

// NewPaymentService 创建支付服务
func NewPaymentService(orderRepo repository.OrderRepository, orderService *OrderService, gateway *vnpay.Config) *PaymentService {
	return &PaymentService{
		orderRepo:    orderRepo,
		orderService: orderService,
		gateway:      gateway,
	}
}

// CreatePaymentURL 为调用者自己的待支付订单生成 VNPay 跳转链接
func (s *PaymentService) CreatePaymentURL(ctx context.Context, identity authn.Identity, input CreatePaymentInput) (string, error) {
	if err := vnpay.ValidateConfig(s.gateway); err != nil {
		return "", ErrPaymentNotConfigured
	}
	order, err := s.orderService.getActiveOrder(input.OrderID)
	if err != nil {
		return "", err
	}
	if order.UserID != identity.UserID {
		return "", ErrOrderForbidden
	}
	if order.Status != constants.OrderStatusPending || order.PaymentStatus != constants.PaymentStatusUnpaid {
		return "", ErrPaymentNotAllowed
	}
	if raw := strings.TrimSpace(input.Amount); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil || !amount.Equal(order.TotalMoney.Decimal) {
			return "", ErrPaymentAmountInvalid
		}
	}
	url, err := vnpay.BuildPaymentURL(s.gateway, vnpay.CreateInput{
		OrderID:   order.OrderID,
		Amount:    order.TotalMoney.Decimal,
		OrderInfo: input.OrderInfo,
		ClientIP:  input.ClientIP,
	})
	if err != nil {
		return "", err
	}
	logger.Infow("payment_url_created", "order_id", order.OrderID, "amount", order.TotalMoney.String())
	return url, nil
}

// HandleCallback 校验并处理网关回调，任何失败都转为结构化结果
func (s *PaymentService) HandleCallback(ctx context.Context, params map[string][]string) PaymentCallbackResult {
	result := s.handleCallback(ctx, params)
	metrics.PaymentCallbackTotal.WithLabelValues(result.Status).Inc()
	return result
}

func (s *PaymentService) handleCallback(ctx context.Context, params map[string][]string) PaymentCallbackResult {
	txnRef := ""
	if values := params[vnpay.ParamTxnRef]; len(values) > 0 {
		txnRef = strings.TrimSpace(values[0])
	}
	callback, err := vnpay.VerifyCallback(s.gateway, params)
	if err != nil {
		logger.Warnw("payment_callback_verify_failed", "order_id", txnRef, "error", err)
		if errors.Is(err, vnpay.ErrSignatureInvalid) {
			return callbackError(txnRef, "invalid signature")
		}
		return callbackError(txnRef, "invalid callback")
	}

	order, err := s.orderRepo.GetActiveByOrderID(callback.OrderID)
	if err != nil {
		logger.Errorw("payment_callback_fetch_order_failed", "order_id", callback.OrderID, "error", err)
		return callbackError(callback.OrderID, "internal error")
	}
	if order == nil {
		return callbackError(callback.OrderID, "order not found")
	}
	if !callback.Amount.Equal(order.TotalMoney.Decimal) {
		logger.Warnw("payment_callback_amount_mismatch",
			"order_id", order.OrderID,
			"callback_amount", callback.Amount.String(),
			"order_amount", order.TotalMoney.String(),
		)
		return callbackError(order.OrderID, "amount mismatch")
	}

	success := callback.Success()
	alreadyPaid := order.PaymentStatus == constants.PaymentStatusPaid
	if _, err := s.orderService.ApplyPaymentResult(ctx, order, success); err != nil {
		if errors.Is(err, ErrOrderStatusTerminal) {
			logger.Infow("payment_callback_order_closed", "order_id", order.OrderID, "status", order.Status, "success", success)
			return PaymentCallbackResult{
				Status:  constants.CallbackResultFailed,
				Message: "order already closed",
				OrderID: order.OrderID,
			}
		}
		logger.Errorw("payment_callback_apply_failed", "order_id", order.OrderID, "error", err)
		return callbackError(order.OrderID, "internal error")
	}
	if !success && alreadyPaid {
		// 已结算订单不接受失败通知
		logger.Warnw("payment_callback_failure_after_paid", "order_id", order.OrderID, "response_code", callback.ResponseCode)
		return PaymentCallbackResult{
			Status:  constants.CallbackResultSuccess,
			Message: "order already paid",
			OrderID: order.OrderID,
		}
	}
	logger.Infow("payment_callback_applied",
		"order_id", order.OrderID,
		"response_code", callback.ResponseCode,
		"transaction_no", callback.TransactionNo,
	)
	if !success {
		return PaymentCallbackResult{
			Status:  constants.CallbackResultFailed,
			Message: "payment failed",
			OrderID: order.OrderID,
		}
	}
	return PaymentCallbackResult{
		Status:  constants.CallbackResultSuccess,
		Message: "payment success",
		OrderID: order.OrderID,
	}
}

func callbackError(orderID, message string) PaymentCallbackResult {
	return PaymentCallbackResult{
		Status:  constants.CallbackResultError,
		Message: message,
		OrderID: orderID,
	}
}
