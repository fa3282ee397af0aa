package worker

import (
	"context"
	"errors"
	"strings"

	"github.com/luxdecor-shop/internal/inventory"
	"github.com/luxdecor-shop/internal/logger"
	"github.com/luxdecor-shop/internal/provider"
	"github.com/luxdecor-shop/internal/queue"
	"github.com/luxdecor-shop/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderTimeoutCancel, c.handleOrderTimeoutCancel)
	mux.HandleFunc(queue.TaskOrderStockRestore, c.handleOrderStockRestore)
}

func (c *Consumer) handleOrderTimeoutCancel(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_timeout_cancel_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseOrderTimeoutCancelPayload(task)
	if err != nil {
		logger.Warnw("worker_order_timeout_cancel_unmarshal_failed", "error", err)
		return err
	}
	orderID := strings.TrimSpace(payload.OrderID)
	if orderID == "" {
		logger.Debugw("worker_order_timeout_cancel_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.OrderService == nil {
		logger.Warnw("worker_order_timeout_cancel_skip_order_service_nil", "order_id", orderID)
		return nil
	}
	order, err := c.OrderService.CancelExpiredOrder(ctx, orderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			logger.Debugw("worker_order_timeout_cancel_skip_order_not_found", "order_id", orderID)
			return nil
		case errors.Is(err, service.ErrOrderStatusConflict), errors.Is(err, service.ErrOrderStatusTerminal):
			// 支付回调或人工处理抢先一步
			logger.Debugw("worker_order_timeout_cancel_skip_status_moved", "order_id", orderID)
			return nil
		case errors.Is(err, service.ErrOrderFetchFailed):
			logger.Warnw("worker_order_timeout_cancel_fetch_failed", "order_id", orderID, "error", err)
			return err
		default:
			logger.Warnw("worker_order_timeout_cancel_failed", "order_id", orderID, "error", err)
			return err
		}
	}
	if order != nil {
		logger.Debugw("worker_order_timeout_cancel_done", "order_id", orderID, "status", order.Status)
	}
	return nil
}

func (c *Consumer) handleOrderStockRestore(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_stock_restore_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseOrderStockRestorePayload(task)
	if err != nil {
		logger.Warnw("worker_order_stock_restore_unmarshal_failed", "error", err)
		return err
	}
	orderID := strings.TrimSpace(payload.OrderID)
	if orderID == "" {
		logger.Debugw("worker_order_stock_restore_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.OrderService == nil {
		logger.Warnw("worker_order_stock_restore_skip_order_service_nil", "order_id", orderID)
		return nil
	}
	if err := c.OrderService.RetryStockRestore(ctx, orderID); err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			logger.Debugw("worker_order_stock_restore_skip_order_not_found", "order_id", orderID)
			return nil
		case errors.Is(err, inventory.ErrProductNotFound), errors.Is(err, inventory.ErrInvalidStockItem):
			// 重试无法修复，留待人工处理
			logger.Errorw("worker_order_stock_restore_unrecoverable", "order_id", orderID, "error", err)
			return asynq.SkipRetry
		default:
			logger.Warnw("worker_order_stock_restore_failed", "order_id", orderID, "error", err)
			return err
		}
	}
	return nil
}
