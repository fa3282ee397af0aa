package queue

import (
	"encoding/json"

	"github.com/luxdecor-shop/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderTimeoutCancel 未支付订单超时取消任务
	TaskOrderTimeoutCancel = constants.TaskOrderTimeoutCancel
	// TaskOrderStockRestore 库存归还重试任务
	TaskOrderStockRestore = constants.TaskOrderStockRestore
)

// OrderTimeoutCancelPayload 超时取消任务载荷
type OrderTimeoutCancelPayload struct {
	OrderID string `json:"order_id"`
}

// OrderStockRestorePayload 库存归还重试任务载荷
type OrderStockRestorePayload struct {
	OrderID string `json:"order_id"`
}

// NewOrderTimeoutCancelTask 创建超时取消任务
func NewOrderTimeoutCancelTask(payload OrderTimeoutCancelPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderTimeoutCancel, body), nil
}

// NewOrderStockRestoreTask 创建库存归还重试任务
func NewOrderStockRestoreTask(payload OrderStockRestorePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderStockRestore, body), nil
}

// ParseOrderTimeoutCancelPayload 解析超时取消任务载荷
func ParseOrderTimeoutCancelPayload(task *asynq.Task) (OrderTimeoutCancelPayload, error) {
	var payload OrderTimeoutCancelPayload
	err := json.Unmarshal(task.Payload(), &payload)
	return payload, err
}

// ParseOrderStockRestorePayload 解析库存归还任务载荷
func ParseOrderStockRestorePayload(task *asynq.Task) (OrderStockRestorePayload, error) {
	var payload OrderStockRestorePayload
	err := json.Unmarshal(task.Payload(), &payload)
	return payload, err
}
