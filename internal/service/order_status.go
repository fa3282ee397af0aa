package service

import (
	"strings"

	"github.com/luxdecor-shop/internal/constants"
)

var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusConfirmed: true,
		constants.OrderStatusShipping:  true,
		constants.OrderStatusDelivered: true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusConfirmed: {
		constants.OrderStatusShipping:  true,
		constants.OrderStatusDelivered: true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusShipping: {
		constants.OrderStatusDelivered: true,
		constants.OrderStatusCancelled: true,
	},
}

// NormalizeOrderStatus 校验并规范化订单状态字符串
func NormalizeOrderStatus(raw string) (string, error) {
	status := strings.ToUpper(strings.TrimSpace(raw))
	switch status {
	case constants.OrderStatusPending,
		constants.OrderStatusConfirmed,
		constants.OrderStatusShipping,
		constants.OrderStatusDelivered,
		constants.OrderStatusCancelled:
		return status, nil
	}
	return "", ErrInvalidStatus
}

// IsTerminalStatus 是否终态
func IsTerminalStatus(status string) bool {
	return status == constants.OrderStatusDelivered || status == constants.OrderStatusCancelled
}

// checkTransition 校验状态迁移，返回 true 表示目标与当前状态相同无需变更
func checkTransition(from, to string) (bool, error) {
	if IsTerminalStatus(from) {
		return false, ErrOrderStatusTerminal
	}
	if from == to {
		return true, nil
	}
	if !allowedTransitions[from][to] {
		return false, ErrInvalidTransition
	}
	return false, nil
}
