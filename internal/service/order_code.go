package service

import (
	"encoding/base32"

	"github.com/google/uuid"
)

const orderCodePrefix = "OD"

var orderCodeEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// newOrderCode 生成订单编号：前缀 + UUIDv7 的 base32 编码
// v7 携带毫秒时间戳与随机位，唯一性不依赖冲突重试
func newOrderCode() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return orderCodePrefix + orderCodeEncoding.EncodeToString(id[:]), nil
}
