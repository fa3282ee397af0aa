package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/luxdecor-shop/internal/logger"

	"github.com/segmentio/kafka-go"
)

// OrderEvent 订单领域事件
type OrderEvent struct {
	Type           string    `json:"type"`
	OrderID        string    `json:"orderId"`
	UserID         uint      `json:"userId"`
	Status         string    `json:"status"`
	PaymentStatus  string    `json:"paymentStatus"`
	PreviousStatus string    `json:"previousStatus,omitempty"`
	TotalMoney     string    `json:"totalMoney,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// Publisher 订单事件投递接口
// 投递失败只记录日志，不影响订单主流程
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

// NopPublisher 未启用消息队列时的空实现
type NopPublisher struct{}

// Publish 丢弃事件
func (NopPublisher) Publish(ctx context.Context, event OrderEvent) error {
	return nil
}

// Close 无资源需要释放
func (NopPublisher) Close() error {
	return nil
}

// messageWriter kafka.Writer 的最小子集
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher 通过 Kafka 投递订单事件，以订单编号为分区键保证单订单有序
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

// NewKafkaPublisher 创建 Kafka 事件投递器
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	addrs := make([]string, 0, len(brokers))
	for _, broker := range brokers {
		if trimmed := strings.TrimSpace(broker); trimmed != "" {
			addrs = append(addrs, trimmed)
		}
	}
	if len(addrs) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, errors.New("kafka topic is required")
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(addrs...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
	}
	return &KafkaPublisher{writer: writer, topic: topic}, nil
}

// Publish 投递事件
func (p *KafkaPublisher) Publish(ctx context.Context, event OrderEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logger.Warnw("order_event_publish_failed",
			"topic", p.topic,
			"event_type", event.Type,
			"order_id", event.OrderID,
			"error", err,
		)
		return err
	}
	return nil
}

// Close 关闭底层 writer
func (p *KafkaPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
