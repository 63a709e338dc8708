// Package messaging 定价事件的 Kafka 发布实现
package messaging

import (
	"context"

	"github.com/wyfcoding/mcpricing/internal/pricing/domain"
	"github.com/wyfcoding/mcpricing/pkg/mq"
)

// kafkaPublisher 基于 Kafka 的事件发布者实现
type kafkaPublisher struct {
	producer *mq.KafkaProducer
}

// NewKafkaPublisher 创建事件发布者实例
func NewKafkaPublisher(producer *mq.KafkaProducer) domain.EventPublisher {
	return &kafkaPublisher{producer: producer}
}

// Publish 发布领域事件，value 由 producer 做 JSON 序列化
func (p *kafkaPublisher) Publish(ctx context.Context, topic string, key string, event any) error {
	return p.producer.SendMessage(ctx, topic, key, event)
}
