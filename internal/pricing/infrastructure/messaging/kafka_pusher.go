package messaging

import (
	"context"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/wyfcoding/pkg/config"
	"github.com/wyfcoding/pkg/logging"
)

// KafkaPusher 将 Outbox 消息推送到 Kafka
// 写入器不绑定固定主题, 每条消息携带自己的目标主题;
// 按键哈希分区, 同一标的的事件保持分区内有序。
type KafkaPusher struct {
	writer *kafkago.Writer
	logger *logging.Logger
}

// NewKafkaPusher 创建新的 KafkaPusher 实例
func NewKafkaPusher(cfg config.KafkaConfig, logger *logging.Logger) *KafkaPusher {
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Balancer:     &kafkago.Hash{},
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		MaxAttempts:  5,
		RequiredAcks: kafkago.RequireAll,
	}

	return &KafkaPusher{writer: writer, logger: logger}
}

// Push 发送单条消息, 签名与 Outbox 处理器的推送函数一致。
func (p *KafkaPusher) Push(ctx context.Context, topic string, key string, payload []byte) error {
	msg := kafkago.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.ErrorContext(ctx, "failed to push outbox message", "topic", topic, "error", err)
		return err
	}

	return nil
}

// Close 关闭底层写入器。
func (p *KafkaPusher) Close() error {
	return p.writer.Close()
}
