package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"ruralwork/config"
)

// 领域事件路由键
const (
	EventLeaveReviewed = "leave.reviewed"
	EventScoreDeducted = "score.deducted"
	EventVoteClosed    = "vote.closed"
)

// Event 发往消息队列的领域事件
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// NewEvent 构造事件并补齐 ID 与时间
func NewEvent(eventType string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now(),
		Payload:    payload,
	}
}

// Publisher 事件发布接口
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// ────────── RabbitMQ ──────────

// RabbitPublisher 基于 topic exchange 的事件发布器
type RabbitPublisher struct {
	mu       sync.Mutex // amqp.Channel 非并发安全
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   *zap.Logger
}

// NewRabbitPublisher 连接 RabbitMQ 并声明 exchange
func NewRabbitPublisher(cfg *config.MQConfig, logger *zap.Logger) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("连接 RabbitMQ 失败: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("打开 channel 失败: %w", err)
	}

	if err := ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // kind
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // args
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("声明 exchange 失败: %w", err)
	}

	logger.Info("RabbitMQ 连接成功", zap.String("exchange", cfg.Exchange))

	return &RabbitPublisher{conn: conn, channel: ch, exchange: cfg.Exchange, logger: logger}, nil
}

// Publish 以事件类型为路由键发布 JSON 消息
func (p *RabbitPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.channel.PublishWithContext(
		ctx,
		p.exchange,
		evt.Type, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    evt.ID,
			Timestamp:    evt.OccurredAt,
			Type:         evt.Type,
			Body:         body,
		},
	)
}

// Close 关闭 channel 与连接
func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.channel.Close(); err != nil {
		p.logger.Warn("关闭 RabbitMQ channel 失败", zap.Error(err))
	}
	return p.conn.Close()
}

// ────────── Nop ──────────

// NopPublisher 未启用消息队列时使用，只记 debug 日志
type NopPublisher struct {
	logger *zap.Logger
}

// NewNopPublisher 创建空发布器
func NewNopPublisher(logger *zap.Logger) *NopPublisher {
	return &NopPublisher{logger: logger}
}

func (p *NopPublisher) Publish(_ context.Context, evt Event) error {
	p.logger.Debug("消息队列未启用，丢弃事件", zap.String("type", evt.Type), zap.String("id", evt.ID))
	return nil
}

func (p *NopPublisher) Close() error { return nil }

// ────────── 构造 ──────────

// New 按配置返回发布器；连接失败时降级为 NopPublisher
func New(cfg *config.MQConfig, logger *zap.Logger) Publisher {
	if !cfg.Enabled {
		return NewNopPublisher(logger)
	}
	p, err := NewRabbitPublisher(cfg, logger)
	if err != nil {
		logger.Warn("RabbitMQ 不可用，事件发布已降级", zap.Error(err))
		return NewNopPublisher(logger)
	}
	return p
}
