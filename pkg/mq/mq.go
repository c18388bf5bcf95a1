// Package mq RabbitMQ消息发布
//
// 图书变更事件发布到topic类型的exchange，routing key形如book.created，
// 下游（搜索索引、推荐等）按需绑定自己的队列。
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

	"github.com/xiebiao/bookshelf/pkg/metrics"
)

// channel amqp.Channel中用到的方法
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher 消息发布者，可并发使用
type Publisher struct {
	conn     *amqp.Connection
	mu       sync.Mutex // amqp.Channel不能并发发布
	ch       channel
	exchange string
	log      *zap.Logger
	now      func() time.Time
}

// NewPublisher 连接RabbitMQ并声明持久化的topic exchange
func NewPublisher(url, exchange string, log *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	p := newPublisher(ch, exchange, log)
	p.conn = conn
	p.log.Info("rabbitmq publisher ready")
	return p, nil
}

func newPublisher(ch channel, exchange string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	metrics.InitMetrics()
	return &Publisher{
		ch:       ch,
		exchange: exchange,
		log:      log.Named("mq").With(zap.String("exchange", exchange)),
		now:      time.Now,
	}
}

// Publish 以JSON发布持久化消息
func (p *Publisher) Publish(ctx context.Context, routingKey string, message any) (err error) {
	defer func() {
		result := "success"
		if err != nil {
			result = "failure"
		}
		metrics.IncCounterVec(metrics.MessagesPublishedTotal, map[string]string{
			"exchange":    p.exchange,
			"routing_key": routingKey,
			"result":      result,
		})
	}()

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    p.now(),
		Body:         body,
	}

	p.mu.Lock()
	err = p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg)
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	p.log.Debug("message published", zap.String("routing_key", routingKey), zap.String("message_id", msg.MessageId))
	return nil
}

// Close 关闭channel和连接
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	if p.ch != nil {
		err = p.ch.Close()
	}
	if p.conn != nil {
		if cerr := p.conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
