// Package events 图书事件发布的基础设施实现
package events

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/pkg/circuitbreaker"
	"github.com/xiebiao/bookshelf/pkg/mq"
)

// publishTimeout 单次发布的超时,不让broker拖慢请求
const publishTimeout = 2 * time.Second

// messagePublisher pkg/mq.Publisher中用到的方法
type messagePublisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// BrokerPublisher 经熔断器保护发布到RabbitMQ
type BrokerPublisher struct {
	pub     messagePublisher
	breaker *circuitbreaker.CircuitBreaker
	log     *zap.Logger
}

var _ book.EventPublisher = (*BrokerPublisher)(nil)

// NewBrokerPublisher 创建事件发布者
func NewBrokerPublisher(pub messagePublisher, cfg config.MQConfig, log *zap.Logger) *BrokerPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	fails := cfg.BreakerFails
	if fails == 0 {
		fails = 5
	}
	breaker := circuitbreaker.New("mq_publish", circuitbreaker.Config{
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: circuitbreaker.ConsecutiveFailures(fails),
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}, log)
	return &BrokerPublisher{pub: pub, breaker: breaker, log: log.Named("events")}
}

// Publish 发布事件,请求被取消后仍会完成发布
func (p *BrokerPublisher) Publish(ctx context.Context, e book.Event) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err := p.breaker.Execute(ctx, func(ctx context.Context) error {
		return p.pub.Publish(ctx, e.Type, e)
	})
	if err != nil {
		p.log.Warn("publish event failed",
			zap.String("type", e.Type),
			zap.Uint("book_id", e.BookID),
			zap.Error(err))
	}
	return err
}

// Noop MQ未启用时使用,丢弃所有事件
type Noop struct{}

var _ book.EventPublisher = Noop{}

// Publish 什么也不做
func (Noop) Publish(context.Context, book.Event) error { return nil }

var _ messagePublisher = (*mq.Publisher)(nil)
