// Package saga 跨资源的多步操作编排
//
// 本项目里一次"发布图书"要先写封面文件再写数据库，两者不在同一个事务里：
// 任何一步失败都要把已经完成的步骤逆序撤销（封面上传后入库失败 → 删除封面）。
//
// 用法：
//
//	s := saga.New("publish_book", 30*time.Second, logger)
//	s.AddStep("attach_cover", attach, detach)
//	s.AddStep("persist_book", persist, nil)
//	if err := s.Execute(ctx); err != nil { ... }
package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshelf/pkg/metrics"
)

// Step Saga中的一个步骤
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error // 可以为nil，表示无需撤销
}

// Saga 编排器，不能并发使用，也不能重复Execute
type Saga struct {
	name     string
	steps    []Step
	executed []Step
	timeout  time.Duration
	log      *zap.Logger
}

// New 创建Saga
// timeout<=0表示不额外设置超时，log为nil时不输出日志
func New(name string, timeout time.Duration, log *zap.Logger) *Saga {
	if log == nil {
		log = zap.NewNop()
	}
	metrics.InitMetrics()
	return &Saga{
		name:    name,
		steps:   make([]Step, 0, 4),
		timeout: timeout,
		log:     log.With(zap.String("saga", name)),
	}
}

// AddStep 追加步骤，按添加顺序执行
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) *Saga {
	s.steps = append(s.steps, Step{Name: name, Action: action, Compensate: compensate})
	return s
}

// Execute 顺序执行所有步骤
// 某一步失败或超时时，逆序补偿已完成的步骤，返回的错误包装原始错误（errors.Is/As可用）
func (s *Saga) Execute(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		result := "success"
		if err != nil {
			result = "failure"
		}
		metrics.IncCounterVec(metrics.SagaExecutionsTotal, map[string]string{"saga": s.name, "result": result})
		metrics.ObserveHistogramVec(metrics.SagaExecutionDuration, map[string]string{"saga": s.name}, time.Since(start).Seconds())
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for _, step := range s.steps {
		if ctxErr := ctx.Err(); ctxErr != nil {
			s.compensate(ctx)
			return fmt.Errorf("saga %s aborted before %s: %w", s.name, step.Name, ctxErr)
		}

		if step.Action != nil {
			if stepErr := step.Action(ctx); stepErr != nil {
				s.log.Debug("saga step failed", zap.String("step", step.Name), zap.Error(stepErr))
				s.compensate(ctx)
				return fmt.Errorf("saga %s step %s: %w", s.name, step.Name, stepErr)
			}
		}
		s.executed = append(s.executed, step)
	}
	return nil
}

// compensate 逆序补偿已完成的步骤
// 补偿使用脱离取消信号的ctx（请求已超时也要撤销），单步补偿失败不影响后续补偿
func (s *Saga) compensate(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	var errs []error
	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", step.Name, err))
			metrics.IncCounterVec(metrics.SagaCompensationsTotal, map[string]string{"saga": s.name, "result": "failure"})
			continue
		}
		metrics.IncCounterVec(metrics.SagaCompensationsTotal, map[string]string{"saga": s.name, "result": "success"})
	}
	s.executed = nil

	if len(errs) > 0 {
		// 补偿失败只能人工处理（例如清理孤儿封面文件）
		s.log.Error("saga compensation failed", zap.Error(errors.Join(errs...)))
	}
}
