// Package health 依赖健康检查,HTTP /api/status 和 gRPC Health 服务共用
package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Probe 单个依赖的检查
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// Report 检查结果
type Report struct {
	Healthy    bool              `json:"healthy"`
	Components map[string]string `json:"components"`
}

// Checker 并发执行所有Probe
type Checker struct {
	probes  []Probe
	timeout time.Duration
	log     *zap.Logger
}

// NewChecker 创建检查器,timeout是单次检查的总超时
func NewChecker(timeout time.Duration, log *zap.Logger, probes ...Probe) *Checker {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Checker{probes: probes, timeout: timeout, log: log}
}

// Check 执行全部检查,任一依赖失败则Healthy=false
func (c *Checker) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		mu     sync.Mutex
		report = Report{Healthy: true, Components: make(map[string]string, len(c.probes))}
	)

	var g errgroup.Group
	for _, p := range c.probes {
		g.Go(func() error {
			status := "ok"
			if err := p.Check(ctx); err != nil {
				c.log.Warn("health check failed", zap.String("component", p.Name), zap.Error(err))
				status = "unavailable"
			}
			mu.Lock()
			defer mu.Unlock()
			report.Components[p.Name] = status
			if status != "ok" {
				report.Healthy = false
			}
			return nil
		})
	}
	_ = g.Wait()
	return report
}
