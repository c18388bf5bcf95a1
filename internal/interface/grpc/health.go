// Package grpc gRPC接口:标准健康检查服务(grpc.health.v1.Health)
package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/xiebiao/bookshelf/internal/infrastructure/health"
)

// ServiceName 健康检查中本服务的名称,空字符串表示整个服务器
const ServiceName = "bookshelf.Catalog"

// watchInterval Watch重新检查的间隔
const watchInterval = 5 * time.Second

// HealthServer 基于依赖检查的健康服务
type HealthServer struct {
	grpc_health_v1.UnimplementedHealthServer
	checker  *health.Checker
	interval time.Duration
	log      *zap.Logger
}

// NewHealthServer 创建健康检查服务
func NewHealthServer(checker *health.Checker, log *zap.Logger) *HealthServer {
	if log == nil {
		log = zap.NewNop()
	}
	return &HealthServer{checker: checker, interval: watchInterval, log: log}
}

// Check 数据库(和Redis)可用时返回SERVING
func (h *HealthServer) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	if !known(req.GetService()) {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", req.GetService())
	}
	return &grpc_health_v1.HealthCheckResponse{Status: h.status(ctx)}, nil
}

// Watch 先发送当前状态,之后只在状态变化时推送
func (h *HealthServer) Watch(req *grpc_health_v1.HealthCheckRequest, stream grpc_health_v1.Health_WatchServer) error {
	if !known(req.GetService()) {
		return stream.Send(&grpc_health_v1.HealthCheckResponse{
			Status: grpc_health_v1.HealthCheckResponse_SERVICE_UNKNOWN,
		})
	}

	ctx := stream.Context()
	last := h.status(ctx)
	if err := stream.Send(&grpc_health_v1.HealthCheckResponse{Status: last}); err != nil {
		return err
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			current := h.status(ctx)
			if current == last {
				continue
			}
			if err := stream.Send(&grpc_health_v1.HealthCheckResponse{Status: current}); err != nil {
				return err
			}
			h.log.Info("health status changed", zap.Stringer("status", current))
			last = current
		}
	}
}

func (h *HealthServer) status(ctx context.Context) grpc_health_v1.HealthCheckResponse_ServingStatus {
	if h.checker.Check(ctx).Healthy {
		return grpc_health_v1.HealthCheckResponse_SERVING
	}
	return grpc_health_v1.HealthCheckResponse_NOT_SERVING
}

func known(service string) bool {
	return service == "" || service == ServiceName
}
