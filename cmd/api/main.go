// Bookshelf API
//
// @title                      Bookshelf API
// @version                    1.0
// @description                在线书店的图书目录与评论服务
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                格式: Bearer <token>
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/internal/infrastructure/logger"
	"github.com/xiebiao/bookshelf/pkg/tracing"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// 1. 配置(.env中的变量可以覆盖config.yaml)
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. 日志
	log, syncLog := logger.New(cfg.Log)
	defer syncLog()
	zap.ReplaceGlobals(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. 链路追踪(可选)
	if cfg.Tracing.Enabled {
		shutdownTracer, err := tracing.InitTracer(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			log.Warn("tracing disabled", zap.Error(err))
		} else {
			defer func() {
				if err := shutdownTracer(context.WithoutCancel(ctx)); err != nil {
					log.Warn("flush traces failed", zap.Error(err))
				}
			}()
		}
	}

	// 4. 组装依赖
	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logger.Writer(log, zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.Writer(log, zapcore.ErrorLevel)
	app, cleanup, err := buildApp(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      app.Engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     logger.StdLogger(log, zapcore.ErrorLevel),
	}

	// 5. 启动HTTP和gRPC服务,任一失败都触发退出
	errCh := make(chan error, 2)
	go func() {
		log.Info("http server starting", zap.String("addr", srv.Addr), zap.String("mode", cfg.Server.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if app.GRPC != nil {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPC.Port))
		if err != nil {
			return fmt.Errorf("listen grpc: %w", err)
		}
		go func() {
			log.Info("grpc server starting", zap.String("addr", lis.Addr().String()))
			if err := app.GRPC.Serve(lis); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		log.Error("server failed", zap.Error(err))
		stop()
	}

	// 6. 优雅关闭:停止接收新请求,等待处理中的请求完成
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()

	if app.GRPC != nil {
		app.GRPC.GracefulStop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
		return err
	}
	log.Info("server stopped")
	return nil
}
