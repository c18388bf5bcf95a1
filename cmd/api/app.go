package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	appbook "github.com/xiebiao/bookshelf/internal/application/book"
	appuser "github.com/xiebiao/bookshelf/internal/application/user"
	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/internal/infrastructure/health"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/sqlstore"
	grpcapi "github.com/xiebiao/bookshelf/internal/interface/grpc"
	"github.com/xiebiao/bookshelf/internal/interface/http/handler"
	"github.com/xiebiao/bookshelf/internal/interface/http/middleware"
	"github.com/xiebiao/bookshelf/internal/interface/http/router"
)

// App 组装完成的服务
type App struct {
	Engine *gin.Engine
	GRPC   *grpc.Server
}

// buildApp 手动依赖注入,依赖链:Repository ← Service ← UseCase ← Handler ← Router
// 与wire.go中的InitializeApp组装结果相同
// 返回的cleanup按创建的逆序释放资源
func buildApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	fail := func(err error) (*App, func(), error) {
		cleanup()
		return nil, nil, err
	}

	// 1. 基础设施
	db, closeDB, err := provideDB(cfg, log)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeDB)

	redisClient, closeRedis, err := provideRedis(ctx, cfg, log)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeRedis)

	covers, closeCovers, err := provideCoverStore(ctx, cfg, log)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeCovers)

	eventPublisher, closeEvents := provideEventPublisher(cfg, log)
	cleanups = append(cleanups, closeEvents)

	jwtManager := provideJWTManager(cfg)

	// 2. 仓储与领域服务
	userService := provideUserService(sqlstore.NewUserRepository(db))
	bookService := provideBookService(cfg, sqlstore.NewBookRepository(db), sqlstore.NewTxManager(db), redisClient, log)

	// 3. 应用层
	sessions := provideSessionStore(redisClient)
	userHandler := handler.NewUserHandler(
		appuser.NewRegisterUseCase(userService, jwtManager, sessions, log),
		appuser.NewLoginUseCase(userService, jwtManager, sessions, log),
		appuser.NewLogoutUseCase(sessions, log),
		appuser.NewMeUseCase(userService),
		appuser.NewRefreshTokenUseCase(userService, jwtManager),
	)
	accountHandler := handler.NewAccountHandler(
		appuser.NewUpdateProfileUseCase(userService, log),
		appuser.NewDeactivateUserUseCase(userService, sessions, log),
	)
	bookHandler := handler.NewBookHandler(
		appbook.NewAddBookUseCase(bookService, covers, eventPublisher, log),
		appbook.NewGetBookUseCase(bookService),
		appbook.NewListBooksUseCase(bookService),
		appbook.NewUpdateBookUseCase(bookService, covers, eventPublisher, log),
		appbook.NewDeleteBookUseCase(bookService, eventPublisher, log),
		appbook.NewAddReviewUseCase(bookService, eventPublisher, log),
	)

	// 4. 接口层
	checker := provideHealthChecker(db, redisClient, log)
	auth := middleware.NewAuthMiddleware(jwtManager, provideTokenBlacklist(redisClient), userService)
	engine := router.New(cfg, router.Handlers{
		Book:    bookHandler,
		User:    userHandler,
		Account: accountHandler,
		Health:  handler.NewHealthHandler(checker),
	}, auth, log)

	return newApp(cfg, engine, checker, log), cleanup, nil
}

// newApp gRPC只在启用时创建,与HTTP共用同一个健康检查器
func newApp(cfg *config.Config, engine *gin.Engine, checker *health.Checker, log *zap.Logger) *App {
	app := &App{Engine: engine}
	if cfg.GRPC.Enabled {
		app.GRPC = grpcapi.NewServer(grpcapi.NewHealthServer(checker, log), log)
	}
	return app
}
