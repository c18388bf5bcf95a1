//go:build wireinject
// +build wireinject

// Wire依赖注入配置
// 运行 `wire gen ./cmd/api` 生成wire_gen.go,组装结果与app.go中的buildApp一致

package main

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	appbook "github.com/xiebiao/bookshelf/internal/application/book"
	appuser "github.com/xiebiao/bookshelf/internal/application/user"
	"github.com/xiebiao/bookshelf/internal/domain/user"
	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/sqlstore"
	"github.com/xiebiao/bookshelf/internal/interface/http/handler"
	"github.com/xiebiao/bookshelf/internal/interface/http/middleware"
	"github.com/xiebiao/bookshelf/internal/interface/http/router"
)

// infrastructureSet 数据库、Redis、封面存储、事件发布、JWT
var infrastructureSet = wire.NewSet(
	provideDB,
	provideRedis,
	provideCoverStore,
	provideEventPublisher,
	provideJWTManager,
	provideSessionStore,
	provideTokenBlacklist,
	provideHealthChecker,
)

// repositorySet 仓储与事务管理器
var repositorySet = wire.NewSet(
	sqlstore.NewUserRepository,
	sqlstore.NewBookRepository,
	sqlstore.NewTxManager,
)

// domainSet 领域服务
var domainSet = wire.NewSet(
	provideUserService,
	provideBookService,
)

// applicationSet 用例
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewMeUseCase,
	appuser.NewRefreshTokenUseCase,
	appuser.NewUpdateProfileUseCase,
	appuser.NewDeactivateUserUseCase,
	appbook.NewAddBookUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewListBooksUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewDeleteBookUseCase,
	appbook.NewAddReviewUseCase,
)

// interfaceSet 中间件、Handler、路由
var interfaceSet = wire.NewSet(
	wire.Bind(new(middleware.UserLoader), new(user.Service)),
	middleware.NewAuthMiddleware,
	handler.NewUserHandler,
	handler.NewAccountHandler,
	handler.NewBookHandler,
	handler.NewHealthHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
	newApp,
)

// InitializeApp Wire生成的组装入口
func InitializeApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		interfaceSet,
	)
	return nil, nil, nil
}
