package main

import (
	"context"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appuser "github.com/xiebiao/bookshelf/internal/application/user"
	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/domain/user"
	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/internal/infrastructure/events"
	"github.com/xiebiao/bookshelf/internal/infrastructure/health"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/sqlstore"
	"github.com/xiebiao/bookshelf/internal/infrastructure/storage"
	"github.com/xiebiao/bookshelf/internal/interface/http/middleware"
	"github.com/xiebiao/bookshelf/pkg/jwt"
	"github.com/xiebiao/bookshelf/pkg/mq"
)

// 这里的Provider同时被main.go的手动组装和wire.go使用
// 返回func()的Provider与Wire的cleanup约定一致

// provideDB 打开数据库,返回关闭函数
func provideDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, func(), error) {
	db, err := sqlstore.Open(cfg.Database, log)
	if err != nil {
		return nil, nil, err
	}
	return db, func() {
		if err := sqlstore.Close(db); err != nil {
			log.Warn("close database failed", zap.Error(err))
		}
	}, nil
}

// provideRedis Redis未启用时返回nil客户端
func provideRedis(ctx context.Context, cfg *config.Config, log *zap.Logger) (*goredis.Client, func(), error) {
	if !cfg.Redis.Enabled {
		log.Warn("redis disabled: sessions, token revocation and categories cache are off")
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// provideSessionStore 没有Redis时返回nil接口(不能返回装着nil指针的接口)
func provideSessionStore(client *goredis.Client) appuser.SessionStore {
	if client == nil {
		return nil
	}
	return redis.NewSessionStore(client)
}

// provideTokenBlacklist 同provideSessionStore
func provideTokenBlacklist(client *goredis.Client) middleware.TokenBlacklist {
	if client == nil {
		return nil
	}
	return redis.NewSessionStore(client)
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire, cfg.JWT.RefreshTokenExpire)
}

func provideUserService(repo user.Repository) user.Service {
	return user.NewService(repo)
}

// provideBookService 图书领域服务,有Redis时启用分类缓存
func provideBookService(cfg *config.Config, repo book.Repository, tx *sqlstore.TxManager, client *goredis.Client, log *zap.Logger) book.Service {
	opts := []book.Option{
		book.WithPageSizes(cfg.Catalog.DefaultPageSize, cfg.Catalog.MaxPageSize),
	}
	if client != nil {
		opts = append(opts, book.WithCategoryCache(redis.NewCategoryCache(client, cfg.Catalog.CategoriesCacheTTL, log)))
	}
	return book.NewService(repo, tx, opts...)
}

// provideCoverStore 按storage.driver选择本地磁盘或GCS
func provideCoverStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (book.CoverStore, func(), error) {
	var (
		blob    storage.Blob
		cleanup = func() {}
	)
	switch cfg.Storage.Driver {
	case "gcs":
		gcsBlob, closeClient, err := storage.NewGCSBlob(ctx, cfg.Storage.Bucket, cfg.Storage.CredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		blob = gcsBlob
		cleanup = func() { _ = closeClient() }
	default:
		local, err := storage.NewLocalBlob(cfg.Storage.LocalRoot)
		if err != nil {
			return nil, nil, err
		}
		blob = local
	}
	return storage.NewMediaManager(blob, cfg.Storage.MaxCoverBytes, cfg.Storage.URLPrefix, log), cleanup, nil
}

// provideEventPublisher 未启用或连不上RabbitMQ时退化为不发布
// 事件只用于下游通知,不影响图书写操作
func provideEventPublisher(cfg *config.Config, log *zap.Logger) (book.EventPublisher, func()) {
	if !cfg.MQ.Enabled {
		return events.Noop{}, func() {}
	}
	pub, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, log)
	if err != nil {
		log.Warn("rabbitmq unavailable, book events disabled", zap.Error(err))
		return events.Noop{}, func() {}
	}
	return events.NewBrokerPublisher(pub, cfg.MQ, log), func() { _ = pub.Close() }
}

// provideHealthChecker 数据库必查,启用Redis时一并检查
func provideHealthChecker(db *gorm.DB, client *goredis.Client, log *zap.Logger) *health.Checker {
	probes := []health.Probe{{
		Name:  "database",
		Check: func(ctx context.Context) error { return sqlstore.Ping(ctx, db) },
	}}
	if client != nil {
		probes = append(probes, health.Probe{
			Name:  "redis",
			Check: func(ctx context.Context) error { return client.Ping(ctx).Err() },
		})
	}
	return health.NewChecker(0, log, probes...)
}
