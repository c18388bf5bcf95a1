package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	categoriesKey    = "catalog:categories"
	categoriesGenKey = "catalog:categories:gen"

	// 合并后的回源不跟随任何单个调用方的ctx，单独设置超时
	categoriesLoadTimeout = 10 * time.Second
)

var errStaleGeneration = errors.New("categories generation changed")

// CategoryCache 分类列表缓存
// 1. 读：Redis命中直接返回，未命中时singleflight合并并发回源
// 2. 写：图书新增/修改/下架后递增版本号并删除缓存
// 3. 回源前记录版本号，写回时版本号已变化则放弃写回，避免旧数据覆盖失效
// 4. Redis不可用时直接回源，只记录日志，不影响请求
type CategoryCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
	group  singleflight.Group
}

// NewCategoryCache 创建分类缓存
func NewCategoryCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *CategoryCache {
	return &CategoryCache{client: client, ttl: ttl, log: log.Named("category_cache")}
}

// GetOrLoad 读缓存，未命中调用load回源并写回
// 调用方ctx取消只影响自己，已合并进来的其他调用方照常拿到结果
func (c *CategoryCache) GetOrLoad(ctx context.Context, load func(ctx context.Context) ([]string, error)) ([]string, error) {
	ch := c.group.DoChan(categoriesKey, func() (interface{}, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), categoriesLoadTimeout)
		defer cancel()
		return c.load(sctx, load)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.([]string), nil
	}
}

func (c *CategoryCache) load(ctx context.Context, load func(ctx context.Context) ([]string, error)) ([]string, error) {
	raw, err := c.client.Get(ctx, categoriesKey).Bytes()
	switch {
	case err == nil:
		var categories []string
		if jsonErr := json.Unmarshal(raw, &categories); jsonErr == nil {
			return categories, nil
		}
		c.log.Warn("corrupted categories cache, reloading")
	case !errors.Is(err, redis.Nil):
		c.log.Warn("read categories cache failed", zap.Error(err))
	}

	gen, genErr := generation(ctx, c.client)
	if genErr != nil {
		c.log.Warn("read categories generation failed", zap.Error(genErr))
	}

	categories, err := load(ctx)
	if err != nil {
		return nil, err
	}

	// 拿不到版本号就不写回，下次请求继续回源
	if genErr == nil {
		c.store(ctx, gen, categories)
	}
	return categories, nil
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// generation 读取版本号，不存在视为0
func generation(ctx context.Context, g getter) (int64, error) {
	gen, err := g.Get(ctx, categoriesGenKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// store 仅当版本号仍为gen时写回缓存
// WATCH版本号，期间有Invalidate则EXEC失败
func (c *CategoryCache) store(ctx context.Context, gen int64, categories []string) {
	data, err := json.Marshal(categories)
	if err != nil {
		return
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := generation(ctx, tx)
		if err != nil {
			return err
		}
		if cur != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, categoriesKey, data, c.ttl)
			return nil
		})
		return err
	}, categoriesGenKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		c.log.Debug("categories changed during load, skip caching")
	default:
		c.log.Warn("write categories cache failed", zap.Error(err))
	}
}

// Invalidate 递增版本号并删除缓存，失败只记录日志（ttl兜底）
func (c *CategoryCache) Invalidate(ctx context.Context) {
	c.group.Forget(categoriesKey)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, categoriesGenKey)
		pipe.Del(ctx, categoriesKey)
		return nil
	})
	if err != nil {
		c.log.Warn("invalidate categories cache failed", zap.Error(err))
	}
}
