package sqlstore

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// txKey 事务DB在context中的key
type txKey struct{}

// getDB 从context获取事务DB,如果没有则使用默认DB
// 仓储方法必须通过getDB访问数据库,才能参与TxManager开启的事务
func getDB(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

// isDuplicateError 判断是否为唯一索引冲突错误
// Open开启了TranslateError,三种驱动的冲突都会转换为gorm.ErrDuplicatedKey
func isDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
