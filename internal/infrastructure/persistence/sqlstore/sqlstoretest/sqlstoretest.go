// Package sqlstoretest 提供基于内存sqlite的测试数据库
package sqlstoretest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/sqlstore"
)

// Open 打开迁移好的内存数据库，测试结束自动关闭
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := sqlstore.Open(config.DatabaseConfig{
		Driver:      "sqlite",
		DBName:      ":memory:",
		LogLevel:    "silent",
		AutoMigrate: true,
	}, zap.NewNop())
	require.NoError(t, err)

	t.Cleanup(func() { _ = sqlstore.Close(db) })
	return db
}

// CreateUser 直接写入一个启用的用户
func CreateUser(t testing.TB, db *gorm.DB, username, role string) *sqlstore.UserModel {
	t.Helper()

	u := &sqlstore.UserModel{
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}
