package user

import (
	"context"
)

// Repository 用户仓储接口
// 接口定义在domain层，具体实现在infrastructure/persistence/sqlstore
type Repository interface {
	// Create 创建用户
	// 邮箱或用户名已存在时返回ErrEmailDuplicate / ErrUsernameDuplicate
	Create(ctx context.Context, user *User) error

	// FindByID 根据ID查找用户，不存在返回ErrUserNotFound
	FindByID(ctx context.Context, id uint) (*User, error)

	// FindByEmail 根据邮箱查找用户，不存在返回ErrUserNotFound
	FindByEmail(ctx context.Context, email string) (*User, error)

	// ExistsByUsername 用户名是否已被占用
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// Update 更新用户信息
	Update(ctx context.Context, user *User) error
}
