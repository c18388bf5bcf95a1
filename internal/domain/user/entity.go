package user

import (
	"strings"
	"time"
)

// 角色
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User 用户实体（聚合根）
// DDD设计说明：
// 1. 密码已加密存储（bcrypt），不对外暴露
// 2. 管理员角色只能在数据库中设置，注册用户一律为user
// 3. IsActive=false的账号不能登录，已签发的Token也会在认证中间件被拒绝
type User struct {
	ID        uint
	Username  string
	Email     string
	Password  string // bcrypt哈希值
	Role      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码
func NewUser(username, email, hashedPassword string) *User {
	now := time.Now()
	return &User{
		Username:  strings.TrimSpace(username),
		Email:     normalizeEmail(email),
		Password:  hashedPassword,
		Role:      RoleUser,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAdmin 是否为管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Deactivate 停用账号（领域行为）
func (u *User) Deactivate() {
	u.IsActive = false
	u.UpdatedAt = time.Now()
}

// Rename 修改用户名
func (u *User) Rename(username string) {
	u.Username = strings.TrimSpace(username)
	u.UpdatedAt = time.Now()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
