package user

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshelf/internal/domain/user"
)

// UpdateProfileUseCase 修改当前用户资料
type UpdateProfileUseCase struct {
	users user.Service
	log   *zap.Logger
}

// NewUpdateProfileUseCase 创建用例
func NewUpdateProfileUseCase(users user.Service, log *zap.Logger) *UpdateProfileUseCase {
	return &UpdateProfileUseCase{users: users, log: orNop(log)}
}

// UpdateProfileRequest 修改资料请求
type UpdateProfileRequest struct {
	UserID   uint
	Username string
}

// Execute 修改用户名
// 已签发Token里的username不会变,认证中间件以数据库为准
func (uc *UpdateProfileUseCase) Execute(ctx context.Context, req UpdateProfileRequest) (*UserView, error) {
	u, err := uc.users.UpdateProfile(ctx, req.UserID, req.Username)
	if err != nil {
		return nil, err
	}
	uc.log.Info("profile updated", zap.Uint("user_id", u.ID), zap.String("username", u.Username))
	view := NewUserView(u)
	return &view, nil
}

// DeactivateUserUseCase 管理员停用用户
type DeactivateUserUseCase struct {
	users    user.Service
	sessions SessionStore
	log      *zap.Logger
}

// NewDeactivateUserUseCase 创建用例,sessions可以为nil
func NewDeactivateUserUseCase(users user.Service, sessions SessionStore, log *zap.Logger) *DeactivateUserUseCase {
	return &DeactivateUserUseCase{users: users, sessions: sessions, log: orNop(log)}
}

// DeactivateUserRequest 停用请求
type DeactivateUserRequest struct {
	AdminID  uint
	TargetID uint
}

// Execute 停用账号并删除会话
// 停用后该用户已签发的Token在认证中间件被拒绝,不需要逐个加入黑名单
func (uc *DeactivateUserUseCase) Execute(ctx context.Context, req DeactivateUserRequest) error {
	u, err := uc.users.Deactivate(ctx, req.AdminID, req.TargetID)
	if err != nil {
		return err
	}

	if uc.sessions != nil {
		if err := uc.sessions.DeleteSession(ctx, u.ID); err != nil {
			uc.log.Warn("delete session failed", zap.Uint("user_id", u.ID), zap.Error(err))
		}
	}
	uc.log.Info("user deactivated", zap.Uint("user_id", u.ID), zap.Uint("by", req.AdminID))
	return nil
}
