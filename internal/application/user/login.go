package user

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshelf/internal/domain/user"
	"github.com/xiebiao/bookshelf/pkg/jwt"
)

// LoginUseCase 用户登录
type LoginUseCase struct {
	users user.Service
	issuer
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(users user.Service, jwtManager *jwt.Manager, sessions SessionStore, log *zap.Logger) *LoginUseCase {
	return &LoginUseCase{
		users:  users,
		issuer: issuer{jwt: jwtManager, sessions: sessions, log: orNop(log)},
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string
	Password string
	ClientIP string
}

// Execute 执行登录
// 邮箱不存在和密码错误返回同一个错误;停用账号返回ErrAccountInactive
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	u, err := uc.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	uc.log.Info("user logged in", zap.Uint("user_id", u.ID), zap.String("ip", req.ClientIP))
	return uc.issue(ctx, u, req.ClientIP)
}

// LogoutUseCase 用户登出
type LogoutUseCase struct {
	sessions SessionStore
	log      *zap.Logger
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(sessions SessionStore, log *zap.Logger) *LogoutUseCase {
	return &LogoutUseCase{sessions: sessions, log: orNop(log)}
}

// LogoutRequest 登出请求
type LogoutRequest struct {
	UserID      uint
	AccessToken string
	ExpiresAt   time.Time // Token过期时间,黑名单只需保留到这个时间
}

// Execute 删除会话并把Access Token加入黑名单
func (uc *LogoutUseCase) Execute(ctx context.Context, req LogoutRequest) error {
	if uc.sessions == nil {
		uc.log.Warn("logout without session store, token stays valid until expiry", zap.Uint("user_id", req.UserID))
		return nil
	}
	if err := uc.sessions.DeleteSession(ctx, req.UserID); err != nil {
		return err
	}
	return uc.sessions.AddToBlacklist(ctx, req.AccessToken, time.Until(req.ExpiresAt))
}

// MeUseCase 当前登录用户信息
type MeUseCase struct {
	users user.Service
}

// NewMeUseCase 创建用例
func NewMeUseCase(users user.Service) *MeUseCase {
	return &MeUseCase{users: users}
}

// Execute 查询当前用户
func (uc *MeUseCase) Execute(ctx context.Context, userID uint) (*UserView, error) {
	u, err := uc.users.GetActiveUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := NewUserView(u)
	return &view, nil
}

// RefreshTokenUseCase 用Refresh Token换取新的Access Token
type RefreshTokenUseCase struct {
	users user.Service
	jwt   *jwt.Manager
}

// NewRefreshTokenUseCase 创建用例
func NewRefreshTokenUseCase(users user.Service, jwtManager *jwt.Manager) *RefreshTokenUseCase {
	return &RefreshTokenUseCase{users: users, jwt: jwtManager}
}

// RefreshResponse 刷新响应
type RefreshResponse struct {
	AccessToken string `json:"token"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// Execute 校验Refresh Token,用户已停用或不存在时拒绝
func (uc *RefreshTokenUseCase) Execute(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	claims, err := uc.jwt.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	u, err := uc.users.GetActiveUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	token, err := uc.jwt.RefreshAccessToken(u.ID, u.Username, u.Role)
	if err != nil {
		return nil, err
	}
	return &RefreshResponse{AccessToken: token, ExpiresIn: int64(uc.jwt.AccessTokenTTL().Seconds())}, nil
}
