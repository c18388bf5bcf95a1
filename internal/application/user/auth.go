package user

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshelf/internal/domain/user"
	"github.com/xiebiao/bookshelf/pkg/jwt"
)

// SessionStore 会话与Token黑名单存储(Redis实现)
// Redis未启用时传nil:登录不记录会话,登出无法吊销Token
type SessionStore interface {
	SaveSession(ctx context.Context, userID uint, data map[string]interface{}, ttl time.Duration) error
	DeleteSession(ctx context.Context, userID uint) error
	AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error
}

// UserView 用户响应DTO(不含密码)
type UserView struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUserView 实体 → 响应DTO
func NewUserView(u *user.User) UserView {
	return UserView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// AuthResponse 注册/登录响应
type AuthResponse struct {
	User         UserView `json:"user"`
	AccessToken  string   `json:"token"`
	RefreshToken string   `json:"refreshToken"`
	ExpiresIn    int64    `json:"expiresIn"`
}

// issuer 签发Token并记录会话,注册和登录共用
type issuer struct {
	jwt      *jwt.Manager
	sessions SessionStore
	log      *zap.Logger
}

func (i issuer) issue(ctx context.Context, u *user.User, clientIP string) (*AuthResponse, error) {
	pair, err := i.jwt.GenerateToken(u.ID, u.Username, u.Role)
	if err != nil {
		return nil, err
	}

	if i.sessions != nil {
		data := map[string]interface{}{
			"user_id":  u.ID,
			"username": u.Username,
			"login_at": time.Now().Unix(),
			"ip":       clientIP,
		}
		// 会话有效期与Access Token一致;保存失败不影响登录
		if err := i.sessions.SaveSession(ctx, u.ID, data, i.jwt.AccessTokenTTL()); err != nil {
			i.log.Warn("save session failed", zap.Uint("user_id", u.ID), zap.Error(err))
		}
	}

	return &AuthResponse{
		User:         NewUserView(u),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

func orNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
