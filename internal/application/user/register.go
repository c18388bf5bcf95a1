package user

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshelf/internal/domain/user"
	"github.com/xiebiao/bookshelf/pkg/jwt"
)

// RegisterUseCase 用户注册,成功后直接签发Token(注册即登录)
type RegisterUseCase struct {
	users user.Service
	issuer
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(users user.Service, jwtManager *jwt.Manager, sessions SessionStore, log *zap.Logger) *RegisterUseCase {
	return &RegisterUseCase{
		users:  users,
		issuer: issuer{jwt: jwtManager, sessions: sessions, log: orNop(log)},
	}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string
	Email    string
	Password string
	ClientIP string
}

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	u, err := uc.users.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	uc.log.Info("user registered", zap.Uint("user_id", u.ID), zap.String("username", u.Username))
	return uc.issue(ctx, u, req.ClientIP)
}
