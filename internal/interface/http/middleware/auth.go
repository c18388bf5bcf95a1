package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/domain/user"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/jwt"
	"github.com/xiebiao/bookshelf/pkg/response"
)

// Context中的键
const (
	ContextKeyRequester = "requester"
	ContextKeyClaims    = "claims"
	ContextKeyToken     = "token"
)

// TokenBlacklist 已登出Token查询(Redis实现),Redis未启用时为nil
type TokenBlacklist interface {
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// UserLoader 按ID加载未停用的用户
type UserLoader interface {
	GetActiveUser(ctx context.Context, id uint) (*user.User, error)
}

// AuthMiddleware JWT认证中间件
// 设计说明：
// 1. 只接受Access Token,Refresh Token不能直接访问API
// 2. 角色和启用状态以数据库为准,Token里的role只作展示
// 3. 认证成功后把book.Requester注入Context,Handler不再解析Token
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	blacklist  TokenBlacklist
	users      UserLoader
}

// NewAuthMiddleware 创建认证中间件
// blacklist可以为nil(不检查登出状态)
func NewAuthMiddleware(jwtManager *jwt.Manager, blacklist TokenBlacklist, users UserLoader) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		blacklist:  blacklist,
		users:      users,
	}
}

// RequireAuth 要求登录
// 使用方式：
//
//	books.POST("", auth.RequireAuth(), h.AddBook)
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 提取Token,格式：Authorization: Bearer <token>
		tokenString, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			response.Abort(c, err)
			return
		}

		// 2. 验证签名、过期时间和Token类型
		claims, err := m.jwtManager.ParseAccessToken(tokenString)
		if err != nil {
			response.Abort(c, err)
			return
		}

		ctx := c.Request.Context()

		// 3. 已登出的Token
		if m.blacklist != nil {
			revoked, err := m.blacklist.IsInBlacklist(ctx, tokenString)
			if err != nil {
				response.Abort(c, err)
				return
			}
			if revoked {
				response.Abort(c, apperrors.ErrInvalidToken)
				return
			}
		}

		// 4. 用户必须仍然存在且未停用
		u, err := m.users.GetActiveUser(ctx, claims.UserID)
		if err != nil {
			response.Abort(c, err)
			return
		}

		c.Set(ContextKeyRequester, book.Requester{
			ID:       u.ID,
			Username: u.Username,
			Role:     u.Role,
			Active:   u.IsActive,
		})
		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeyToken, tokenString)
		c.Next()
	}
}

// RequireAdmin 要求管理员角色,必须放在RequireAuth之后
//
//	users.DELETE("/:id", auth.RequireAuth(), auth.RequireAdmin(), h.DeleteUser)
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		r, ok := CurrentRequester(c)
		if !ok {
			response.Abort(c, apperrors.ErrUnauthorized)
			return
		}
		if r.Role != user.RoleAdmin {
			response.Abort(c, apperrors.ErrAdminRequired)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", apperrors.ErrUnauthorized
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", apperrors.ErrInvalidToken
	}
	return token, nil
}

// CurrentRequester 当前登录用户(RequireAuth之后可用)
func CurrentRequester(c *gin.Context) (book.Requester, bool) {
	v, ok := c.Get(ContextKeyRequester)
	if !ok {
		return book.Requester{}, false
	}
	r, ok := v.(book.Requester)
	return r, ok
}

// CurrentClaims 当前请求的Token声明
func CurrentClaims(c *gin.Context) *jwt.Claims {
	if v, ok := c.Get(ContextKeyClaims); ok {
		if claims, ok := v.(*jwt.Claims); ok {
			return claims
		}
	}
	return nil
}

// CurrentToken 当前请求的原始Access Token(登出时加入黑名单)
func CurrentToken(c *gin.Context) string {
	return c.GetString(ContextKeyToken)
}
