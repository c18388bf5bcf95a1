package middleware_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshelf/internal/domain/user"
	"github.com/xiebiao/bookshelf/internal/interface/http/dto"
	"github.com/xiebiao/bookshelf/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/jwt"
	"github.com/xiebiao/bookshelf/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(middleware.ContextKeyRequestID))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	rid := w.Header().Get(middleware.HeaderRequestID)
	assert.Len(t, rid, 36)
	assert.Equal(t, rid, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.HeaderRequestID, "client-id-1")
	w = serve(r, req)
	assert.Equal(t, "client-id-1", w.Header().Get(middleware.HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.HeaderRequestID, strings.Repeat("x", 200))
	w = serve(r, req)
	assert.Len(t, w.Header().Get(middleware.HeaderRequestID), 36)
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RateLimit(1, 2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

func TestRateLimitPerIP(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RateLimitPerIP(1, 1))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	from := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":12345"
		return serve(r, req).Code
	}

	assert.Equal(t, http.StatusNoContent, from("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, from("10.0.0.1"))
	// 其他IP不受影响
	assert.Equal(t, http.StatusNoContent, from("10.0.0.2"))
}

func TestConcurrencyLimit(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})

	r := gin.New()
	r.Use(middleware.ConcurrencyLimit(1))
	r.GET("/slow", func(c *gin.Context) {
		close(entered)
		<-release
		c.Status(http.StatusNoContent)
	})

	done := make(chan int)
	go func() {
		done <- serve(r, httptest.NewRequest(http.MethodGet, "/slow", nil)).Code
	}()
	<-entered

	// 第二个请求排队,请求ctx超时后返回503
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	w := serve(r, httptest.NewRequest(http.MethodGet, "/slow", nil).WithContext(ctx))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "Server busy")

	close(release)
	assert.Equal(t, http.StatusNoContent, <-done)
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Timeout(20 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	r.GET("/fast", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		c.Status(http.StatusNoContent)
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/fast", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestMaxBodyBytes(t *testing.T) {
	r := gin.New()
	r.Use(middleware.MaxBodyBytes(16))
	r.POST("/", func(c *gin.Context) {
		var body struct {
			Title string `json:"title"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			response.Error(c, dto.BindError(err))
			return
		}
		c.Status(http.StatusNoContent)
	})

	w := serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"ok"}`)))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"`+strings.Repeat("x", 64)+`"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "File too large")
}

// =========================================
// 认证中间件
// =========================================

type stubUsers map[uint]*user.User

func (s stubUsers) GetActiveUser(_ context.Context, id uint) (*user.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, apperrors.ErrInvalidToken
	}
	if !u.IsActive {
		return nil, apperrors.ErrAccountInactive
	}
	return u, nil
}

type stubBlacklist struct {
	revoked map[string]bool
	err     error
}

func (s stubBlacklist) IsInBlacklist(_ context.Context, token string) (bool, error) {
	return s.revoked[token], s.err
}

func authEngine(m *middleware.AuthMiddleware) *gin.Engine {
	r := gin.New()
	r.GET("/me", m.RequireAuth(), func(c *gin.Context) {
		req, ok := middleware.CurrentRequester(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": req.ID, "role": req.Role, "token": middleware.CurrentToken(c)})
	})
	return r
}

func withToken(header string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	return req
}

func TestRequireAuth(t *testing.T) {
	manager := jwt.NewManager("mw-secret", time.Hour, 24*time.Hour)
	users := stubUsers{
		1: {ID: 1, Username: "alice", Role: user.RoleAdmin, IsActive: true},
		2: {ID: 2, Username: "bob", Role: user.RoleUser, IsActive: false},
	}

	alice, err := manager.GenerateToken(1, "alice", user.RoleUser)
	require.NoError(t, err)
	bob, err := manager.GenerateToken(2, "bob", user.RoleUser)
	require.NoError(t, err)
	ghost, err := manager.GenerateToken(3, "ghost", user.RoleUser)
	require.NoError(t, err)
	foreign, err := jwt.NewManager("other-secret", time.Hour, time.Hour).GenerateToken(1, "alice", user.RoleUser)
	require.NoError(t, err)

	r := authEngine(middleware.NewAuthMiddleware(manager, stubBlacklist{revoked: map[string]bool{}}, users))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"缺少Token", "", http.StatusUnauthorized},
		{"格式错误", "Token " + alice.AccessToken, http.StatusUnauthorized},
		{"签名错误", "Bearer " + foreign.AccessToken, http.StatusUnauthorized},
		{"Refresh Token不能访问", "Bearer " + alice.RefreshToken, http.StatusUnauthorized},
		{"账号已停用", "Bearer " + bob.AccessToken, http.StatusUnauthorized},
		{"用户不存在", "Bearer " + ghost.AccessToken, http.StatusUnauthorized},
		{"正常", "Bearer " + alice.AccessToken, http.StatusOK},
		{"scheme不区分大小写", "bearer " + alice.AccessToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, withToken(tt.header))
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}

	// 角色以加载到的用户为准
	w := serve(r, withToken("Bearer "+alice.AccessToken))
	assert.Contains(t, w.Body.String(), `"role":"admin"`)
	assert.Contains(t, w.Body.String(), alice.AccessToken)
}

func TestRequireAuth_Blacklist(t *testing.T) {
	manager := jwt.NewManager("mw-secret", time.Hour, 24*time.Hour)
	users := stubUsers{1: {ID: 1, Username: "alice", Role: user.RoleUser, IsActive: true}}
	pair, err := manager.GenerateToken(1, "alice", user.RoleUser)
	require.NoError(t, err)

	revoked := authEngine(middleware.NewAuthMiddleware(manager,
		stubBlacklist{revoked: map[string]bool{pair.AccessToken: true}}, users))
	assert.Equal(t, http.StatusUnauthorized, serve(revoked, withToken("Bearer "+pair.AccessToken)).Code)

	// 黑名单不可用时拒绝请求
	broken := authEngine(middleware.NewAuthMiddleware(manager,
		stubBlacklist{err: apperrors.Wrap(errors.New("connection refused"), "redis down")}, users))
	w := serve(broken, withToken("Bearer "+pair.AccessToken))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body, _ := io.ReadAll(w.Body)
	assert.NotContains(t, string(body), "connection refused")

	// 未启用Redis时不检查黑名单
	open := authEngine(middleware.NewAuthMiddleware(manager, nil, users))
	assert.Equal(t, http.StatusOK, serve(open, withToken("Bearer "+pair.AccessToken)).Code)
}

func TestRequireAdmin(t *testing.T) {
	manager := jwt.NewManager("mw-secret", time.Hour, 24*time.Hour)
	users := stubUsers{
		1: {ID: 1, Username: "root", Role: user.RoleAdmin, IsActive: true},
		2: {ID: 2, Username: "alice", Role: user.RoleUser, IsActive: true},
	}
	m := middleware.NewAuthMiddleware(manager, nil, users)

	r := gin.New()
	r.DELETE("/users/:id", m.RequireAuth(), m.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	// 缺少RequireAuth时按未登录处理
	r.GET("/bare", m.RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	// Token里的role不可信,以数据库角色为准
	root, err := manager.GenerateToken(1, "root", user.RoleUser)
	require.NoError(t, err)
	alice, err := manager.GenerateToken(2, "alice", user.RoleAdmin)
	require.NoError(t, err)

	del := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/users/9", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		return serve(r, req)
	}

	assert.Equal(t, http.StatusNoContent, del(root.AccessToken).Code)

	w := del(alice.AccessToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Admin access required")

	assert.Equal(t, http.StatusUnauthorized, serve(r, httptest.NewRequest(http.MethodGet, "/bare", nil)).Code)
}
