package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	appuser "github.com/xiebiao/bookshelf/internal/application/user"
	"github.com/xiebiao/bookshelf/internal/interface/http/dto"
	"github.com/xiebiao/bookshelf/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/response"
)

// UserHandler 认证相关HTTP处理器
// Handler只负责解析请求、调用应用层、返回响应
type UserHandler struct {
	register *appuser.RegisterUseCase
	login    *appuser.LoginUseCase
	logout   *appuser.LogoutUseCase
	me       *appuser.MeUseCase
	refresh  *appuser.RefreshTokenUseCase
}

// NewUserHandler 创建用户处理器
func NewUserHandler(
	register *appuser.RegisterUseCase,
	login *appuser.LoginUseCase,
	logout *appuser.LogoutUseCase,
	me *appuser.MeUseCase,
	refresh *appuser.RefreshTokenUseCase,
) *UserHandler {
	return &UserHandler{
		register: register,
		login:    login,
		logout:   logout,
		me:       me,
		refresh:  refresh,
	}
}

// Register 用户注册
// @Summary      用户注册
// @Description  创建普通用户账号,成功后直接返回Token
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "注册信息"
// @Success      201 {object} dto.AuthBody
// @Failure      400 {object} response.ErrorBody "参数错误/邮箱或用户名已存在"
// @Router       /api/auth/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}

	result, err := h.register.Execute(c.Request.Context(), appuser.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.AuthBody{Message: "User registered successfully", AuthResponse: result})
}

// Login 用户登录
// @Summary      用户登录
// @Description  邮箱密码登录,返回Access Token和Refresh Token
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} dto.AuthBody
// @Failure      400 {object} response.ErrorBody "参数错误"
// @Failure      401 {object} response.ErrorBody "邮箱或密码错误/账号已停用"
// @Router       /api/auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}

	result, err := h.login.Execute(c.Request.Context(), appuser.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.AuthBody{Message: "Login successful", AuthResponse: result})
}

// Logout 用户登出
// @Summary      用户登出
// @Description  删除会话并吊销当前Access Token
// @Tags         认证
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.MessageBody
// @Failure      401 {object} response.ErrorBody "未登录"
// @Router       /api/auth/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	r, ok := requester(c)
	if !ok {
		return
	}

	// Token剩余有效期决定黑名单保留时间
	expiresAt := time.Now()
	if claims := middleware.CurrentClaims(c); claims != nil && claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	err := h.logout.Execute(c.Request.Context(), appuser.LogoutRequest{
		UserID:      r.ID,
		AccessToken: middleware.CurrentToken(c),
		ExpiresAt:   expiresAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Logged out successfully")
}

// Me 当前用户
// @Summary      当前用户
// @Tags         认证
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.UserBody
// @Failure      401 {object} response.ErrorBody "未登录"
// @Router       /api/auth/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	r, ok := requester(c)
	if !ok {
		return
	}

	view, err := h.me.Execute(c.Request.Context(), r.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.UserBody{User: *view})
}

// Refresh 刷新Access Token
// @Summary      刷新Token
// @Description  用Refresh Token换取新的Access Token
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.RefreshRequest true "Refresh Token"
// @Success      200 {object} appuser.RefreshResponse
// @Failure      401 {object} response.ErrorBody "Token无效或已过期"
// @Router       /api/auth/refresh [post]
func (h *UserHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 缺少Refresh Token按未认证处理
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	result, err := h.refresh.Execute(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
