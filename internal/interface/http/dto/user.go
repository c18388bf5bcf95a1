package dto

import (
	appuser "github.com/xiebiao/bookshelf/internal/application/user"
)

// RegisterRequest 注册请求
// 用户名、邮箱格式由领域服务校验,这里只检查必填和密码长度上限(bcrypt最多72字节)
type RegisterRequest struct {
	Username string `json:"username" binding:"required" example:"reader42"`
	Email    string `json:"email" binding:"required" example:"reader@example.com"`
	Password string `json:"password" binding:"required,max=72" example:"secret123"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"reader@example.com"`
	Password string `json:"password" binding:"required,max=72" example:"secret123"`
}

// RefreshRequest 刷新Token请求
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// UpdateProfileRequest 修改资料请求
// 用户名规则由领域服务校验
type UpdateProfileRequest struct {
	Username string `json:"username" binding:"required" example:"reader_42"`
}

// AuthBody 注册/登录响应
type AuthBody struct {
	Message string `json:"message" example:"Login successful"`
	*appuser.AuthResponse
}

// UserBody 当前用户响应
type UserBody struct {
	User appuser.UserView `json:"user"`
}

// UserMessageBody 带提示信息的用户响应
type UserMessageBody struct {
	Message string           `json:"message" example:"Profile updated successfully"`
	User    appuser.UserView `json:"user"`
}
