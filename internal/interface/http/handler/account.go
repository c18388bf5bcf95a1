package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appuser "github.com/xiebiao/bookshelf/internal/application/user"
	"github.com/xiebiao/bookshelf/internal/interface/http/dto"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/response"
)

// AccountHandler 用户资料与账号管理
type AccountHandler struct {
	profile    *appuser.UpdateProfileUseCase
	deactivate *appuser.DeactivateUserUseCase
}

// NewAccountHandler 创建处理器
func NewAccountHandler(profile *appuser.UpdateProfileUseCase, deactivate *appuser.DeactivateUserUseCase) *AccountHandler {
	return &AccountHandler{profile: profile, deactivate: deactivate}
}

// UpdateProfile 修改当前用户资料
// @Summary      修改资料
// @Description  修改当前用户的用户名
// @Tags         用户
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.UpdateProfileRequest true "资料"
// @Success      200 {object} dto.UserMessageBody
// @Failure      400 {object} response.ErrorBody "参数错误/用户名已存在"
// @Failure      401 {object} response.ErrorBody "未登录"
// @Router       /api/users/profile [put]
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	r, ok := requester(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}

	view, err := h.profile.Execute(c.Request.Context(), appuser.UpdateProfileRequest{
		UserID:   r.ID,
		Username: req.Username,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.UserMessageBody{Message: "Profile updated successfully", User: *view})
}

// DeleteUser 停用用户(管理员)
// @Summary      删除用户
// @Description  停用账号,该用户的Token立即失效,图书和评论保留
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "用户ID"
// @Success      200 {object} response.MessageBody
// @Failure      400 {object} response.ErrorBody "不能删除自己"
// @Failure      401 {object} response.ErrorBody "未登录"
// @Failure      403 {object} response.ErrorBody "需要管理员权限"
// @Failure      404 {object} response.ErrorBody "用户不存在"
// @Router       /api/users/{id} [delete]
func (h *AccountHandler) DeleteUser(c *gin.Context) {
	r, ok := requester(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, strconv.IntSize)
	if err != nil || id == 0 {
		response.Error(c, apperrors.ErrUserNotFound)
		return
	}

	err = h.deactivate.Execute(c.Request.Context(), appuser.DeactivateUserRequest{
		AdminID:  r.ID,
		TargetID: uint(id),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "User deleted successfully")
}
