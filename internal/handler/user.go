package handler

import (
	"strconv"

	"madmin/server/internal/auth"
	"madmin/server/internal/logic"
	"madmin/server/internal/svc"
	"madmin/server/internal/types"
	"madmin/server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler 用户处理器
type UserHandler struct {
	userLogic *logic.UserLogic
}

// NewUserHandler 创建用户处理器
func NewUserHandler(svcCtx *svc.ServiceContext) *UserHandler {
	return &UserHandler{userLogic: logic.NewUserLogic(svcCtx)}
}

// List 用户列表
func (h *UserHandler) List(c *fiber.Ctx) error {
	var req types.ListUsersRequest
	if err := c.QueryParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	req.Normalize()

	users, total, err := h.userLogic.List(c.Context(), &req)
	if err != nil {
		return response.Error(c, "获取失败")
	}
	return response.Page(c, users, total, req.Page, req.PageSize)
}

// Get 用户详情
func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.Error(c, "参数错误")
	}
	user, err := h.userLogic.Get(c.Context(), uint(id))
	if err != nil {
		return response.Error(c, err.Error())
	}
	return response.Success(c, user)
}

// Create 创建用户
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req types.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	if req.Username == "" || req.Password == "" {
		return response.Error(c, "用户名和密码不能为空")
	}
	if err := h.userLogic.Create(c.Context(), &req); err != nil {
		return response.Error(c, err.Error())
	}
	return response.Success(c, nil)
}

// Update 更新用户
func (h *UserHandler) Update(c *fiber.Ctx) error {
	var req types.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	if req.ID == 0 {
		return response.Error(c, "参数错误")
	}
	if err := h.userLogic.Update(c.Context(), &req); err != nil {
		return response.Error(c, err.Error())
	}
	return response.Success(c, nil)
}

// Delete 批量删除用户
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	var req struct {
		IDs []uint `json:"ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	if err := h.userLogic.Delete(c.Context(), req.IDs); err != nil {
		return response.Error(c, err.Error())
	}
	return response.Success(c, nil)
}

// Profile 当前用户信息
func (h *UserHandler) Profile(c *fiber.Ctx) error {
	info, err := h.userLogic.Profile(c.Context(), auth.GetUID(c))
	if err != nil {
		return response.Error(c, err.Error())
	}
	return response.Success(c, info)
}

// UpdateProfile 更新个人资料
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var req types.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	if err := h.userLogic.UpdateProfile(c.Context(), auth.GetUID(c), &req); err != nil {
		return response.Error(c, err.Error())
	}
	return response.Success(c, nil)
}

// ChangePassword 修改本人密码
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	var req types.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	if err := h.userLogic.ChangePassword(c.Context(), auth.GetUID(c), &req); err != nil {
		return response.Error(c, err.Error())
	}
	return response.Success(c, nil)
}

// ResetPassword 管理员重置密码
func (h *UserHandler) ResetPassword(c *fiber.Ctx) error {
	var req struct {
		ID       uint   `json:"id" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	if req.ID == 0 || req.Password == "" {
		return response.Error(c, "参数错误")
	}
	if err := h.userLogic.ResetPassword(c.Context(), req.ID, req.Password); err != nil {
		return response.Error(c, err.Error())
	}
	return response.Success(c, nil)
}

// Online 在线用户列表
func (h *UserHandler) Online(c *fiber.Ctx) error {
	list, err := h.userLogic.Online(c.Context(), auth.GetRawToken(c))
	if err != nil {
		return response.Error(c, "获取失败")
	}
	return response.Success(c, list)
}

// Kick 强制下线
func (h *UserHandler) Kick(c *fiber.Ctx) error {
	var req struct {
		TokenID uint `json:"tokenId" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	identity := auth.GetIdentity(c)
	if err := h.userLogic.Kick(c.Context(), identity, req.TokenID); err != nil {
		return response.Error(c, err.Error())
	}
	return response.Success(c, nil)
}
