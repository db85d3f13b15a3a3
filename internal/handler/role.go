package handler

import (
	"strconv"

	"madmin/server/internal/logic"
	"madmin/server/internal/svc"
	"madmin/server/internal/types"
	"madmin/server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RoleHandler 角色处理器
type RoleHandler struct {
	roleLogic *logic.RoleLogic
}

// NewRoleHandler 创建角色处理器
func NewRoleHandler(svcCtx *svc.ServiceContext) *RoleHandler {
	return &RoleHandler{roleLogic: logic.NewRoleLogic(svcCtx)}
}

// List 角色列表
func (h *RoleHandler) List(c *fiber.Ctx) error {
	var req types.ListRolesRequest
	if err := c.QueryParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	req.Normalize()

	roles, total, err := h.roleLogic.List(c.Context(), &req)
	if err != nil {
		return response.Error(c, "获取失败")
	}
	return response.Page(c, roles, total, req.Page, req.PageSize)
}

// All 全部启用角色
func (h *RoleHandler) All(c *fiber.Ctx) error {
	roles, err := h.roleLogic.All(c.Context())
	if err != nil {
		return response.Error(c, "获取失败")
	}
	return response.Success(c, roles)
}

// Get 角色详情
func (h *RoleHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.Error(c, "参数错误")
	}
	role, err := h.roleLogic.Get(c.Context(), uint(id))
	if err != nil {
		return response.Error(c, err.Error())
	}
	return response.Success(c, role)
}

// Create 创建角色
func (h *RoleHandler) Create(c *fiber.Ctx) error {
	var req types.CreateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	if req.Name == "" || req.Value == "" {
		return response.Error(c, "角色名称和标识不能为空")
	}
	if err := h.roleLogic.Create(c.Context(), &req); err != nil {
		return response.Error(c, err.Error())
	}
	return response.Success(c, nil)
}

// Update 更新角色
func (h *RoleHandler) Update(c *fiber.Ctx) error {
	var req types.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	if req.ID == 0 {
		return response.Error(c, "参数错误")
	}
	if err := h.roleLogic.Update(c.Context(), &req); err != nil {
		return response.Error(c, err.Error())
	}
	return response.Success(c, nil)
}

// Delete 批量删除角色
func (h *RoleHandler) Delete(c *fiber.Ctx) error {
	var req struct {
		IDs []uint `json:"ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	if err := h.roleLogic.Delete(c.Context(), req.IDs); err != nil {
		return response.Error(c, err.Error())
	}
	return response.Success(c, nil)
}
