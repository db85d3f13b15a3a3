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

// MenuHandler 菜单处理器
type MenuHandler struct {
	menuLogic *logic.MenuLogic
}

// NewMenuHandler 创建菜单处理器
func NewMenuHandler(svcCtx *svc.ServiceContext) *MenuHandler {
	return &MenuHandler{menuLogic: logic.NewMenuLogic(svcCtx)}
}

// List 菜单列表
func (h *MenuHandler) List(c *fiber.Ctx) error {
	var req types.ListMenusRequest
	if err := c.QueryParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	menus, err := h.menuLogic.List(c.Context(), &req)
	if err != nil {
		return response.Error(c, "获取失败")
	}
	return response.Success(c, menus)
}

// Tree 菜单树
func (h *MenuHandler) Tree(c *fiber.Ctx) error {
	tree, err := h.menuLogic.Tree(c.Context())
	if err != nil {
		return response.Error(c, "获取失败")
	}
	return response.Success(c, tree)
}

// Routes 当前用户的前端路由
func (h *MenuHandler) Routes(c *fiber.Ctx) error {
	routes, err := h.menuLogic.UserRoutes(c.Context(), auth.GetUID(c))
	if err != nil {
		return response.Error(c, "获取失败")
	}
	return response.Success(c, routes)
}

// Permissions 全部权限标识
func (h *MenuHandler) Permissions(c *fiber.Ctx) error {
	return response.Success(c, h.menuLogic.Permissions())
}

// Create 创建菜单
func (h *MenuHandler) Create(c *fiber.Ctx) error {
	var req types.CreateMenuRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	if req.Name == "" {
		return response.Error(c, "菜单名称不能为空")
	}
	if err := h.menuLogic.Create(c.Context(), &req); err != nil {
		return response.Error(c, err.Error())
	}
	return response.Success(c, nil)
}

// Update 更新菜单
func (h *MenuHandler) Update(c *fiber.Ctx) error {
	var req types.UpdateMenuRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	if req.ID == 0 {
		return response.Error(c, "参数错误")
	}
	if err := h.menuLogic.Update(c.Context(), &req); err != nil {
		return response.Error(c, err.Error())
	}
	return response.Success(c, nil)
}

// Delete 删除菜单
func (h *MenuHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.Error(c, "参数错误")
	}
	if err := h.menuLogic.Delete(c.Context(), uint(id)); err != nil {
		return response.Error(c, err.Error())
	}
	return response.Success(c, nil)
}
