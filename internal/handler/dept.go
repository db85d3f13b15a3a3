package handler

import (
	"strconv"

	"madmin/server/internal/logic"
	"madmin/server/internal/svc"
	"madmin/server/internal/types"
	"madmin/server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DeptHandler 部门处理器
type DeptHandler struct {
	deptLogic *logic.DeptLogic
}

// NewDeptHandler 创建部门处理器
func NewDeptHandler(svcCtx *svc.ServiceContext) *DeptHandler {
	return &DeptHandler{deptLogic: logic.NewDeptLogic(svcCtx)}
}

// Tree 部门树
func (h *DeptHandler) Tree(c *fiber.Ctx) error {
	var req types.ListDeptsRequest
	if err := c.QueryParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	tree, err := h.deptLogic.Tree(c.Context(), &req)
	if err != nil {
		return response.Error(c, "获取失败")
	}
	return response.Success(c, tree)
}

// Create 创建部门
func (h *DeptHandler) Create(c *fiber.Ctx) error {
	var req types.CreateDeptRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	if req.Name == "" {
		return response.Error(c, "部门名称不能为空")
	}
	if err := h.deptLogic.Create(c.Context(), &req); err != nil {
		return response.Error(c, err.Error())
	}
	return response.Success(c, nil)
}

// Update 更新部门
func (h *DeptHandler) Update(c *fiber.Ctx) error {
	var req types.UpdateDeptRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	if req.ID == 0 {
		return response.Error(c, "参数错误")
	}
	if err := h.deptLogic.Update(c.Context(), &req); err != nil {
		return response.Error(c, err.Error())
	}
	return response.Success(c, nil)
}

// Delete 删除部门
func (h *DeptHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.Error(c, "参数错误")
	}
	if err := h.deptLogic.Delete(c.Context(), uint(id)); err != nil {
		return response.Error(c, err.Error())
	}
	return response.Success(c, nil)
}
