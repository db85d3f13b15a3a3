package handler

import (
	"madmin/server/internal/logic"
	"madmin/server/internal/svc"
	"madmin/server/internal/types"
	"madmin/server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LogHandler 日志处理器
type LogHandler struct {
	logLogic *logic.LogLogic
}

// NewLogHandler 创建日志处理器
func NewLogHandler(svcCtx *svc.ServiceContext) *LogHandler {
	return &LogHandler{logLogic: logic.NewLogLogic(svcCtx)}
}

// LoginLogs 登录日志列表
func (h *LogHandler) LoginLogs(c *fiber.Ctx) error {
	var req types.ListLoginLogsRequest
	if err := c.QueryParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	req.Normalize()

	logs, total, err := h.logLogic.LoginLogs(c.Context(), &req)
	if err != nil {
		return response.Error(c, "获取失败")
	}
	return response.Page(c, logs, total, req.Page, req.PageSize)
}

// OperationLogs 操作日志列表
func (h *LogHandler) OperationLogs(c *fiber.Ctx) error {
	var req types.ListOperationLogsRequest
	if err := c.QueryParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	req.Normalize()

	logs, total, err := h.logLogic.OperationLogs(c.Context(), &req)
	if err != nil {
		return response.Error(c, "获取失败")
	}
	return response.Page(c, logs, total, req.Page, req.PageSize)
}
