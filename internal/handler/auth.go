package handler

import (
	"madmin/server/internal/auth"
	"madmin/server/internal/logic"
	"madmin/server/internal/svc"
	"madmin/server/internal/types"
	"madmin/server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	authLogic    *logic.AuthLogic
	captchaLogic *logic.CaptchaLogic
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(svcCtx *svc.ServiceContext) *AuthHandler {
	return &AuthHandler{
		authLogic:    logic.NewAuthLogic(svcCtx),
		captchaLogic: logic.NewCaptchaLogic(svcCtx),
	}
}

// Login 账号密码登录
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req types.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	if req.Username == "" || req.Password == "" {
		return response.Error(c, "用户名和密码不能为空")
	}

	resp, err := h.authLogic.Login(c.Context(), &req, c.IP(), c.Get(fiber.HeaderUserAgent))
	if err != nil {
		return response.Error(c, err.Error())
	}
	return response.Success(c, resp)
}

// Register 用户注册
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req types.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	if err := h.authLogic.Register(c.Context(), &req); err != nil {
		return response.Error(c, err.Error())
	}
	return response.Success(c, nil)
}

// Logout 退出登录
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	identity := auth.GetIdentity(c)
	if identity == nil {
		return response.Unauthorized(c, "")
	}
	if err := h.authLogic.Logout(c.Context(), identity, auth.GetRawToken(c)); err != nil {
		return response.Error(c, err.Error())
	}
	return response.Success(c, nil)
}

// Refresh 刷新令牌
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req types.RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	if req.RefreshToken == "" {
		return response.Error(c, "刷新令牌不能为空")
	}

	resp, err := h.authLogic.RefreshToken(c.Context(), req.RefreshToken)
	if err != nil {
		return response.Error(c, err.Error())
	}
	return response.Success(c, resp)
}

// Captcha 图形验证码
func (h *AuthHandler) Captcha(c *fiber.Ctx) error {
	resp, err := h.captchaLogic.Generate(c.Context())
	if err != nil {
		return response.Error(c, "验证码生成失败")
	}
	return response.Success(c, resp)
}
