package middleware

import (
	"strings"

	"madmin/server/internal/auth"
	"madmin/server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RouteMeta 路由的访问控制元数据，注册路由时声明
type RouteMeta struct {
	Public    bool     // 白名单路由，跳过认证与鉴权
	AllowAnon bool     // 需要认证但跳过权限校验
	Perms     []string // 所需权限标识，命中任一即放行
}

// Deps 守卫依赖
type Deps struct {
	Token     *auth.TokenService
	Blacklist *auth.Blacklist
	Perm      *auth.PermissionService
}

// extractToken 从Authorization头取Bearer令牌；SSE请求允许经query传递
func extractToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header != "" {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if strings.Contains(c.Get(fiber.HeaderAccept), "text/event-stream") {
		return c.Query("token")
	}
	return ""
}

// TokenGuard 认证守卫：校验令牌签名、黑名单、密码版本与登录记录
func TokenGuard(deps Deps, meta RouteMeta) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if meta.Public {
			return c.Next()
		}

		token := extractToken(c)
		if token == "" {
			return response.Unauthorized(c, "请先登录")
		}

		// 已拉黑的令牌直接拒绝
		blacklisted, err := deps.Blacklist.Contains(c.Context(), token)
		if err != nil {
			return response.ServerError(c, "")
		}
		if blacklisted {
			return response.Unauthorized(c, "登录已失效，请重新登录")
		}

		identity, err := deps.Token.ParseAccess(token)
		if err != nil {
			return response.Unauthorized(c, "登录已过期，请重新登录")
		}

		// 密码版本不一致说明改密后的旧令牌
		pv, err := deps.Token.GetPV(c.Context(), identity.UID)
		if err != nil {
			return response.ServerError(c, "")
		}
		if pv != identity.PV {
			return response.Unauthorized(c, "登录状态已失效，请重新登录")
		}

		// 登录记录被移除(登出/强制下线)后令牌作废
		exists, err := deps.Token.Exists(c.Context(), token)
		if err != nil {
			return response.ServerError(c, "")
		}
		if !exists {
			return response.Unauthorized(c, "登录已失效，请重新登录")
		}

		auth.SetIdentity(c, identity, token)
		return c.Next()
	}
}

// RBACGuard 鉴权守卫：按路由声明的权限标识校验，超级管理员直通
func RBACGuard(deps Deps, meta RouteMeta) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if meta.Public {
			return c.Next()
		}

		identity := auth.GetIdentity(c)
		if identity == nil {
			return response.Unauthorized(c, "请先登录")
		}

		if meta.AllowAnon || len(meta.Perms) == 0 {
			return c.Next()
		}

		if auth.IsAdmin(identity.Roles) {
			return c.Next()
		}

		perms, err := deps.Perm.CachedPermissions(c.Context(), identity.UID)
		if err != nil {
			return response.ServerError(c, "权限校验失败")
		}
		owned := make(map[string]struct{}, len(perms))
		for _, p := range perms {
			owned[p] = struct{}{}
		}
		for _, need := range meta.Perms {
			if _, ok := owned[need]; ok {
				return c.Next()
			}
		}
		return response.Forbidden(c, "没有操作权限")
	}
}

// Guards 组合认证与鉴权守卫
func Guards(deps Deps, meta RouteMeta) []fiber.Handler {
	return []fiber.Handler{TokenGuard(deps, meta), RBACGuard(deps, meta)}
}
