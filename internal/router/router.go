package router

import (
	"madmin/server/internal/handler"
	"madmin/server/internal/middleware"
	"madmin/server/internal/svc"
	commonMiddleware "madmin/server/pkg/middleware"

	"github.com/gofiber/fiber/v2"
)

// Setup 注册全部路由
func Setup(app *fiber.App, svcCtx *svc.ServiceContext) {
	deps := middleware.Deps{
		Token:     svcCtx.Token,
		Blacklist: svcCtx.Blacklist,
		Perm:      svcCtx.Perm,
	}

	// guarded 声明路由所需权限，登记到注册表并返回守卫链+处理器
	guarded := func(h fiber.Handler, perms ...string) []fiber.Handler {
		svcCtx.Registry.Add(perms...)
		chain := middleware.Guards(deps, middleware.RouteMeta{Perms: perms})
		return append(chain, h)
	}
	// authed 仅要求登录，不校验权限
	authed := func(h fiber.Handler) []fiber.Handler {
		chain := middleware.Guards(deps, middleware.RouteMeta{AllowAnon: true})
		return append(chain, h)
	}

	idem := middleware.Idempotency(svcCtx.RDB, middleware.IdempotencyOption{})
	// guardedIdem 带幂等保护的写操作路由
	guardedIdem := func(h fiber.Handler, perms ...string) []fiber.Handler {
		svcCtx.Registry.Add(perms...)
		chain := middleware.Guards(deps, middleware.RouteMeta{Perms: perms})
		return append(append(chain, idem), h)
	}

	// 全局中间件
	app.Use(
		commonMiddleware.CORS(),
		commonMiddleware.RequestID(),
		commonMiddleware.Logger(),
		commonMiddleware.Recover(),
	)

	prefix := svcCtx.Config.Server.Prefix
	if prefix == "" {
		prefix = "/api"
	}
	api := app.Group(prefix, middleware.OperationLog(svcCtx.DB))

	authHandler := handler.NewAuthHandler(svcCtx)
	userHandler := handler.NewUserHandler(svcCtx)
	roleHandler := handler.NewRoleHandler(svcCtx)
	menuHandler := handler.NewMenuHandler(svcCtx)
	deptHandler := handler.NewDeptHandler(svcCtx)
	logHandler := handler.NewLogHandler(svcCtx)

	// ========== 白名单路由 ==========
	pub := api.Group("/auth")
	pub.Post("/login", authHandler.Login)
	pub.Get("/captcha/img", authHandler.Captcha)
	pub.Post("/register", idem, authHandler.Register)
	pub.Post("/refresh", authHandler.Refresh)

	// ========== 账号相关 ==========
	api.Post("/auth/logout", authed(authHandler.Logout)...)

	account := api.Group("/account")
	account.Get("/profile", authed(userHandler.Profile)...)
	account.Put("/profile", authed(userHandler.UpdateProfile)...)
	account.Post("/password", authed(userHandler.ChangePassword)...)
	account.Get("/menus", authed(menuHandler.Routes)...)

	// ========== 系统管理 ==========
	sys := api.Group("/system")

	// 用户管理
	u := sys.Group("/users")
	u.Get("", guarded(userHandler.List, "system:user:list")...)
	u.Get("/:id", guarded(userHandler.Get, "system:user:read")...)
	u.Post("", guardedIdem(userHandler.Create, "system:user:create")...)
	u.Put("", guarded(userHandler.Update, "system:user:update")...)
	u.Delete("", guarded(userHandler.Delete, "system:user:delete")...)
	u.Post("/reset-password", guarded(userHandler.ResetPassword, "system:user:password")...)

	// 在线用户
	online := sys.Group("/online")
	online.Get("", guarded(userHandler.Online, "system:online:list")...)
	online.Post("/kick", guarded(userHandler.Kick, "system:online:kick")...)

	// 角色管理
	r := sys.Group("/roles")
	r.Get("", guarded(roleHandler.List, "system:role:list")...)
	r.Get("/all", authed(roleHandler.All)...)
	r.Get("/:id", guarded(roleHandler.Get, "system:role:read")...)
	r.Post("", guardedIdem(roleHandler.Create, "system:role:create")...)
	r.Put("", guarded(roleHandler.Update, "system:role:update")...)
	r.Delete("", guarded(roleHandler.Delete, "system:role:delete")...)

	// 菜单管理
	m := sys.Group("/menus")
	m.Get("", guarded(menuHandler.List, "system:menu:list")...)
	m.Get("/tree", guarded(menuHandler.Tree, "system:menu:list")...)
	m.Get("/permissions", guarded(menuHandler.Permissions, "system:menu:list")...)
	m.Post("", guardedIdem(menuHandler.Create, "system:menu:create")...)
	m.Put("", guarded(menuHandler.Update, "system:menu:update")...)
	m.Delete("/:id", guarded(menuHandler.Delete, "system:menu:delete")...)

	// 部门管理
	d := sys.Group("/depts")
	d.Get("/tree", guarded(deptHandler.Tree, "system:dept:list")...)
	d.Post("", guardedIdem(deptHandler.Create, "system:dept:create")...)
	d.Put("", guarded(deptHandler.Update, "system:dept:update")...)
	d.Delete("/:id", guarded(deptHandler.Delete, "system:dept:delete")...)

	// 日志查询
	lg := sys.Group("/logs")
	lg.Get("/login", guarded(logHandler.LoginLogs, "system:log:login")...)
	lg.Get("/operation", guarded(logHandler.OperationLogs, "system:log:operation")...)
}
