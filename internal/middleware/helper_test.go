package middleware

import (
	"context"
	"io"
	"net/http"
	"testing"

	"madmin/server/internal/auth"
	"madmin/server/internal/config"
	"madmin/server/internal/model"
	"madmin/server/pkg/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func testCtx() context.Context {
	return context.Background()
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Role{},
		&model.Menu{},
		&model.AccessToken{},
		&model.RefreshToken{},
		&model.OperationLog{},
		&model.UserRole{},
		&model.RoleMenu{},
	))
	return db
}

func newTestRedis(t *testing.T) *goredis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func newTestDeps(t *testing.T) (Deps, *gorm.DB, *goredis.Client) {
	t.Helper()
	db := newTestDB(t)
	rdb := newTestRedis(t)
	cfg := config.SecurityConfig{
		JwtSecret:     "test-access-secret",
		JwtExpire:     3600,
		RefreshSecret: "test-refresh-secret",
		RefreshExpire: 7200,
	}
	perm, err := auth.NewPermissionService(db, rdb)
	require.NoError(t, err)
	t.Cleanup(perm.Close)
	return Deps{
		Token:     auth.NewTokenService(cfg, db, rdb),
		Blacklist: auth.NewBlacklist(rdb),
		Perm:      perm,
	}, db, rdb
}

// seedUser 创建一个绑定普通角色与指定权限的用户
func seedUser(t *testing.T, db *gorm.DB, perms ...string) *model.User {
	t.Helper()
	role := &model.Role{Name: "tester-" + utils.RandomString(6), Value: utils.RandomString(8), Status: 1}
	require.NoError(t, db.Create(role).Error)

	user := &model.User{Username: "u-" + utils.RandomString(6), Password: "x", Salt: "s", Status: 1}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&model.UserRole{UserID: user.ID, RoleID: role.ID}).Error)

	for _, p := range perms {
		menu := &model.Menu{Name: p, Type: model.MenuTypeButton, Status: 1, Permission: p}
		require.NoError(t, db.Create(menu).Error)
		require.NoError(t, db.Create(&model.RoleMenu{RoleID: role.ID, MenuID: menu.ID}).Error)
	}
	return user
}

// login 为用户签发令牌并初始化密码版本
func login(t *testing.T, deps Deps, uid uint, roles []uint) string {
	t.Helper()
	ctx := testCtx()
	require.NoError(t, deps.Token.ResetPV(ctx, uid))
	pair, err := deps.Token.GenerateTokenPair(ctx, uid, model.InitialPasswordVersion, roles, "127.0.0.1", "test")
	require.NoError(t, err)
	return pair.AccessToken
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (int, string) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}
