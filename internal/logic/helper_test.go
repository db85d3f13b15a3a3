package logic

import (
	"context"
	"testing"

	"madmin/server/internal/config"
	"madmin/server/internal/model"
	"madmin/server/internal/svc"
	"madmin/server/pkg/utils"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func testCtx() context.Context {
	return context.Background()
}

func newTestSvc(t *testing.T) *svc.ServiceContext {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Role{},
		&model.Menu{},
		&model.Dept{},
		&model.AccessToken{},
		&model.RefreshToken{},
		&model.LoginLog{},
		&model.OperationLog{},
		&model.UserRole{},
		&model.RoleMenu{},
	))

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{
		Security: config.SecurityConfig{
			JwtSecret:        "test-access-secret",
			JwtExpire:        3600,
			RefreshSecret:    "test-refresh-secret",
			RefreshExpire:    7200,
			MultiDeviceLogin: true,
		},
	}

	svcCtx, err := svc.NewServiceContext(cfg, db, rdb)
	require.NoError(t, err)
	t.Cleanup(svcCtx.Close)
	return svcCtx
}

// createUser 直接写入一个启用用户，返回明文密码
func createUser(t *testing.T, svcCtx *svc.ServiceContext, username string, roleIDs ...uint) (*model.User, string) {
	t.Helper()
	password := "secret123"
	salt := utils.RandomSalt()
	user := &model.User{
		Username: username,
		Password: utils.EncodePassword(password, salt),
		Salt:     salt,
		Nickname: username,
		Status:   1,
	}
	require.NoError(t, svcCtx.DB.Create(user).Error)
	for _, rid := range roleIDs {
		require.NoError(t, svcCtx.DB.Create(&model.UserRole{UserID: user.ID, RoleID: rid}).Error)
	}
	return user, password
}

func createRole(t *testing.T, svcCtx *svc.ServiceContext, name string) *model.Role {
	t.Helper()
	role := &model.Role{Name: name, Value: name, Status: 1}
	require.NoError(t, svcCtx.DB.Create(role).Error)
	return role
}
