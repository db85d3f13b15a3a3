package auth

import (
	"testing"

	"madmin/server/internal/config"
	"madmin/server/internal/model"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

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

func testSecurityConfig() config.SecurityConfig {
	return config.SecurityConfig{
		JwtSecret:     "test-access-secret",
		JwtExpire:     3600,
		RefreshSecret: "test-refresh-secret",
		RefreshExpire: 7200,
	}
}
