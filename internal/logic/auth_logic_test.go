package logic

import (
	"testing"

	"madmin/server/internal/model"
	"madmin/server/internal/types"
	"madmin/server/pkg/cachekey"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginSuccess(t *testing.T) {
	svcCtx := newTestSvc(t)
	l := NewAuthLogic(svcCtx)
	role := createRole(t, svcCtx, "op")
	user, password := createUser(t, svcCtx, "alice", role.ID)

	resp, err := l.Login(testCtx(), &types.LoginRequest{Username: "alice", Password: password}, "127.0.0.1", "ua")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	// 密码版本重置为初始值
	pv, err := svcCtx.Token.GetPV(testCtx(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(model.InitialPasswordVersion), pv)

	// 身份载荷携带角色
	identity, err := svcCtx.Token.ParseAccess(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UID)
	assert.Equal(t, []uint{role.ID}, identity.Roles)

	// 权限缓存已预热
	n, err := svcCtx.RDB.Exists(testCtx(), cachekey.AuthPerm(user.ID)).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestLoginIndistinguishableFailures(t *testing.T) {
	svcCtx := newTestSvc(t)
	l := NewAuthLogic(svcCtx)
	createUser(t, svcCtx, "bob")

	// 用户不存在与密码错误必须返回同一提示
	_, errUnknown := l.Login(testCtx(), &types.LoginRequest{Username: "nobody", Password: "x"}, "", "")
	_, errBadPass := l.Login(testCtx(), &types.LoginRequest{Username: "bob", Password: "wrong"}, "", "")
	require.Error(t, errUnknown)
	require.Error(t, errBadPass)
	assert.Equal(t, errUnknown.Error(), errBadPass.Error())
}

func TestLoginDisabledAccount(t *testing.T) {
	svcCtx := newTestSvc(t)
	l := NewAuthLogic(svcCtx)
	user, password := createUser(t, svcCtx, "carol")
	require.NoError(t, svcCtx.DB.Model(user).Update("status", 0).Error)

	_, err := l.Login(testCtx(), &types.LoginRequest{Username: "carol", Password: password}, "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "禁用")
}

func TestLoginSingleDeviceKicksPrevious(t *testing.T) {
	svcCtx := newTestSvc(t)
	svcCtx.Config.Security.MultiDeviceLogin = false
	l := NewAuthLogic(svcCtx)
	user, password := createUser(t, svcCtx, "dave")

	first, err := l.Login(testCtx(), &types.LoginRequest{Username: "dave", Password: password}, "", "")
	require.NoError(t, err)
	second, err := l.Login(testCtx(), &types.LoginRequest{Username: "dave", Password: password}, "", "")
	require.NoError(t, err)

	// 旧令牌被拉黑且记录被清除
	blacklisted, err := svcCtx.Blacklist.Contains(testCtx(), first.AccessToken)
	require.NoError(t, err)
	assert.True(t, blacklisted)

	exists, err := svcCtx.Token.Exists(testCtx(), first.AccessToken)
	require.NoError(t, err)
	assert.False(t, exists)

	// 新令牌有效
	exists, err = svcCtx.Token.Exists(testCtx(), second.AccessToken)
	require.NoError(t, err)
	assert.True(t, exists)

	records, err := svcCtx.Token.ListForUser(testCtx(), user.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestLogoutSingleDevice(t *testing.T) {
	svcCtx := newTestSvc(t)
	l := NewAuthLogic(svcCtx)
	user, password := createUser(t, svcCtx, "erin")

	// 多端模式下登出只下线当前会话
	first, err := l.Login(testCtx(), &types.LoginRequest{Username: "erin", Password: password}, "", "")
	require.NoError(t, err)
	second, err := l.Login(testCtx(), &types.LoginRequest{Username: "erin", Password: password}, "", "")
	require.NoError(t, err)

	identity, err := svcCtx.Token.ParseAccess(first.AccessToken)
	require.NoError(t, err)
	require.NoError(t, l.Logout(testCtx(), identity, first.AccessToken))

	blacklisted, err := svcCtx.Blacklist.Contains(testCtx(), first.AccessToken)
	require.NoError(t, err)
	assert.True(t, blacklisted)

	exists, err := svcCtx.Token.Exists(testCtx(), second.AccessToken)
	require.NoError(t, err)
	assert.True(t, exists)

	records, err := svcCtx.Token.ListForUser(testCtx(), user.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestLogoutAllDevicesWhenSingleDeviceMode(t *testing.T) {
	svcCtx := newTestSvc(t)
	l := NewAuthLogic(svcCtx)
	user, password := createUser(t, svcCtx, "frank")

	resp, err := l.Login(testCtx(), &types.LoginRequest{Username: "frank", Password: password}, "", "")
	require.NoError(t, err)

	svcCtx.Config.Security.MultiDeviceLogin = false
	identity, err := svcCtx.Token.ParseAccess(resp.AccessToken)
	require.NoError(t, err)
	require.NoError(t, l.Logout(testCtx(), identity, resp.AccessToken))

	records, err := svcCtx.Token.ListForUser(testCtx(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, records)

	// 权限缓存与密码版本键一并清除
	n, err := svcCtx.RDB.Exists(testCtx(),
		cachekey.AuthPerm(user.ID), cachekey.AuthPV(user.ID)).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRefreshTokenRotates(t *testing.T) {
	svcCtx := newTestSvc(t)
	l := NewAuthLogic(svcCtx)
	_, password := createUser(t, svcCtx, "grace")

	resp, err := l.Login(testCtx(), &types.LoginRequest{Username: "grace", Password: password}, "", "")
	require.NoError(t, err)

	rotated, err := l.RefreshToken(testCtx(), resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, resp.AccessToken, rotated.AccessToken)
	assert.NotEqual(t, resp.RefreshToken, rotated.RefreshToken)

	// 旧访问令牌作废，旧刷新令牌不能复用
	exists, err := svcCtx.Token.Exists(testCtx(), resp.AccessToken)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = l.RefreshToken(testCtx(), resp.RefreshToken)
	require.Error(t, err)
}

func TestRefreshTokenRejectsGarbage(t *testing.T) {
	svcCtx := newTestSvc(t)
	l := NewAuthLogic(svcCtx)

	_, err := l.RefreshToken(testCtx(), "garbage")
	require.Error(t, err)
}

func TestRegisterBindsDefaultRole(t *testing.T) {
	svcCtx := newTestSvc(t)
	l := NewAuthLogic(svcCtx)

	defaultRole := &model.Role{Name: "注册用户", Value: "member", Default: true, Status: 1}
	require.NoError(t, svcCtx.DB.Create(defaultRole).Error)

	err := l.Register(testCtx(), &types.RegisterRequest{
		Username:        "newbie",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	})
	require.NoError(t, err)

	var user model.User
	require.NoError(t, svcCtx.DB.Preload("Roles").Where("username = ?", "newbie").First(&user).Error)
	require.Len(t, user.Roles, 1)
	assert.Equal(t, "member", user.Roles[0].Value)

	// 密码不落明文
	assert.NotEqual(t, "secret123", user.Password)
	assert.Len(t, user.Salt, 32)
}

func TestRegisterRejectsMismatchedPasswords(t *testing.T) {
	svcCtx := newTestSvc(t)
	l := NewAuthLogic(svcCtx)

	err := l.Register(testCtx(), &types.RegisterRequest{
		Username:        "newbie",
		Password:        "secret123",
		ConfirmPassword: "different",
	})
	require.Error(t, err)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	svcCtx := newTestSvc(t)
	l := NewAuthLogic(svcCtx)
	createUser(t, svcCtx, "taken")

	err := l.Register(testCtx(), &types.RegisterRequest{
		Username:        "taken",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "已存在")
}
