package logic

import (
	"testing"

	"madmin/server/internal/auth"
	"madmin/server/internal/model"
	"madmin/server/internal/types"
	"madmin/server/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCreateHashesPassword(t *testing.T) {
	svcCtx := newTestSvc(t)
	l := NewUserLogic(svcCtx)
	role := createRole(t, svcCtx, "op")

	err := l.Create(testCtx(), &types.CreateUserRequest{
		Username: "alice",
		Password: "secret123",
		RoleIDs:  []uint{role.ID},
		Status:   1,
	})
	require.NoError(t, err)

	var user model.User
	require.NoError(t, svcCtx.DB.Preload("Roles").Where("username = ?", "alice").First(&user).Error)
	assert.Len(t, user.Salt, 32)
	assert.Equal(t, utils.EncodePassword("secret123", user.Salt), user.Password)
	require.Len(t, user.Roles, 1)
	assert.Equal(t, role.ID, user.Roles[0].ID)
}

func TestUserCreateDuplicateUsername(t *testing.T) {
	svcCtx := newTestSvc(t)
	l := NewUserLogic(svcCtx)
	createUser(t, svcCtx, "bob")

	err := l.Create(testCtx(), &types.CreateUserRequest{Username: "bob", Password: "x"})
	require.Error(t, err)
}

func TestUserDeleteRootGuard(t *testing.T) {
	svcCtx := newTestSvc(t)
	l := NewUserLogic(svcCtx)

	err := l.Delete(testCtx(), []uint{model.RootUserID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "初始管理员")
}

func TestUserDeleteTearsDownSessions(t *testing.T) {
	svcCtx := newTestSvc(t)
	l := NewUserLogic(svcCtx)
	createUser(t, svcCtx, "root") // 占用初始管理员ID
	user, password := createUser(t, svcCtx, "carol")

	resp, err := NewAuthLogic(svcCtx).Login(testCtx(),
		&types.LoginRequest{Username: "carol", Password: password}, "", "")
	require.NoError(t, err)

	require.NoError(t, l.Delete(testCtx(), []uint{user.ID}))

	blacklisted, err := svcCtx.Blacklist.Contains(testCtx(), resp.AccessToken)
	require.NoError(t, err)
	assert.True(t, blacklisted)

	records, err := svcCtx.Token.ListForUser(testCtx(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestUserDisableTearsDownSessions(t *testing.T) {
	svcCtx := newTestSvc(t)
	l := NewUserLogic(svcCtx)
	createUser(t, svcCtx, "root")
	user, password := createUser(t, svcCtx, "dave")

	resp, err := NewAuthLogic(svcCtx).Login(testCtx(),
		&types.LoginRequest{Username: "dave", Password: password}, "", "")
	require.NoError(t, err)

	disabled := int8(0)
	require.NoError(t, l.Update(testCtx(), &types.UpdateUserRequest{ID: user.ID, Status: &disabled}))

	exists, err := svcCtx.Token.Exists(testCtx(), resp.AccessToken)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestChangePasswordInvalidatesTokens(t *testing.T) {
	svcCtx := newTestSvc(t)
	l := NewUserLogic(svcCtx)
	user, password := createUser(t, svcCtx, "erin")

	resp, err := NewAuthLogic(svcCtx).Login(testCtx(),
		&types.LoginRequest{Username: "erin", Password: password}, "", "")
	require.NoError(t, err)

	err = l.ChangePassword(testCtx(), user.ID, &types.ChangePasswordRequest{
		OldPassword: password,
		NewPassword: "newsecret1",
	})
	require.NoError(t, err)

	// 密码版本递增，换了新盐
	pv, err := svcCtx.Token.GetPV(testCtx(), user.ID)
	require.NoError(t, err)
	assert.Greater(t, pv, int64(model.InitialPasswordVersion))

	var updated model.User
	require.NoError(t, svcCtx.DB.First(&updated, user.ID).Error)
	assert.NotEqual(t, user.Salt, updated.Salt)
	assert.Equal(t, utils.EncodePassword("newsecret1", updated.Salt), updated.Password)

	// 旧会话被清理
	records, err := svcCtx.Token.ListForUser(testCtx(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, records)

	blacklisted, err := svcCtx.Blacklist.Contains(testCtx(), resp.AccessToken)
	require.NoError(t, err)
	assert.True(t, blacklisted)
}

func TestChangePasswordWrongOldPassword(t *testing.T) {
	svcCtx := newTestSvc(t)
	l := NewUserLogic(svcCtx)
	user, _ := createUser(t, svcCtx, "frank")

	err := l.ChangePassword(testCtx(), user.ID, &types.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "newsecret1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "原密码")
}

func TestKickGuards(t *testing.T) {
	svcCtx := newTestSvc(t)
	l := NewUserLogic(svcCtx)
	createUser(t, svcCtx, "root")
	user, password := createUser(t, svcCtx, "grace")

	resp, err := NewAuthLogic(svcCtx).Login(testCtx(),
		&types.LoginRequest{Username: "grace", Password: password}, "", "")
	require.NoError(t, err)

	record, err := svcCtx.Token.FindByValue(testCtx(), resp.AccessToken)
	require.NoError(t, err)

	// 不能下线自己
	self := &auth.Identity{UID: user.ID}
	err = l.Kick(testCtx(), self, record.ID)
	require.Error(t, err)

	// 其他操作者可以下线
	operator := &auth.Identity{UID: user.ID + 1000}
	require.NoError(t, l.Kick(testCtx(), operator, record.ID))

	exists, err := svcCtx.Token.Exists(testCtx(), resp.AccessToken)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestProfileIncludesRolesAndPerms(t *testing.T) {
	svcCtx := newTestSvc(t)
	l := NewUserLogic(svcCtx)
	role := createRole(t, svcCtx, "op")
	menu := &model.Menu{Name: "查询", Type: model.MenuTypeButton, Status: 1, Permission: "system:user:list"}
	require.NoError(t, svcCtx.DB.Create(menu).Error)
	require.NoError(t, svcCtx.DB.Create(&model.RoleMenu{RoleID: role.ID, MenuID: menu.ID}).Error)
	user, _ := createUser(t, svcCtx, "henry", role.ID)

	info, err := l.Profile(testCtx(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "henry", info.Username)
	assert.Equal(t, []string{"op"}, info.Roles)
	assert.Contains(t, info.Permissions, "system:user:list")
}
