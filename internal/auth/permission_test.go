package auth

import (
	"context"
	"testing"
	"time"

	"madmin/server/internal/model"
	"madmin/server/pkg/cachekey"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// seedPermFixture 种入一个普通角色用户：菜单树含逗号分隔与重复的权限标识
func seedPermFixture(t *testing.T, db *gorm.DB) (adminUID, normalUID uint) {
	t.Helper()

	adminRole := &model.Role{BaseModel: model.BaseModel{ID: model.RootRoleID}, Name: "超级管理员", Value: "admin", Status: 1}
	normalRole := &model.Role{Name: "运营", Value: "op", Status: 1}
	require.NoError(t, db.Create(adminRole).Error)
	require.NoError(t, db.Create(normalRole).Error)

	admin := &model.User{Username: "admin", Password: "x", Salt: "s", Status: 1}
	normal := &model.User{Username: "op", Password: "x", Salt: "s", Status: 1}
	require.NoError(t, db.Create(admin).Error)
	require.NoError(t, db.Create(normal).Error)
	require.NoError(t, db.Create(&model.UserRole{UserID: admin.ID, RoleID: adminRole.ID}).Error)
	require.NoError(t, db.Create(&model.UserRole{UserID: normal.ID, RoleID: normalRole.ID}).Error)

	dir := &model.Menu{Name: "系统管理", Type: model.MenuTypeDirectory, Status: 1}
	require.NoError(t, db.Create(dir).Error)
	menu := &model.Menu{ParentID: dir.ID, Name: "用户管理", Type: model.MenuTypeMenu, Status: 1, Show: true}
	require.NoError(t, db.Create(menu).Error)
	btnList := &model.Menu{ParentID: menu.ID, Name: "查询", Type: model.MenuTypeButton, Status: 1,
		Permission: "system:user:list, system:user:read"}
	btnDup := &model.Menu{ParentID: menu.ID, Name: "重复", Type: model.MenuTypeButton, Status: 1,
		Permission: "system:user:list"}
	btnDisabled := &model.Menu{ParentID: menu.ID, Name: "禁用", Type: model.MenuTypeButton, Status: 0,
		Permission: "system:user:hidden"}
	adminOnly := &model.Menu{ParentID: menu.ID, Name: "专属", Type: model.MenuTypeButton, Status: 1,
		Permission: "system:user:delete"}
	require.NoError(t, db.Create(btnList).Error)
	require.NoError(t, db.Create(btnDup).Error)
	require.NoError(t, db.Create(btnDisabled).Error)
	require.NoError(t, db.Create(adminOnly).Error)

	for _, mid := range []uint{dir.ID, menu.ID, btnList.ID, btnDup.ID, btnDisabled.ID} {
		require.NoError(t, db.Create(&model.RoleMenu{RoleID: normalRole.ID, MenuID: mid}).Error)
	}
	return admin.ID, normal.ID
}

func TestGetPermissionsSplitAndDedupe(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewPermissionService(db, newTestRedis(t))
	require.NoError(t, err)
	defer svc.Close()

	_, normalUID := seedPermFixture(t, db)

	perms, err := svc.GetPermissions(context.Background(), normalUID)
	require.NoError(t, err)
	// 逗号分隔拆开、去重、禁用节点排除
	assert.ElementsMatch(t, []string{"system:user:list", "system:user:read"}, perms)
}

func TestGetPermissionsAdminBypass(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewPermissionService(db, newTestRedis(t))
	require.NoError(t, err)
	defer svc.Close()

	adminUID, _ := seedPermFixture(t, db)

	perms, err := svc.GetPermissions(context.Background(), adminUID)
	require.NoError(t, err)
	// 超级管理员无需角色绑定即获得全部启用权限
	assert.Contains(t, perms, "system:user:delete")
	assert.Contains(t, perms, "system:user:list")
	assert.NotContains(t, perms, "system:user:hidden")
}

func TestGetPermissionsNoRoles(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewPermissionService(db, newTestRedis(t))
	require.NoError(t, err)
	defer svc.Close()

	user := &model.User{Username: "lonely", Password: "x", Salt: "s", Status: 1}
	require.NoError(t, db.Create(user).Error)

	perms, err := svc.GetPermissions(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestCachedPermissionsRoundTrip(t *testing.T) {
	db := newTestDB(t)
	rdb := newTestRedis(t)
	svc, err := NewPermissionService(db, rdb)
	require.NoError(t, err)
	defer svc.Close()

	_, normalUID := seedPermFixture(t, db)
	ctx := context.Background()

	// 首次读取回源并回填缓存
	perms, err := svc.CachedPermissions(ctx, normalUID)
	require.NoError(t, err)
	assert.NotEmpty(t, perms)

	n, err := rdb.Exists(ctx, cachekey.AuthPerm(normalUID)).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	// 命中缓存后返回一致
	again, err := svc.CachedPermissions(ctx, normalUID)
	require.NoError(t, err)
	assert.ElementsMatch(t, perms, again)
}

func TestRefreshOnlineUserPerms(t *testing.T) {
	db := newTestDB(t)
	rdb := newTestRedis(t)
	svc, err := NewPermissionService(db, rdb)
	require.NoError(t, err)
	defer svc.Close()

	_, normalUID := seedPermFixture(t, db)
	ctx := context.Background()

	// 模拟在线用户：令牌指针存在但权限缓存过时
	require.NoError(t, rdb.Set(ctx, cachekey.AuthToken(normalUID), "tok", 0).Err())
	require.NoError(t, rdb.Set(ctx, cachekey.AuthPerm(normalUID), `["stale:perm"]`, 0).Err())

	require.NoError(t, svc.RefreshOnlineUserPerms(ctx))

	perms, err := svc.CachedPermissions(ctx, normalUID)
	require.NoError(t, err)
	assert.NotContains(t, perms, "stale:perm")
	assert.Contains(t, perms, "system:user:list")
}

func TestRefreshOnlineUserPermsWaitsForLock(t *testing.T) {
	db := newTestDB(t)
	rdb := newTestRedis(t)
	svc, err := NewPermissionService(db, rdb)
	require.NoError(t, err)
	defer svc.Close()

	_, normalUID := seedPermFixture(t, db)
	ctx := context.Background()

	require.NoError(t, rdb.Set(ctx, cachekey.AuthToken(normalUID), "tok", 0).Err())
	require.NoError(t, rdb.Set(ctx, cachekey.AuthPerm(normalUID), `["stale:perm"]`, 0).Err())

	// 另一个实例持有刷新锁，稍后释放
	holder := svc.rs.NewMutex(cachekey.PermRefreshLock())
	require.NoError(t, holder.LockContext(ctx))
	go func() {
		time.Sleep(200 * time.Millisecond)
		holder.UnlockContext(ctx)
	}()

	// 刷新等待锁释放后执行，不允许丢弃本次变更
	require.NoError(t, svc.RefreshOnlineUserPerms(ctx))

	perms, err := svc.CachedPermissions(ctx, normalUID)
	require.NoError(t, err)
	assert.NotContains(t, perms, "stale:perm")
	assert.Contains(t, perms, "system:user:list")
}

func TestGetMenusFiltersButtons(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewPermissionService(db, newTestRedis(t))
	require.NoError(t, err)
	defer svc.Close()

	_, normalUID := seedPermFixture(t, db)

	menus, err := svc.GetMenus(context.Background(), normalUID)
	require.NoError(t, err)
	for _, m := range menus {
		assert.NotEqual(t, model.MenuTypeButton, m.Type)
	}
	assert.Len(t, menus, 2)
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, IsAdmin([]uint{3, model.RootRoleID}))
	assert.False(t, IsAdmin([]uint{2, 3}))
	assert.False(t, IsAdmin(nil))
}
