package main

import (
	"madmin/server/internal/model"
	"madmin/server/pkg/logger"
	"madmin/server/pkg/utils"

	"gorm.io/gorm"
)

// seedDefaultData 首次启动时写入初始账号、角色与菜单
func seedDefaultData(db *gorm.DB) {
	var count int64
	db.Model(&model.User{}).Count(&count)
	if count > 0 {
		return
	}

	logger.Info("初始化默认数据...")

	dept := &model.Dept{Name: "总公司", OrderNo: 1}
	db.Create(dept)

	adminRole := &model.Role{
		Name:   "超级管理员",
		Value:  "admin",
		Status: 1,
		Remark: "拥有所有权限",
	}
	db.Create(adminRole)

	userRole := &model.Role{
		Name:    "普通用户",
		Value:   "user",
		Default: true,
		Status:  1,
		Remark:  "注册用户默认角色",
	}
	db.Create(userRole)

	salt := utils.RandomSalt()
	adminUser := &model.User{
		Username: "admin",
		Password: utils.EncodePassword("123456", salt),
		Salt:     salt,
		Nickname: "管理员",
		Status:   1,
		DeptID:   dept.ID,
	}
	db.Create(adminUser)
	db.Create(&model.UserRole{UserID: adminUser.ID, RoleID: adminRole.ID})

	seedDefaultMenus(db, userRole.ID)

	logger.Info("默认数据初始化完成")
}

// seedDefaultMenus 写入系统管理菜单，普通用户角色只绑定查看类权限
func seedDefaultMenus(db *gorm.DB, userRoleID uint) {
	systemDir := &model.Menu{
		Name:    "系统管理",
		Type:    model.MenuTypeDirectory,
		Path:    "/system",
		Icon:    "ant-design:setting-outlined",
		OrderNo: 1,
		Show:    true,
		Status:  1,
	}
	db.Create(systemDir)

	type menuSeed struct {
		name      string
		path      string
		component string
		icon      string
		order     int
		buttons   []model.Menu
	}
	seeds := []menuSeed{
		{
			name: "用户管理", path: "/system/user", component: "system/user/index",
			icon: "ant-design:user-outlined", order: 1,
			buttons: []model.Menu{
				{Name: "用户查询", Permission: "system:user:list,system:user:read"},
				{Name: "用户新增", Permission: "system:user:create"},
				{Name: "用户编辑", Permission: "system:user:update"},
				{Name: "用户删除", Permission: "system:user:delete"},
				{Name: "重置密码", Permission: "system:user:password"},
			},
		},
		{
			name: "角色管理", path: "/system/role", component: "system/role/index",
			icon: "ant-design:team-outlined", order: 2,
			buttons: []model.Menu{
				{Name: "角色查询", Permission: "system:role:list,system:role:read"},
				{Name: "角色新增", Permission: "system:role:create"},
				{Name: "角色编辑", Permission: "system:role:update"},
				{Name: "角色删除", Permission: "system:role:delete"},
			},
		},
		{
			name: "菜单管理", path: "/system/menu", component: "system/menu/index",
			icon: "ant-design:menu-outlined", order: 3,
			buttons: []model.Menu{
				{Name: "菜单查询", Permission: "system:menu:list"},
				{Name: "菜单新增", Permission: "system:menu:create"},
				{Name: "菜单编辑", Permission: "system:menu:update"},
				{Name: "菜单删除", Permission: "system:menu:delete"},
			},
		},
		{
			name: "部门管理", path: "/system/dept", component: "system/dept/index",
			icon: "ant-design:apartment-outlined", order: 4,
			buttons: []model.Menu{
				{Name: "部门查询", Permission: "system:dept:list"},
				{Name: "部门新增", Permission: "system:dept:create"},
				{Name: "部门编辑", Permission: "system:dept:update"},
				{Name: "部门删除", Permission: "system:dept:delete"},
			},
		},
		{
			name: "在线用户", path: "/system/online", component: "system/online/index",
			icon: "ant-design:cloud-outlined", order: 5,
			buttons: []model.Menu{
				{Name: "在线查询", Permission: "system:online:list"},
				{Name: "强制下线", Permission: "system:online:kick"},
			},
		},
		{
			name: "日志管理", path: "/system/log", component: "system/log/index",
			icon: "ant-design:file-text-outlined", order: 6,
			buttons: []model.Menu{
				{Name: "登录日志", Permission: "system:log:login"},
				{Name: "操作日志", Permission: "system:log:operation"},
			},
		},
	}

	var readableButtonIDs []uint
	for _, s := range seeds {
		menu := &model.Menu{
			ParentID:  systemDir.ID,
			Name:      s.name,
			Type:      model.MenuTypeMenu,
			Path:      s.path,
			Component: s.component,
			Icon:      s.icon,
			OrderNo:   s.order,
			Show:      true,
			Status:    1,
		}
		db.Create(menu)
		for i := range s.buttons {
			btn := s.buttons[i]
			btn.ParentID = menu.ID
			btn.Type = model.MenuTypeButton
			btn.OrderNo = i + 1
			btn.Status = 1
			db.Create(&btn)
			if i == 0 {
				readableButtonIDs = append(readableButtonIDs, menu.ID, btn.ID)
			}
		}
	}

	// 普通用户角色：系统目录+各菜单的查询权限
	db.Create(&model.RoleMenu{RoleID: userRoleID, MenuID: systemDir.ID})
	for _, id := range readableButtonIDs {
		db.Create(&model.RoleMenu{RoleID: userRoleID, MenuID: id})
	}
}
