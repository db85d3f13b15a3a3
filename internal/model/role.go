package model

// Role 角色模型
type Role struct {
	BaseModel
	Name    string `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Value   string `gorm:"size:50;uniqueIndex;not null" json:"value"` // 角色标识
	Default bool   `gorm:"default:false" json:"default"`              // 是否注册默认角色
	Status  int8   `gorm:"default:1" json:"status"`                   // 0:禁用 1:启用
	Remark  string `gorm:"size:500" json:"remark"`
	Menus   []Menu `gorm:"many2many:sys_role_menu;" json:"menus,omitempty"`
}

// TableName 表名
func (Role) TableName() string {
	return "sys_role"
}

// RoleMenu 角色菜单关联表
type RoleMenu struct {
	RoleID uint `gorm:"primaryKey"`
	MenuID uint `gorm:"primaryKey"`
}

// TableName 表名
func (RoleMenu) TableName() string {
	return "sys_role_menu"
}
