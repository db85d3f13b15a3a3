package model

// 系统内置账号/角色，不可删除
const (
	RootUserID = 1 // 超级管理员用户ID
	RootRoleID = 1 // 超级管理员角色ID
)

// 密码版本初始值，改密后递增使旧令牌失效
const InitialPasswordVersion = 1

// User 用户模型
type User struct {
	BaseModel
	Username string `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Password string `gorm:"size:255;not null" json:"-"`
	Salt     string `gorm:"size:32;not null" json:"-"` // 密码盐值，随机32位
	Nickname string `gorm:"size:50" json:"nickname"`
	Avatar   string `gorm:"size:255" json:"avatar"`
	Email    string `gorm:"size:100" json:"email"`
	Phone    string `gorm:"size:20" json:"phone"`
	QQ       string `gorm:"size:20" json:"qq"`
	Status   int8   `gorm:"default:1" json:"status"` // 0:禁用 1:启用
	DeptID   uint   `json:"deptId"`
	Remark   string `gorm:"size:500" json:"remark"`
	Dept     *Dept  `gorm:"foreignKey:DeptID" json:"dept,omitempty"`
	Roles    []Role `gorm:"many2many:sys_user_role;" json:"roles"`
}

// TableName 表名
func (User) TableName() string {
	return "sys_user"
}

// RoleIDs 提取角色ID列表
func (u *User) RoleIDs() []uint {
	ids := make([]uint, 0, len(u.Roles))
	for _, r := range u.Roles {
		ids = append(ids, r.ID)
	}
	return ids
}

// IsRoot 是否系统初始管理员账号
func (u *User) IsRoot() bool {
	return u.ID == RootUserID
}

// UserRole 用户角色关联表
type UserRole struct {
	UserID uint `gorm:"primaryKey"`
	RoleID uint `gorm:"primaryKey"`
}

// TableName 表名
func (UserRole) TableName() string {
	return "sys_user_role"
}
