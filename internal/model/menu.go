package model

// 菜单类型
const (
	MenuTypeDirectory int8 = 0 // 目录
	MenuTypeMenu      int8 = 1 // 菜单
	MenuTypeButton    int8 = 2 // 按钮(权限点)
)

// Menu 菜单/权限模型
type Menu struct {
	BaseModel
	ParentID   uint   `json:"parentId"`
	Name       string `gorm:"size:50;not null" json:"name"`
	Type       int8   `gorm:"not null;default:0" json:"type"` // 0:目录 1:菜单 2:按钮
	Path       string `gorm:"size:255" json:"path"`           // 路由路径
	Component  string `gorm:"size:255" json:"component"`      // 组件路径
	Permission string `gorm:"size:255" json:"permission"`     // 权限标识，逗号分隔
	Icon       string `gorm:"size:100" json:"icon"`           // 图标
	OrderNo    int    `gorm:"default:0" json:"orderNo"`       // 排序
	Show       bool   `gorm:"default:true" json:"show"`       // 是否显示
	KeepAlive  bool   `gorm:"default:false" json:"keepAlive"` // 是否缓存
	External   bool   `gorm:"default:false" json:"external"`  // 是否外链
	Status     int8   `gorm:"default:1" json:"status"`        // 0:禁用 1:启用
	Children   []Menu `gorm:"-" json:"children,omitempty"`
}

// TableName 表名
func (Menu) TableName() string {
	return "sys_menu"
}

// IsDirectory 是否目录节点
func (m *Menu) IsDirectory() bool {
	return m.Type == MenuTypeDirectory
}

// IsButton 是否按钮节点
func (m *Menu) IsButton() bool {
	return m.Type == MenuTypeButton
}
