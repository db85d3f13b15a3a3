package model

// Dept 部门模型
type Dept struct {
	BaseModel
	ParentID uint   `json:"parentId"`
	Name     string `gorm:"size:50;not null" json:"name"`
	OrderNo  int    `gorm:"default:0" json:"orderNo"` // 排序
	Remark   string `gorm:"size:500" json:"remark"`
	Children []Dept `gorm:"-" json:"children,omitempty"`
}

// TableName 表名
func (Dept) TableName() string {
	return "sys_dept"
}
