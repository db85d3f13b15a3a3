package types

// CreateDeptRequest 创建部门请求
type CreateDeptRequest struct {
	ParentID uint   `json:"parentId"`
	Name     string `json:"name" validate:"required"`
	OrderNo  int    `json:"orderNo"`
	Remark   string `json:"remark"`
}

// UpdateDeptRequest 更新部门请求
type UpdateDeptRequest struct {
	ID       uint   `json:"id" validate:"required"`
	ParentID uint   `json:"parentId"`
	Name     string `json:"name"`
	OrderNo  int    `json:"orderNo"`
	Remark   string `json:"remark"`
}

// ListDeptsRequest 部门列表请求
type ListDeptsRequest struct {
	Name string `json:"name" query:"name"`
}
