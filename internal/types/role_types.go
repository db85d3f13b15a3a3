package types

// CreateRoleRequest 创建角色请求
type CreateRoleRequest struct {
	Name    string `json:"name" validate:"required"`
	Value   string `json:"value" validate:"required"`
	Default bool   `json:"default"`
	Status  int8   `json:"status"`
	Remark  string `json:"remark"`
	MenuIDs []uint `json:"menuIds"`
}

// UpdateRoleRequest 更新角色请求
type UpdateRoleRequest struct {
	ID      uint   `json:"id" validate:"required"`
	Name    string `json:"name"`
	Value   string `json:"value"`
	Default *bool  `json:"default"`
	Status  *int8  `json:"status"`
	Remark  string `json:"remark"`
	MenuIDs []uint `json:"menuIds"`
}

// ListRolesRequest 角色列表请求
type ListRolesRequest struct {
	PageQuery
	Name   string `json:"name" query:"name"`
	Value  string `json:"value" query:"value"`
	Status *int8  `json:"status" query:"status"`
}
