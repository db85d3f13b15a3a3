package types

// CreateMenuRequest 创建菜单请求
type CreateMenuRequest struct {
	ParentID   uint   `json:"parentId"`
	Name       string `json:"name" validate:"required"`
	Type       int8   `json:"type"`
	Path       string `json:"path"`
	Component  string `json:"component"`
	Permission string `json:"permission"`
	Icon       string `json:"icon"`
	OrderNo    int    `json:"orderNo"`
	Show       bool   `json:"show"`
	KeepAlive  bool   `json:"keepAlive"`
	External   bool   `json:"external"`
	Status     int8   `json:"status"`
}

// UpdateMenuRequest 更新菜单请求
type UpdateMenuRequest struct {
	ID uint `json:"id" validate:"required"`
	CreateMenuRequest
}

// ListMenusRequest 菜单列表请求
type ListMenusRequest struct {
	Name   string `json:"name" query:"name"`
	Path   string `json:"path" query:"path"`
	Status *int8  `json:"status" query:"status"`
}

// MenuRoute 前端路由节点
type MenuRoute struct {
	ID        uint        `json:"id"`
	ParentID  uint        `json:"parentId"`
	Name      string      `json:"name"`
	Path      string      `json:"path"`
	Component string      `json:"component"`
	Redirect  string      `json:"redirect,omitempty"`
	Icon      string      `json:"icon"`
	OrderNo   int         `json:"orderNo"`
	Show      bool        `json:"show"`
	KeepAlive bool        `json:"keepAlive"`
	External  bool        `json:"external"`
	Children  []MenuRoute `json:"children,omitempty"`
}
