package types

import "madmin/server/internal/model"

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	QQ       string `json:"qq"`
	DeptID   uint   `json:"deptId"`
	RoleIDs  []uint `json:"roleIds"`
	Status   int8   `json:"status"`
	Remark   string `json:"remark"`
}

// UpdateUserRequest 更新用户请求
type UpdateUserRequest struct {
	ID       uint   `json:"id" validate:"required"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	QQ       string `json:"qq"`
	DeptID   uint   `json:"deptId"`
	Status   *int8  `json:"status"`
	RoleIDs  []uint `json:"roleIds"`
	Remark   string `json:"remark"`
}

// ListUsersRequest 用户列表请求
type ListUsersRequest struct {
	PageQuery
	Username string `json:"username" query:"username"`
	Nickname string `json:"nickname" query:"nickname"`
	DeptID   uint   `json:"deptId" query:"deptId"`
	Status   *int8  `json:"status" query:"status"`
}

// UserInfo 用户信息响应
type UserInfo struct {
	ID          uint     `json:"id"`
	Username    string   `json:"username"`
	Nickname    string   `json:"nickname"`
	Avatar      string   `json:"avatar"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// OnlineUser 在线用户信息
type OnlineUser struct {
	TokenID   uint   `json:"tokenId"`
	UserID    uint   `json:"userId"`
	Username  string `json:"username"`
	IP        string `json:"ip"`
	Browser   string `json:"browser"`
	OS        string `json:"os"`
	LoginAt   string `json:"loginAt"`
	Current   bool   `json:"current"`
	ExpiredAt string `json:"expiredAt"`
}

// UserListItem 用户列表项
type UserListItem struct {
	model.User
	RoleNames []string `json:"roleNames"`
}

// UpdateProfileRequest 更新个人资料请求
type UpdateProfileRequest struct {
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	QQ       string `json:"qq"`
	Remark   string `json:"remark"`
}
