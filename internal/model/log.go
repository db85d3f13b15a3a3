package model

// LoginLog 登录日志模型
type LoginLog struct {
	BaseModel
	UserID   uint   `gorm:"index" json:"userId"`
	Username string `gorm:"size:50" json:"username"`
	IP       string `gorm:"size:50" json:"ip"`
	Location string `gorm:"size:100" json:"location"`
	Browser  string `gorm:"size:100" json:"browser"`
	OS       string `gorm:"size:100" json:"os"`
	Status   int8   `gorm:"default:1" json:"status"` // 0:失败 1:成功
	Message  string `gorm:"size:255" json:"message"`
}

// TableName 表名
func (LoginLog) TableName() string {
	return "sys_login_log"
}

// OperationLog 操作日志模型
type OperationLog struct {
	BaseModel
	UserID    uint   `gorm:"index" json:"userId"`
	Username  string `gorm:"size:50" json:"username"`
	Method    string `gorm:"size:10" json:"method"` // 请求方法
	Path      string `gorm:"size:255" json:"path"`  // 请求路径
	IP        string `gorm:"size:50" json:"ip"`
	UserAgent string `gorm:"size:500" json:"userAgent"`
	Params    string `gorm:"type:text" json:"params"` // 请求参数
	Status    int8   `gorm:"default:1" json:"status"` // 0:失败 1:成功
	Duration  int64  `json:"duration"`                // 耗时(ms)
	ErrorMsg  string `gorm:"size:500" json:"errorMsg"`
}

// TableName 表名
func (OperationLog) TableName() string {
	return "sys_operation_log"
}
